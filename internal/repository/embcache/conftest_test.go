package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/db"
	"github.com/kailas-cloud/matsearch/internal/domain"
)

// lengthEmbedder returns [len(text)] and bills one token per text.
type lengthEmbedder struct {
	singles [][]string
	batches [][]string
	err     error
	short   bool // return one embedding too few from BatchEmbed
}

func (e *lengthEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.singles = append(e.singles, []string{text})
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text))}, PromptTokens: 1, TotalTokens: 1}, nil
}

func (e *lengthEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.batches = append(e.batches, texts)
	if e.err != nil {
		return domain.BatchEmbeddingResult{}, e.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, []float32{float32(len(t))})
	}
	if e.short {
		out = out[:len(out)-1]
	}
	return domain.BatchEmbeddingResult{Embeddings: out, PromptTokens: len(texts), TotalTokens: len(texts)}, nil
}

// memKV is an in-memory cache store.
type memKV struct {
	data   map[string][]byte
	ttls   []time.Duration
	getErr error
	setErr error
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.ttls = append(m.ttls, ttl)
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

var errStoreDown = errors.New("redis down")

func newTestCache(t *testing.T, inner domain.Embedder) (*CachedEmbedder, *memKV) {
	t.Helper()
	kv := newMemKV()
	return New(inner, kv, Config{KeyPrefix: "matsearch:m:", TTL: time.Hour}, nil, zap.NewNop()), kv
}

// seed stores vec for text as if it had been embedded before.
func seed(c *CachedEmbedder, kv *memKV, text string, vec ...float32) {
	kv.data[c.cacheKey(text)] = db.EncodeVector(vec)
}
