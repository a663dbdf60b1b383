package embedding

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// batchRecorder returns one-element vectors holding the text's position in its batch.
type batchRecorder struct {
	batchSizes []int
	singles    int
	err        error
}

func (b *batchRecorder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	b.singles++
	if b.err != nil {
		return domain.EmbeddingResult{}, b.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1}, PromptTokens: 1, TotalTokens: 1}, nil
}

func (b *batchRecorder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	b.batchSizes = append(b.batchSizes, len(texts))
	if b.err != nil {
		return domain.BatchEmbeddingResult{}, b.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return domain.BatchEmbeddingResult{Embeddings: out, PromptTokens: len(texts), TotalTokens: 2 * len(texts)}, nil
}

// singleOnly hides BatchEmbed.
type singleOnly struct{ inner *batchRecorder }

func (s singleOnly) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return s.inner.Embed(ctx, text)
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "ItemName: product"
	}
	return out
}

func TestInstrumentedEmbedder_Embed(t *testing.T) {
	log, logs := observed()
	inner := &batchRecorder{}
	res, err := NewInstrumentedEmbedder(inner, "openai", "text-embedding-3-small", log).
		Embed(context.Background(), "safety helmet")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embedding) != 1 || res.TotalTokens != 1 {
		t.Errorf("result = %+v", res)
	}
	entries := logs.FilterMessage("Embedding request completed").All()
	if len(entries) != 1 || entries[0].ContextMap()["model"] != "text-embedding-3-small" {
		t.Errorf("debug entries = %+v", entries)
	}
}

func TestInstrumentedEmbedder_EmbedFailureLogsWarn(t *testing.T) {
	log, logs := observed()
	inner := &batchRecorder{err: domain.ErrEmbeddingProviderError}
	_, err := NewInstrumentedEmbedder(inner, "openai", "m", log).Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v", err)
	}
	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warns) != 1 || warns[0].ContextMap()["provider"] != "openai" {
		t.Errorf("warn entries = %+v", warns)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_SplitsIntoProviderBatches(t *testing.T) {
	inner := &batchRecorder{}
	p := NewInstrumentedEmbedder(inner, "openai", "m", zap.NewNop())

	n := DefaultMaxAPIBatchSize*2 + 3
	res, err := p.BatchEmbed(context.Background(), texts(n))
	if err != nil {
		t.Fatal(err)
	}
	want := []int{DefaultMaxAPIBatchSize, DefaultMaxAPIBatchSize, 3}
	if len(inner.batchSizes) != len(want) {
		t.Fatalf("batch sizes = %v, want %v", inner.batchSizes, want)
	}
	for i := range want {
		if inner.batchSizes[i] != want[i] {
			t.Errorf("batch %d size = %d, want %d", i, inner.batchSizes[i], want[i])
		}
	}
	if len(res.Embeddings) != n || res.PromptTokens != n || res.TotalTokens != 2*n {
		t.Errorf("got %d embeddings, usage %d/%d", len(res.Embeddings), res.PromptTokens, res.TotalTokens)
	}
	// the last sub-batch starts over at position 0
	if res.Embeddings[n-1][0] != 2 {
		t.Errorf("last embedding = %v, order lost", res.Embeddings[n-1])
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Empty(t *testing.T) {
	inner := &batchRecorder{}
	res, err := NewInstrumentedEmbedder(inner, "openai", "m", zap.NewNop()).BatchEmbed(context.Background(), nil)
	if err != nil || len(res.Embeddings) != 0 || len(inner.batchSizes) != 0 {
		t.Errorf("res %+v err %v calls %d", res, err, len(inner.batchSizes))
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Failure(t *testing.T) {
	log, logs := observed()
	inner := &batchRecorder{err: domain.ErrRateLimited}
	_, err := NewInstrumentedEmbedder(inner, "openai", "m", log).BatchEmbed(context.Background(), texts(4))
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "[0:4]") {
		t.Errorf("err = %v, want the failing range", err)
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Errorf("expected one warn entry, got %+v", logs.All())
	}
}

func TestInstrumentedEmbedder_BatchEmbed_FallsBackToSingle(t *testing.T) {
	inner := &batchRecorder{}
	res, err := NewInstrumentedEmbedder(singleOnly{inner}, "openai", "m", zap.NewNop()).
		BatchEmbed(context.Background(), texts(3))
	if err != nil {
		t.Fatal(err)
	}
	if inner.singles != 3 || len(inner.batchSizes) != 0 || len(res.Embeddings) != 3 {
		t.Errorf("singles %d batches %v embeddings %d", inner.singles, inner.batchSizes, len(res.Embeddings))
	}
}
