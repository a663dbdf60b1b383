package semantic

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// --- Mocks ---

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockIndex struct {
	searchFn  func(ctx context.Context, vector []float32, topK int) ([]material.Neighbor, error)
	resolveFn func(ctx context.Context, ids []uint64) (map[uint64]material.Product, error)
}

func (m *mockIndex) Search(ctx context.Context, vector []float32, topK int) ([]material.Neighbor, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, topK)
	}
	return nil, nil
}

func (m *mockIndex) Resolve(ctx context.Context, ids []uint64) (map[uint64]material.Product, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, ids)
	}
	return map[uint64]material.Product{}, nil
}

func newService(emb *mockEmbedder, idx *mockIndex) *Service {
	return New(emb, idx, Config{}, zap.NewNop())
}

// --- Tests ---

func TestSearchSimilar(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}}
	idx := &mockIndex{
		searchFn: func(_ context.Context, vec []float32, topK int) ([]material.Neighbor, error) {
			if len(vec) != 2 || topK != 5 {
				t.Errorf("unexpected search args: %v %d", vec, topK)
			}
			return []material.Neighbor{{ID: 7, Score: 0.9}, {ID: 3, Score: 0.8}}, nil
		},
		resolveFn: func(_ context.Context, ids []uint64) (map[uint64]material.Product, error) {
			return map[uint64]material.Product{
				7: {UID: "p7", ItemCode: "TI00040"},
				3: {UID: "p3", ItemCode: "TI00041"},
			}, nil
		},
	}

	hits := newService(emb, idx).SearchSimilar(context.Background(), "safety gloves", 5)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != 7 || hits[0].Product.ItemCode != "TI00040" || hits[0].Score != 0.9 {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}
}

func TestSearchSimilar_DefaultTopK(t *testing.T) {
	var got int
	idx := &mockIndex{searchFn: func(_ context.Context, _ []float32, topK int) ([]material.Neighbor, error) {
		got = topK
		return nil, nil
	}}
	newService(&mockEmbedder{vec: []float32{1}}, idx).SearchSimilar(context.Background(), "x", 0)
	if got != DefaultTopK {
		t.Errorf("expected top-k %d, got %d", DefaultTopK, got)
	}
}

func TestSearchSimilar_SkipsUnresolvedIDs(t *testing.T) {
	idx := &mockIndex{
		searchFn: func(context.Context, []float32, int) ([]material.Neighbor, error) {
			return []material.Neighbor{{ID: 1}, {ID: 2}}, nil
		},
		resolveFn: func(context.Context, []uint64) (map[uint64]material.Product, error) {
			return map[uint64]material.Product{2: {UID: "p2"}}, nil
		},
	}
	hits := newService(&mockEmbedder{vec: []float32{1}}, idx).SearchSimilar(context.Background(), "x", 3)
	if len(hits) != 1 || hits[0].ID != 2 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestSearchSimilar_FailuresYieldEmpty(t *testing.T) {
	boom := errors.New("boom")
	neighbors := func(context.Context, []float32, int) ([]material.Neighbor, error) {
		return []material.Neighbor{{ID: 1}}, nil
	}

	tests := []struct {
		name string
		emb  *mockEmbedder
		idx  *mockIndex
	}{
		{"embed error", &mockEmbedder{err: domain.ErrRateLimited}, &mockIndex{}},
		{"empty embedding", &mockEmbedder{}, &mockIndex{}},
		{"search error", &mockEmbedder{vec: []float32{1}}, &mockIndex{
			searchFn: func(context.Context, []float32, int) ([]material.Neighbor, error) { return nil, boom },
		}},
		{"resolve error", &mockEmbedder{vec: []float32{1}}, &mockIndex{
			searchFn:  neighbors,
			resolveFn: func(context.Context, []uint64) (map[uint64]material.Product, error) { return nil, boom },
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hits := newService(tt.emb, tt.idx).SearchSimilar(context.Background(), "x", 3); len(hits) != 0 {
				t.Errorf("expected no hits, got %+v", hits)
			}
		})
	}
}

func TestSearchSimilar_BlankText(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1}}
	if hits := newService(emb, &mockIndex{}).SearchSimilar(context.Background(), "  ", 3); hits != nil {
		t.Fatalf("expected nil, got %+v", hits)
	}
	if emb.calls != 0 {
		t.Error("blank text must not be embedded")
	}
}
