package vectorindex

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/matsearch/internal/db"
	"github.com/kailas-cloud/matsearch/internal/domain"
)

// --- AssignID ---

func TestAssignID_Existing(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetFn = func(_ context.Context, key, field string) (string, error) {
		if key != "ms:ids" || field != "TI00040" {
			t.Errorf("unexpected hget %s %s", key, field)
		}
		return "7", nil
	}
	ms.incrFn = func(context.Context, string) (int64, error) {
		t.Fatal("incr must not be called for a known uid")
		return 0, nil
	}

	id, err := repo.AssignID(context.Background(), "TI00040")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected 7, got %d", id)
	}
}

func TestAssignID_Allocates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.incrFn = func(_ context.Context, key string) (int64, error) {
		if key != "ms:ids:seq" {
			t.Errorf("unexpected seq key: %s", key)
		}
		return 42, nil
	}
	ms.hsetNXFn = func(_ context.Context, key, field, value string) (bool, error) {
		if key != "ms:ids" || field != "TI00040" || value != "42" {
			t.Errorf("unexpected hsetnx %s %s %s", key, field, value)
		}
		return true, nil
	}

	id, err := repo.AssignID(context.Background(), "TI00040")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}

func TestAssignID_LostRace(t *testing.T) {
	repo, ms := newTestRepo(t)
	calls := 0
	ms.hgetFn = func(context.Context, string, string) (string, error) {
		calls++
		if calls == 1 {
			return "", db.ErrKeyNotFound
		}
		return "3", nil
	}
	ms.incrFn = func(context.Context, string) (int64, error) { return 9, nil }
	ms.hsetNXFn = func(context.Context, string, string, string) (bool, error) { return false, nil }

	id, err := repo.AssignID(context.Background(), "TI00040")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 3 {
		t.Fatalf("expected winner id 3, got %d", id)
	}
}

func TestAssignID_DistinctIDs(t *testing.T) {
	repo, ms := newTestRepo(t)
	var mu sync.Mutex
	seq := int64(0)
	ids := map[string]string{}
	ms.hgetFn = func(_ context.Context, _, field string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if v, ok := ids[field]; ok {
			return v, nil
		}
		return "", db.ErrKeyNotFound
	}
	ms.incrFn = func(context.Context, string) (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return seq, nil
	}
	ms.hsetNXFn = func(_ context.Context, _, field, value string) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := ids[field]; ok {
			return false, nil
		}
		ids[field] = value
		return true, nil
	}

	seen := map[uint64]string{}
	for _, uid := range []string{"A1", "B2", "C3", "A1"} {
		id, err := repo.AssignID(context.Background(), uid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev, ok := seen[id]; ok && prev != uid {
			t.Fatalf("id %d shared by %s and %s", id, prev, uid)
		}
		seen[id] = uid
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct ids, got %d", len(seen))
	}
}

func TestAssignID_EmptyUID(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.AssignID(context.Background(), "  ")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAssignID_CorruptMapping(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetFn = func(context.Context, string, string) (string, error) { return "x", nil }
	if _, err := repo.AssignID(context.Background(), "TI00040"); err == nil {
		t.Fatal("expected error for corrupt id")
	}
}

// --- CreateCollection ---

func TestCreateCollection(t *testing.T) {
	repo, ms := newTestRepo(t)
	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.CreateCollection(context.Background(), 1536); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "ms:idx" {
		t.Errorf("unexpected index name: %s", got.Name)
	}
	if len(got.Prefixes) != 1 || got.Prefixes[0] != "ms:vec:" {
		t.Errorf("unexpected prefixes: %v", got.Prefixes)
	}
	var vec *db.IndexField
	for i := range got.Fields {
		if got.Fields[i].Type == db.IndexFieldVector {
			vec = &got.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("vector field missing")
	}
	if vec.VectorDim != 1536 || vec.VectorDistance != db.DistanceCosine || vec.VectorAlgo != db.VectorHNSW {
		t.Errorf("unexpected vector field: %+v", vec)
	}
}

func TestCreateCollection_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
	}
	if err := repo.CreateCollection(context.Background(), 8); err != nil {
		t.Fatalf("expected nil for existing index, got %v", err)
	}
}

func TestCollectionExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) { return name == "ms:idx", nil }
	ok, err := repo.CollectionExists(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
}

// --- Upsert / Search / Resolve ---

func TestUpsert(t *testing.T) {
	repo, ms := newTestRepo(t)
	p := testProduct()
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "ms:vec:5" {
			t.Errorf("unexpected key: %s", key)
		}
		if len(fields[fieldVector]) != 8 {
			t.Errorf("expected 8 vector bytes, got %d", len(fields[fieldVector]))
		}
		if fields[fieldItemName] != "Safety Glove" || fields[fieldEmbeddingHash] != "abc" {
			t.Errorf("unexpected fields: %v", fields)
		}
		return nil
	}
	if err := repo.Upsert(context.Background(), 5, []float32{0.1, 0.2}, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_EmptyVector(t *testing.T) {
	repo, _ := newTestRepo(t)
	p := testProduct()
	if err := repo.Upsert(context.Background(), 1, nil, &p); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.K != 3 || q.IndexName != "ms:idx" || q.VectorField != "vector" {
			t.Errorf("unexpected query: %+v", q)
		}
		return &db.SearchResult{Entries: []db.SearchEntry{
			{Key: "ms:vec:4", Score: 0.9},
			{Key: "other:1", Score: 0.8},
			{Key: "ms:vec:2", Score: 0.5},
		}}, nil
	}

	got, err := repo.Search(context.Background(), []float32{1}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 2 || got[0].Score != 0.9 {
		t.Fatalf("unexpected neighbors: %+v", got)
	}
}

func TestResolve(t *testing.T) {
	repo, ms := newTestRepo(t)
	p := testProduct()
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if len(keys) != 2 || keys[0] != "ms:vec:1" || keys[1] != "ms:vec:2" {
			t.Errorf("unexpected keys: %v", keys)
		}
		return []map[string]string{buildHashFields([]float32{1}, &p), {}}, nil
	}

	got, err := repo.Resolve(context.Background(), []uint64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 product, got %d", len(got))
	}
	if got[1] != p {
		t.Fatalf("round trip mismatch: %+v", got[1])
	}
}

func TestResolve_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.Resolve(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
}
