// Package vectorindex stores product vectors in a Redis search index and owns the
// product uid to vector id mapping.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/matsearch/internal/db"
	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// store is the consumer interface for the vector index (ISP).
//
//nolint:interfacebloat // index lifecycle, id allocation and hash access share one backend
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Incr(ctx context.Context, key string) (int64, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Config describes the index layout.
type Config struct {
	IndexName    string
	KeyPrefix    string
	Algorithm    db.VectorAlgorithm
	Distance     db.DistanceMetric
	HNSWM        int
	HNSWEFConstr int
}

// Repo is the vector index repository.
type Repo struct {
	store store
	cfg   Config
}

// New creates a vector index repository.
func New(s store, cfg Config) *Repo {
	if cfg.Algorithm == "" {
		cfg.Algorithm = db.VectorHNSW
	}
	if cfg.Distance == "" {
		cfg.Distance = db.DistanceCosine
	}
	return &Repo{store: s, cfg: cfg}
}

// CollectionExists reports whether the search index is present.
func (r *Repo) CollectionExists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", r.cfg.IndexName, err)
	}
	return ok, nil
}

// CreateCollection creates the search index for vectors of the given dimension.
// An index that already exists is not an error.
func (r *Repo) CreateCollection(ctx context.Context, dim int) error {
	def, err := db.NewIndex(r.cfg.IndexName).
		Prefix(r.vecPrefix()).
		Tag(fieldItemCode).
		Text(fieldItemName).
		Vector(fieldVector, r.cfg.Algorithm, dim, r.cfg.Distance, r.cfg.HNSWM, r.cfg.HNSWEFConstr).
		Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return nil
}

// AssignID returns the stable vector id of a product, allocating one on first use.
// Ids come from a counter, so two products never share one.
func (r *Repo) AssignID(ctx context.Context, productUID string) (uint64, error) {
	if strings.TrimSpace(productUID) == "" {
		return 0, fmt.Errorf("product uid is required: %w", domain.ErrInvalidRequest)
	}

	if id, ok, err := r.lookupID(ctx, productUID); err != nil || ok {
		return id, err
	}

	next, err := r.store.Incr(ctx, r.seqKey())
	if err != nil {
		return 0, fmt.Errorf("allocate id: %w", err)
	}
	written, err := r.store.HSetNX(ctx, r.idsKey(), productUID, strconv.FormatInt(next, 10))
	if err != nil {
		return 0, fmt.Errorf("store id mapping: %w", err)
	}
	if written {
		return uint64(next), nil
	}

	// a concurrent writer won; its id is authoritative and ours is dropped
	id, ok, err := r.lookupID(ctx, productUID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("id mapping for %s vanished", productUID)
	}
	return id, nil
}

func (r *Repo) lookupID(ctx context.Context, productUID string) (uint64, bool, error) {
	raw, err := r.store.HGet(ctx, r.idsKey(), productUID)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup id %s: %w", productUID, err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt id for %s: %w", productUID, err)
	}
	return id, true, nil
}

// Upsert stores the vector and product attributes under id.
func (r *Repo) Upsert(ctx context.Context, id uint64, vector []float32, product *material.Product) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector: %w", domain.ErrInvalidRequest)
	}
	key := r.vecKey(id)
	if err := r.store.HSet(ctx, key, buildHashFields(vector, product)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Search returns the topK nearest vectors, best first.
func (r *Repo) Search(ctx context.Context, vector []float32, topK int) ([]material.Neighbor, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		VectorField:  fieldVector,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{fieldProductUID},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	out := make([]material.Neighbor, 0, len(res.Entries))
	for _, e := range res.Entries {
		id, ok := r.idFromKey(e.Key)
		if !ok {
			continue
		}
		out = append(out, material.Neighbor{ID: id, Score: e.Score})
	}
	return out, nil
}

// Resolve loads the products stored next to the given ids. Unknown ids are omitted.
func (r *Repo) Resolve(ctx context.Context, ids []uint64) (map[uint64]material.Product, error) {
	if len(ids) == 0 {
		return map[uint64]material.Product{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.vecKey(id)
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("resolve ids: %w", err)
	}

	out := make(map[uint64]material.Product, len(ids))
	for i, m := range rows {
		if len(m) == 0 {
			continue
		}
		out[ids[i]] = parseProduct(m)
	}
	return out, nil
}

func (r *Repo) vecPrefix() string { return r.cfg.KeyPrefix + "vec:" }

func (r *Repo) vecKey(id uint64) string { return r.vecPrefix() + strconv.FormatUint(id, 10) }

func (r *Repo) idsKey() string { return r.cfg.KeyPrefix + "ids" }

func (r *Repo) seqKey() string { return r.cfg.KeyPrefix + "ids:seq" }

func (r *Repo) idFromKey(key string) (uint64, bool) {
	s, ok := strings.CutPrefix(key, r.vecPrefix())
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(s, 10, 64)
	return id, err == nil
}
