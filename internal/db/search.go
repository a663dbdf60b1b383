package db

import "errors"

// KNNQuery asks for the K nearest neighbours of Vector in an index.
type KNNQuery struct {
	IndexName string
	// VectorField defaults to "vector".
	VectorField string
	Vector      []float32
	K           int
	// ReturnFields limits the hash fields returned per hit; empty returns all of them.
	ReturnFields []string
}

// Validate checks the required parts of the query.
func (q *KNNQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("knn: index name is required")
	case len(q.Vector) == 0:
		return errors.New("knn: vector is required")
	case q.K <= 0:
		return errors.New("knn: k must be positive")
	}
	return nil
}

// Field returns the vector field name.
func (q *KNNQuery) Field() string {
	if q.VectorField == "" {
		return "vector"
	}
	return q.VectorField
}

// SearchResult lists hits best first.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one hit. Score is a similarity in [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
