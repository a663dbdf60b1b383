package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StorageHash stores indexed documents as hashes.
const StorageHash = "HASH"

// DistanceMetric used by vector similarity queries.
type DistanceMetric string

// Supported distance metrics.
const (
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects how a vector field is indexed.
type VectorAlgorithm string

// Supported vector algorithms. FLAT is exact brute force.
const (
	VectorHNSW VectorAlgorithm = "HNSW"
	VectorFlat VectorAlgorithm = "FLAT"
)

// IndexFieldType enumerates schema field kinds.
type IndexFieldType int

// Field kinds.
const (
	IndexFieldTag IndexFieldType = iota
	IndexFieldText
	IndexFieldVector
)

// IndexField is one schema attribute.
type IndexField struct {
	Name string
	Type IndexFieldType

	VectorAlgo     VectorAlgorithm
	VectorDim      int
	VectorDistance DistanceMetric
	// HNSW graph tuning; zero leaves the server default.
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes a hash-backed search index over a set of key prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks names, field uniqueness and vector dimensions.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return errors.New("index name is required")
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	case len(idx.Fields) == 0:
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return fmt.Errorf("field %s: vector field requires positive DIM", f.Name)
		}
	}
	return nil
}

// CreateArgs renders the FT.CREATE arguments that follow the command name.
func (idx *IndexDefinition) CreateArgs() ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", StorageHash}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		f := &idx.Fields[i]
		args = append(args, f.Name)
		switch f.Type {
		case IndexFieldTag:
			args = append(args, "TAG")
		case IndexFieldText:
			args = append(args, "TEXT")
		case IndexFieldVector:
			args = append(args, f.vectorArgs()...)
		default:
			return nil, fmt.Errorf("field %s: unknown type %d", f.Name, f.Type)
		}
	}
	return args, nil
}

func (f *IndexField) vectorArgs() []string {
	algo := f.VectorAlgo
	if algo == "" {
		algo = VectorFlat
	}
	distance := f.VectorDistance
	if distance == "" {
		distance = DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}
	if algo == VectorHNSW {
		if f.VectorM > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
		}
		if f.VectorEFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
		}
	}
	return append([]string{"VECTOR", string(algo), strconv.Itoa(len(attrs))}, attrs...)
}

// String renders the full command, or the validation error.
func (idx *IndexDefinition) String() string {
	args, err := idx.CreateArgs()
	if err != nil {
		return "invalid index: " + err.Error()
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

// IsValidIdentifier reports whether s is non-empty and made of [a-zA-Z0-9_:-].
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '_', r == ':', r == '-':
			return false
		}
		return true
	}) < 0
}
