package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// EmbeddingText renders the descriptive fields of p as "Label: value" pairs.
// Products without an item name have no text.
func EmbeddingText(p *material.Product) string {
	name := strings.TrimSpace(p.ItemName)
	if name == "" {
		return ""
	}

	parts := []string{"ItemName: " + name}
	for _, f := range []struct{ label, value string }{
		{"Model", p.Model},
		{"Performance", p.Performance},
		{"Performance2", p.Performance1},
		{"Material", p.Material},
		{"Brand", p.BrandCode},
		{"UOM", p.UOM},
		{"Function", p.Function},
		{"ItemType", p.ItemType},
		{"Hierarchy", p.Category},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			parts = append(parts, f.label+": "+v)
		}
	}
	return strings.Join(parts, "; ")
}

// TextHash is the hex SHA-256 of an embedding text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
