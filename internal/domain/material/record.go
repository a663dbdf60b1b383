package material

import "strings"

// Record is one catalog transaction row. Every value is stored as text;
// numeric and date columns are parsed on read with ParsePrice and ParseDate.
type Record struct {
	ID           int64
	TxNo         string
	TxDate       string
	TxQty        string
	TxP1         string
	TxP2         string
	BuyerCode    string
	BuyerName    string
	ItemCode     string
	ItemName     string
	Category     string
	Function     string
	ItemType     string
	Model        string
	Performance  string
	Performance1 string
	Material     string
	UOM          string
	Bundled      string
	Origin       string
	BrandCode    string
	UnitCost     string
	Sector       string
	SubSector    string
	Value        string
	Rationale    string
	WWW          string
	Source       string

	// ProductUID is set on records derived from the product master (semantic hits).
	ProductUID string
}

// Key is the identity used to deduplicate merged result lists.
func (r *Record) Key() string {
	switch {
	case strings.TrimSpace(r.ItemCode) != "":
		return "code:" + strings.ToUpper(strings.TrimSpace(r.ItemCode))
	case r.ProductUID != "":
		return "uid:" + r.ProductUID
	case r.TxNo != "":
		return "tx:" + r.TxNo
	default:
		return ""
	}
}

// Product is a product-master identity, the unit stored in the vector index.
type Product struct {
	UID           string
	ItemCode      string
	ItemName      string
	Category      string
	Function      string
	ItemType      string
	Model         string
	Performance   string
	Performance1  string
	Material      string
	BrandCode     string
	UOM           string
	EmbeddingHash string
}

// ToRecord converts a product into the catalog record shape.
// Transaction-only columns stay empty.
func (p *Product) ToRecord() Record {
	return Record{
		ItemCode:     p.ItemCode,
		ItemName:     p.ItemName,
		Category:     p.Category,
		Function:     p.Function,
		ItemType:     p.ItemType,
		Model:        p.Model,
		Performance:  p.Performance,
		Performance1: p.Performance1,
		Material:     p.Material,
		BrandCode:    p.BrandCode,
		UOM:          p.UOM,
		ProductUID:   p.UID,
	}
}

// Neighbor is one vector index hit. A higher Score is closer.
type Neighbor struct {
	ID    uint64
	Score float64
}
