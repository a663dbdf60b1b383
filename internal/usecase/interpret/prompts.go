package interpret

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

const parseSystemPrompt = `You are an expert in construction materials and industrial equipment procurement.
Extract search conditions from the user's query so the catalog can be searched.

The catalog has these fields:
- itemCode: exact material code, e.g. TI00040
- itemNameKeyword: product name keyword for fuzzy search, e.g. "Safety Shoes"
- category: product category, e.g. "Site Safety Equipment", "Electrical Accessories", "Filters", "Maintenance Chemicals", "Cutting Tool"
- function: functional group, e.g. "Maintenance Chemicals", "Cutting Tool"
- brandCode: brand, e.g. "AIR LIQUIDE", "AET", "FLUKE"
- buyerName: buyer company, e.g. "AIR LIQUIDE SINGAPORE PRIVATE LIMITED"
- buyerCode: buyer code
- minPrice, maxPrice: unit price bounds (numbers)
- startDate, endDate: transaction date bounds (YYYY-MM-DD)

Examples:
1. "Show all products from AET" -> {"brandCode": "AET"}
2. "Find Safety Shoes" -> {"itemNameKeyword": "Safety Shoes"}
3. "Show me Site Safety Equipment" -> {"category": "Site Safety Equipment"}
4. "Show items from AIR LIQUIDE SINGAPORE PRIVATE LIMITED" -> {"buyerName": "AIR LIQUIDE SINGAPORE PRIVATE LIMITED"}
5. "Find TI00040" -> {"itemCode": "TI00040"}

Always extract at least one keyword; never answer with every field null.
Reply with a single JSON object containing all of the fields above, using null for missing values.
Do not add any other text or Markdown.`

const assistantSystemPrompt = "You are a helpful assistant for a construction materials procurement platform. " +
	"Provide clear responses in English only."

const maxSummaryItems = 5

func parseUserPrompt(query string) string {
	return fmt.Sprintf("User query: %q", query)
}

func explainUserPrompt(query string, original, reinterpreted *material.Criteria) string {
	var b strings.Builder
	b.WriteString("You are an expert in construction materials and engineering equipment. ")
	b.WriteString("The user searched for the following but found no results.\n\n")
	fmt.Fprintf(&b, "User query: %q\n\n", query)
	fmt.Fprintf(&b, "Initial search criteria: %s\n", describe(original))
	fmt.Fprintf(&b, "Expert suggested search criteria: %s\n\n", describe(reinterpreted))
	b.WriteString("Explain briefly why the search might have no results, what the user may be looking for, ")
	b.WriteString("and how to rephrase the query. Suggest more general keywords, spelling checks, ")
	b.WriteString("related categories or brands, and partial product names.\n")
	b.WriteString("Keep the response concise and friendly.")
	return b.String()
}

func summaryUserPrompt(query string, structured []material.Record, semantic []material.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User query: %q\n\n", query)

	if len(semantic) > 0 {
		b.WriteString("Semantic search found these related products:\n")
		for i := range semantic[:min(maxSummaryItems, len(semantic))] {
			p := &semantic[i]
			fmt.Fprintf(&b, "%d. %s", i+1, orNA(p.ItemName))
			if p.Model != "" {
				fmt.Fprintf(&b, " (Model: %s)", p.Model)
			}
			if p.Material != "" {
				fmt.Fprintf(&b, " - Material: %s", p.Material)
			}
			b.WriteByte('\n')
		}
	}

	if len(structured) > 0 {
		b.WriteString("\nCatalog search found these matching records:\n")
		for i := range structured[:min(maxSummaryItems, len(structured))] {
			r := &structured[i]
			fmt.Fprintf(&b, "%d. %s", i+1, orNA(r.ItemName))
			if r.Model != "" {
				fmt.Fprintf(&b, " (Model: %s)", r.Model)
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString("\nWrite a short, professional answer introducing these products to the user.")
	return b.String()
}

// describe renders the set fields of c for prompts and logs.
func describe(c *material.Criteria) string {
	if c == nil {
		return "none"
	}
	var parts []string
	add := func(name, v string) {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", name, v))
		}
	}
	add("itemCode", c.ItemCode)
	add("itemNameKeyword", c.ItemNameKeyword)
	add("category", c.Category)
	add("function", c.Function)
	add("brandCode", c.BrandCode)
	add("buyerName", c.BuyerName)
	add("buyerCode", c.BuyerCode)
	if c.MinPrice != nil {
		parts = append(parts, fmt.Sprintf("minPrice=%g", *c.MinPrice))
	}
	if c.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("maxPrice=%g", *c.MaxPrice))
	}
	if c.StartDate != nil {
		parts = append(parts, "startDate="+c.StartDate.Format("2006-01-02"))
	}
	if c.EndDate != nil {
		parts = append(parts, "endDate="+c.EndDate.Format("2006-01-02"))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
