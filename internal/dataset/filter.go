package dataset

import (
	"slices"

	"sales-dashboard/internal/models"
)

// Filter keeps the records matching every active dimension of f.
func Filter(records []models.SalesRecord, f models.Filter) []models.SalesRecord {
	if f.IsZero() {
		return records
	}

	out := make([]models.SalesRecord, 0, len(records))
	for _, r := range records {
		if len(f.Regions) > 0 && !slices.Contains(f.Regions, r.Region) {
			continue
		}
		if len(f.Products) > 0 && !slices.Contains(f.Products, r.Product) {
			continue
		}
		if !IsDateInRange(r.InvoiceDate, f.From, f.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DistinctRegions returns each region once, in order of first appearance.
func DistinctRegions(records []models.SalesRecord) []string {
	return distinct(records, func(r models.SalesRecord) string { return r.Region })
}

// DistinctProducts returns each product once, in order of first appearance.
func DistinctProducts(records []models.SalesRecord) []string {
	return distinct(records, func(r models.SalesRecord) string { return r.Product })
}

func distinct(records []models.SalesRecord, key func(models.SalesRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
