package dataset

import (
	"cmp"
	"slices"

	"sales-dashboard/internal/models"
)

// totals accumulates the summed fields of one group.
type totals struct {
	sales  float64
	profit float64
	units  float64
	count  int
}

func (t *totals) add(r models.SalesRecord) {
	t.sales += r.TotalSales
	t.profit += r.OperatingProfit
	t.units += r.UnitsSold
	t.count++
}

// margin is profit over sales, 0 when there were no sales.
func margin(profit, sales float64) float64 {
	if sales == 0 {
		return 0
	}
	return profit / sales
}

// groupBy sums records per key. Records for which key reports false are
// left out of every group.
func groupBy(records []models.SalesRecord, key func(models.SalesRecord) (string, bool)) map[string]*totals {
	groups := make(map[string]*totals)
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		g, exists := groups[k]
		if !exists {
			g = &totals{}
			groups[k] = g
		}
		g.add(r)
	}
	return groups
}

func bySalesDesc[T any](key func(T) string, sales func(T) float64) func(a, b T) int {
	return func(a, b T) int {
		if c := cmp.Compare(sales(b), sales(a)); c != 0 {
			return c
		}
		return cmp.Compare(key(a), key(b))
	}
}

// AggregateByRegion sums sales, profit and units per region, highest sales
// first.
func AggregateByRegion(records []models.SalesRecord) []models.RegionSummary {
	groups := groupBy(records, func(r models.SalesRecord) (string, bool) { return r.Region, true })

	result := make([]models.RegionSummary, 0, len(groups))
	for region, t := range groups {
		result = append(result, models.RegionSummary{
			Region:      region,
			TotalSales:  t.sales,
			TotalProfit: t.profit,
			UnitsSold:   t.units,
			Count:       t.count,
			AvgMargin:   margin(t.profit, t.sales),
		})
	}
	slices.SortFunc(result, bySalesDesc(
		func(s models.RegionSummary) string { return s.Region },
		func(s models.RegionSummary) float64 { return s.TotalSales },
	))
	return result
}

// AggregateByProduct sums sales, profit and units per product, highest
// sales first.
func AggregateByProduct(records []models.SalesRecord) []models.ProductSummary {
	groups := groupBy(records, func(r models.SalesRecord) (string, bool) { return r.Product, true })

	result := make([]models.ProductSummary, 0, len(groups))
	for product, t := range groups {
		result = append(result, models.ProductSummary{
			Product:     product,
			TotalSales:  t.sales,
			TotalProfit: t.profit,
			UnitsSold:   t.units,
			Count:       t.count,
			AvgMargin:   margin(t.profit, t.sales),
		})
	}
	slices.SortFunc(result, bySalesDesc(
		func(s models.ProductSummary) string { return s.Product },
		func(s models.ProductSummary) float64 { return s.TotalSales },
	))
	return result
}

// MonthlyTrends buckets records by invoice month, oldest first. Records
// with an unparseable invoice date are skipped.
func MonthlyTrends(records []models.SalesRecord) []models.MonthlyTrend {
	skipped := 0
	groups := groupBy(records, func(r models.SalesRecord) (string, bool) {
		d, ok := ParseInvoiceDate(r.InvoiceDate)
		if !ok {
			skipped++
			return "", false
		}
		return monthKey(d), true
	})
	if skipped > 0 {
		defaultLogger().Warn("skipped records with invalid invoice date", "count", skipped)
	}

	result := make([]models.MonthlyTrend, 0, len(groups))
	for month, t := range groups {
		result = append(result, models.MonthlyTrend{
			Month:       month,
			TotalSales:  t.sales,
			TotalProfit: t.profit,
			UnitsSold:   t.units,
			Count:       t.count,
			AvgMargin:   margin(t.profit, t.sales),
		})
	}
	slices.SortFunc(result, func(a, b models.MonthlyTrend) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return result
}

// AggregateBySalesMethod sums total sales per sales channel.
func AggregateBySalesMethod(records []models.SalesRecord) []models.ChannelSales {
	groups := groupBy(records, func(r models.SalesRecord) (string, bool) { return r.SalesMethod, true })

	result := make([]models.ChannelSales, 0, len(groups))
	for method, t := range groups {
		result = append(result, models.ChannelSales{Method: method, Sales: t.sales})
	}
	slices.SortFunc(result, bySalesDesc(
		func(c models.ChannelSales) string { return c.Method },
		func(c models.ChannelSales) float64 { return c.Sales },
	))
	return result
}

// TopRetailers returns up to limit retailers ranked by total sales. A
// non-positive limit returns all of them.
func TopRetailers(records []models.SalesRecord, limit int) []models.RetailerSales {
	groups := groupBy(records, func(r models.SalesRecord) (string, bool) { return r.Retailer, true })

	result := make([]models.RetailerSales, 0, len(groups))
	for retailer, t := range groups {
		result = append(result, models.RetailerSales{Retailer: retailer, Sales: t.sales, Profit: t.profit})
	}
	slices.SortFunc(result, bySalesDesc(
		func(r models.RetailerSales) string { return r.Retailer },
		func(r models.RetailerSales) float64 { return r.Sales },
	))

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Summarize computes the headline figures for a record set.
func Summarize(records []models.SalesRecord) models.Summary {
	var t totals
	retailers := make(map[string]struct{})
	for _, r := range records {
		t.add(r)
		retailers[r.Retailer] = struct{}{}
	}

	return models.Summary{
		TotalSales:      t.sales,
		TotalProfit:     t.profit,
		TotalUnits:      t.units,
		AvgMargin:       margin(t.profit, t.sales),
		UniqueRetailers: len(retailers),
		Records:         t.count,
	}
}
