package templates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/a-h/templ"

	"sales-dashboard/internal/models"
)

const (
	Title    = "Adidas US Sales Analytics"
	Subtitle = "Sales performance dashboard"
)

// barRow is one line of a bar table. width is the bar length as a
// percentage of the largest row.
type barRow struct {
	label string
	sales float64
	extra string
	width string
}

type summaryCard struct {
	label string
	value string
}

func summaryCards(s models.Summary) []summaryCard {
	return []summaryCard{
		{"Total Sales", Currency(s.TotalSales)},
		{"Operating Profit", Currency(s.TotalProfit)},
		{"Units Sold", Number(s.TotalUnits)},
		{"Avg Margin", Percent(s.AvgMargin)},
		{"Retailers", Number(float64(s.UniqueRetailers))},
	}
}

func withWidths(rows []barRow) []barRow {
	var top float64
	for _, r := range rows {
		top = max(top, r.sales)
	}
	for i := range rows {
		width := 0.0
		if top > 0 {
			width = rows[i].sales / top * 100
		}
		rows[i].width = fmt.Sprintf("%.1f", width)
	}
	return rows
}

func regionRows(regions []models.RegionSummary) []barRow {
	rows := make([]barRow, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, barRow{label: r.Region, sales: r.TotalSales, extra: Percent(r.AvgMargin) + " margin"})
	}
	return withWidths(rows)
}

func productRows(products []models.ProductSummary) []barRow {
	rows := make([]barRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, barRow{label: p.Product, sales: p.TotalSales, extra: Number(p.UnitsSold) + " units"})
	}
	return withWidths(rows)
}

func monthlyRows(months []models.MonthlyTrend) []barRow {
	rows := make([]barRow, 0, len(months))
	for _, m := range months {
		rows = append(rows, barRow{label: m.Month, sales: m.TotalSales, extra: Currency(m.TotalProfit) + " profit"})
	}
	return withWidths(rows)
}

func methodRows(methods []models.ChannelSales) []barRow {
	rows := make([]barRow, 0, len(methods))
	for _, m := range methods {
		rows = append(rows, barRow{label: m.Method, sales: m.Sales})
	}
	return withWidths(rows)
}

func retailerRows(retailers []models.RetailerSales) []barRow {
	rows := make([]barRow, 0, len(retailers))
	for _, r := range retailers {
		rows = append(rows, barRow{label: r.Retailer, sales: r.Sales, extra: Currency(r.Profit) + " profit"})
	}
	return withWidths(rows)
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func longDate(t time.Time) string {
	return t.Format("Jan 02, 2006")
}

// presetAction sets the date signals to the preset window and refreshes.
// An open bound clears its signal.
func presetAction(p models.DateRangePreset) string {
	var from, to string
	if p.From != nil {
		from = day(*p.From)
	}
	if p.To != nil {
		to = day(*p.To)
	}
	return fmt.Sprintf("$from = '%s'; $to = '%s'; @get('/sse/dashboard')", from, to)
}

// ToString renders c into a string, for SSE element patches.
func ToString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
