package models

import "time"

// SalesRecord is one row of the sales dataset. Numeric fields are always
// finite and default to 0 when the source value could not be parsed.
type SalesRecord struct {
	Retailer        string  `json:"retailer"`
	RetailerID      float64 `json:"retailer_id"`
	InvoiceDate     string  `json:"invoice_date"`
	Region          string  `json:"region"`
	State           string  `json:"state"`
	City            string  `json:"city"`
	Product         string  `json:"product"`
	PricePerUnit    float64 `json:"price_per_unit"`
	UnitsSold       float64 `json:"units_sold"`
	TotalSales      float64 `json:"total_sales"`
	OperatingProfit float64 `json:"operating_profit"`
	OperatingMargin float64 `json:"operating_margin"`
	SalesMethod     string  `json:"sales_method"`
}

type RegionSummary struct {
	Region      string  `json:"region"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
	UnitsSold   float64 `json:"units_sold"`
	Count       int     `json:"count"`
	AvgMargin   float64 `json:"avg_margin"`
}

type ProductSummary struct {
	Product     string  `json:"product"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
	UnitsSold   float64 `json:"units_sold"`
	Count       int     `json:"count"`
	AvgMargin   float64 `json:"avg_margin"`
}

// MonthlyTrend is keyed by a zero-padded "YYYY-MM" month.
type MonthlyTrend struct {
	Month       string  `json:"month"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
	UnitsSold   float64 `json:"units_sold"`
	Count       int     `json:"count"`
	AvgMargin   float64 `json:"avg_margin"`
}

type ChannelSales struct {
	Method string  `json:"method"`
	Sales  float64 `json:"sales"`
}

type RetailerSales struct {
	Retailer string  `json:"retailer"`
	Sales    float64 `json:"sales"`
	Profit   float64 `json:"profit"`
}

type Summary struct {
	TotalSales      float64 `json:"total_sales"`
	TotalProfit     float64 `json:"total_profit"`
	TotalUnits      float64 `json:"total_units"`
	AvgMargin       float64 `json:"avg_margin"`
	UniqueRetailers int     `json:"unique_retailers"`
	Records         int     `json:"records"`
}

type DateRange struct {
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`
}

// DateRangePreset is a named window offered as a quick date filter. Nil
// bounds leave that side open.
type DateRangePreset struct {
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Group       string     `json:"group"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
}

// Filter narrows a record set. Empty region/product lists and nil bounds
// mean no filtering on that dimension.
type Filter struct {
	Regions  []string   `json:"regions,omitempty"`
	Products []string   `json:"products,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

// IsZero reports whether the filter lets every record through.
func (f Filter) IsZero() bool {
	return len(f.Regions) == 0 && len(f.Products) == 0 && f.From == nil && f.To == nil
}

type FilterOptions struct {
	Regions  []string `json:"regions"`
	Products []string `json:"products"`
}

// Dashboard is everything the page needs for one filter selection.
type Dashboard struct {
	Summary       Summary           `json:"summary"`
	Regions       []RegionSummary   `json:"regions"`
	Products      []ProductSummary  `json:"products"`
	Monthly       []MonthlyTrend    `json:"monthly"`
	SalesMethods  []ChannelSales    `json:"sales_methods"`
	TopRetailers  []RetailerSales   `json:"top_retailers"`
	DateRange     DateRange         `json:"date_range"`
	Presets       []DateRangePreset `json:"presets"`
	Options       FilterOptions     `json:"options"`
	FilteredCount int               `json:"filtered_count"`
	TotalCount    int               `json:"total_count"`
	LoadError     string            `json:"load_error,omitempty"`
}

// FilteredShare is the percentage of records passing the current filter.
func (d Dashboard) FilteredShare() float64 {
	if d.TotalCount == 0 {
		return 0
	}
	return float64(d.FilteredCount) / float64(d.TotalCount) * 100
}
