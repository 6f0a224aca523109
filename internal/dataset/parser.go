// Package dataset turns raw sales CSV text into records and reduces record
// sets into the grouped summaries shown on the dashboard.
package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"sales-dashboard/internal/models"
)

const (
	HeaderRetailer        = "Retailer"
	HeaderRetailerID      = "Retailer ID"
	HeaderInvoiceDate     = "Invoice Date"
	HeaderRegion          = "Region"
	HeaderState           = "State"
	HeaderCity            = "City"
	HeaderProduct         = "Product"
	HeaderPricePerUnit    = "Price per Unit"
	HeaderUnitsSold       = "Units Sold"
	HeaderTotalSales      = "Total Sales"
	HeaderOperatingProfit = "Operating Profit"
	HeaderOperatingMargin = "Operating Margin"
	HeaderSalesMethod     = "Sales Method"
)

// RequiredHeaders lists the column names a well-formed dataset carries.
var RequiredHeaders = []string{
	HeaderRetailer,
	HeaderRetailerID,
	HeaderInvoiceDate,
	HeaderRegion,
	HeaderState,
	HeaderCity,
	HeaderProduct,
	HeaderPricePerUnit,
	HeaderUnitsSold,
	HeaderTotalSales,
	HeaderOperatingProfit,
	HeaderOperatingMargin,
	HeaderSalesMethod,
}

type textSetter func(r *models.SalesRecord, v string)
type numberSetter func(r *models.SalesRecord, v float64)

var textFields = map[string]textSetter{
	HeaderRetailer:    func(r *models.SalesRecord, v string) { r.Retailer = v },
	HeaderInvoiceDate: func(r *models.SalesRecord, v string) { r.InvoiceDate = v },
	HeaderRegion:      func(r *models.SalesRecord, v string) { r.Region = v },
	HeaderState:       func(r *models.SalesRecord, v string) { r.State = v },
	HeaderCity:        func(r *models.SalesRecord, v string) { r.City = v },
	HeaderProduct:     func(r *models.SalesRecord, v string) { r.Product = v },
	HeaderSalesMethod: func(r *models.SalesRecord, v string) { r.SalesMethod = v },
}

var numberFields = map[string]numberSetter{
	HeaderRetailerID:      func(r *models.SalesRecord, v float64) { r.RetailerID = v },
	HeaderPricePerUnit:    func(r *models.SalesRecord, v float64) { r.PricePerUnit = v },
	HeaderUnitsSold:       func(r *models.SalesRecord, v float64) { r.UnitsSold = v },
	HeaderTotalSales:      func(r *models.SalesRecord, v float64) { r.TotalSales = v },
	HeaderOperatingProfit: func(r *models.SalesRecord, v float64) { r.OperatingProfit = v },
	HeaderOperatingMargin: func(r *models.SalesRecord, v float64) { r.OperatingMargin = v },
}

// Parser converts CSV text into sales records. It never fails: malformed
// input degrades to fewer (or zero) records, with diagnostics logged.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Parser{logger: logger}
}

// ParseCSV parses text, logging through the package logger.
func ParseCSV(text string) []models.SalesRecord {
	return NewParser(nil).Parse(text)
}

func (p *Parser) Parse(text string) (records []models.SalesRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("csv parse aborted", "error", rec)
			records = []models.SalesRecord{}
		}
	}()

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		p.logger.Warn("csv has too few lines", "lines", len(lines))
		return []models.SalesRecord{}
	}

	headers := parseHeader(lines[0])
	p.logger.Debug("csv headers", "headers", headers)

	if missing := missingHeaders(headers); len(missing) > 0 {
		p.logger.Warn("csv is missing required headers", "missing", missing)
	}

	records = make([]models.SalesRecord, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// header is line 1
		lineNo := i + 2
		record, err := p.parseLine(line, lineNo, headers)
		if err != nil {
			p.logger.Warn("skipping csv line", "line", lineNo, "error", err)
			continue
		}
		records = append(records, record)
	}

	p.logger.Debug("csv parsed", "records", len(records))
	return records
}

func (p *Parser) parseLine(line string, lineNo int, headers []string) (record models.SalesRecord, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parse line %d: %v", lineNo, rec)
		}
	}()

	values := splitQuoted(line)
	if len(values) != len(headers) {
		p.logger.Debug("field count mismatch, trying simple split",
			"line", lineNo,
			"fields", len(values),
			"headers", len(headers),
		)
		if simple := splitSimple(line); len(simple) == len(headers) {
			values = simple
		}
	}

	return buildRecord(headers, values), nil
}

func parseHeader(line string) []string {
	parts := strings.Split(line, ",")
	headers := make([]string, len(parts))
	for i, h := range parts {
		headers[i] = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
	}
	return headers
}

func missingHeaders(headers []string) []string {
	var missing []string
	for _, h := range RequiredHeaders {
		if !slices.Contains(headers, h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// splitQuoted treats commas inside double quotes as part of the field.
// Quote characters themselves are dropped.
func splitQuoted(line string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	return append(values, strings.TrimSpace(current.String()))
}

func splitSimple(line string) []string {
	parts := strings.Split(line, ",")
	for i, v := range parts {
		parts[i] = strings.ReplaceAll(strings.TrimSpace(v), `"`, "")
	}
	return parts
}

func buildRecord(headers, values []string) models.SalesRecord {
	var record models.SalesRecord
	for i, header := range headers {
		value := ""
		if i < len(values) {
			value = values[i]
		}

		if set, ok := numberFields[header]; ok {
			set(&record, ParseNumber(value))
			continue
		}
		if set, ok := textFields[header]; ok {
			set(&record, value)
		}
	}
	return record
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading decimal number of s and returns 0 when there
// is none. The result is always finite.
func ParseNumber(s string) float64 {
	prefix := numberPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0
	}

	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
