package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/source"
)

const testHeader = "Retailer,Retailer ID,Invoice Date,Region,State,City,Product,Price per Unit,Units Sold,Total Sales,Operating Profit,Operating Margin,Sales Method"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type stubSource struct {
	text  string
	err   error
	calls int
}

func (s *stubSource) Fetch(ctx context.Context) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubSource) Describe() string { return "stub" }

func testRecords() []models.SalesRecord {
	return []models.SalesRecord{
		{Retailer: "Walmart", InvoiceDate: "2020-01-15", Region: "South", Product: "Men's Apparel", UnitsSold: 10, TotalSales: 1000, OperatingProfit: 300, SalesMethod: "Outlet"},
		{Retailer: "Kohl's", InvoiceDate: "2020-02-10", Region: "Midwest", Product: "Women's Apparel", UnitsSold: 5, TotalSales: 500, OperatingProfit: 100, SalesMethod: "Online"},
		{Retailer: "Walmart", InvoiceDate: "2020-02-20", Region: "South", Product: "Women's Apparel", UnitsSold: 2, TotalSales: 200, OperatingProfit: 50, SalesMethod: "In-store"},
	}
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.records == nil {
		t.Error("records should be initialized")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
	if a.cache != nil {
		t.Error("cache should be disabled by default")
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testRecords())

	if got := len(a.Records()); got != 3 {
		t.Errorf("expected 3 records, got %d", got)
	}
	if a.LoadError() != nil {
		t.Errorf("expected no load error, got %v", a.LoadError())
	}
}

func TestAnalytics_Load_ValidData(t *testing.T) {
	csv := testHeader + "\n" +
		"Walmart,1128299,2020-01-15,South,Texas,Houston,Men's Apparel,50,10,500,150,0.3,Outlet\n" +
		`Kohl's,1189833,2020-02-10,Midwest,Ohio,"Columbus, OH",Women's Apparel,40,5,200,60,0.3,Online` + "\n"

	a := NewAnalytics(WithLogger(quietLogger()))
	if err := a.Load(context.Background(), source.NewFileSource(createTempCSV(t, csv))); err != nil {
		t.Fatalf("Load() with valid data should not error, got: %v", err)
	}

	records := a.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].City != "Columbus, OH" {
		t.Errorf("expected quoted city to survive, got %q", records[1].City)
	}
	if a.Stats()["using_sample"] != false {
		t.Error("expected real data, not sample data")
	}
}

func TestAnalytics_Load_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		src       source.Source
		wantErr   bool
		wantCause error
	}{
		{
			name:    "fetch failure",
			src:     &stubSource{err: errors.New("connection refused")},
			wantErr: true,
		},
		{
			name:      "empty file",
			src:       source.NewFileSource(createTempCSV(t, "")),
			wantErr:   true,
			wantCause: source.ErrEmptySource,
		},
		{
			name:      "missing file",
			src:       source.NewFileSource(filepath.Join(t.TempDir(), "nope.csv")),
			wantErr:   true,
			wantCause: os.ErrNotExist,
		},
		{
			name:    "header only",
			src:     &stubSource{text: testHeader},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalytics(WithLogger(quietLogger()))
			err := a.Load(context.Background(), tt.src)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("expected cause %v, got %v", tt.wantCause, err)
			}

			if got, want := len(a.Records()), len(dataset.SampleData()); got != want {
				t.Errorf("expected sample data with %d records, got %d", want, got)
			}
			if (a.LoadError() != nil) != tt.wantErr {
				t.Errorf("LoadError() = %v, want set=%v", a.LoadError(), tt.wantErr)
			}
			if a.Stats()["using_sample"] != true {
				t.Error("expected using_sample to be true")
			}
		})
	}
}

func TestAnalytics_Reload(t *testing.T) {
	a := NewAnalytics(WithLogger(quietLogger()))

	if err := a.Reload(context.Background()); err == nil {
		t.Error("Reload() without a source should fail")
	}

	src := &stubSource{err: errors.New("offline")}
	if err := a.Load(context.Background(), src); err == nil {
		t.Fatal("expected load error")
	}

	src.err = nil
	src.text = testHeader + "\nWalmart,1,2020-01-15,South,Texas,Houston,Men's Apparel,50,10,500,150,0.3,Outlet"

	if err := a.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if a.LoadError() != nil {
		t.Error("expected load error to be cleared after a successful reload")
	}
	if len(a.Records()) != 1 {
		t.Errorf("expected 1 record, got %d", len(a.Records()))
	}
	if src.calls != 2 {
		t.Errorf("expected 2 fetches, got %d", src.calls)
	}
}

func TestAnalytics_Load_UsesCache(t *testing.T) {
	csv := testHeader + "\nWalmart,1,2020-01-15,South,Texas,Houston,Men's Apparel,50,10,500,150,0.3,Outlet\n"
	path := createTempCSV(t, csv)
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}
	cacheDir := t.TempDir()

	first := NewAnalytics(WithLogger(quietLogger()), WithCacheDir(cacheDir))
	if err := first.Load(context.Background(), source.NewFileSource(path)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cache entry, got %d (%v)", len(entries), err)
	}

	// Break the file; a cache hit must not read it.
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	second := NewAnalytics(WithLogger(quietLogger()), WithCacheDir(cacheDir))
	if err := second.Load(context.Background(), source.NewFileSource(path)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := second.Records(); len(got) != 1 || got[0].Retailer != "Walmart" {
		t.Errorf("expected cached records, got %+v", got)
	}
}

func TestAnalytics_Snapshot(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testRecords())

	dash, err := a.Snapshot(context.Background(), models.Filter{})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if dash.TotalCount != 3 || dash.FilteredCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", dash.FilteredCount, dash.TotalCount)
	}
	if dash.Summary.TotalSales != 1700 {
		t.Errorf("total sales = %v, want 1700", dash.Summary.TotalSales)
	}
	if dash.Summary.UniqueRetailers != 2 {
		t.Errorf("unique retailers = %d, want 2", dash.Summary.UniqueRetailers)
	}
	if len(dash.Regions) != 2 || dash.Regions[0].Region != "South" {
		t.Errorf("unexpected regions: %+v", dash.Regions)
	}
	if len(dash.Monthly) != 2 || dash.Monthly[0].Month != "2020-01" {
		t.Errorf("unexpected monthly: %+v", dash.Monthly)
	}
	if len(dash.SalesMethods) != 3 {
		t.Errorf("expected 3 sales methods, got %d", len(dash.SalesMethods))
	}
	if len(dash.TopRetailers) != 2 || dash.TopRetailers[0].Retailer != "Walmart" {
		t.Errorf("unexpected retailers: %+v", dash.TopRetailers)
	}
	if len(dash.Options.Regions) != 2 || len(dash.Options.Products) != 2 {
		t.Errorf("unexpected options: %+v", dash.Options)
	}
	if dash.DateRange.MinDate.After(dash.DateRange.MaxDate) {
		t.Error("date range min after max")
	}
	// all time, 2020, Q1 2020, last 6 and 3 months
	if len(dash.Presets) != 5 || dash.Presets[0].Label != "All Time" {
		t.Errorf("unexpected presets: %+v", dash.Presets)
	}
}

func TestAnalytics_Snapshot_Filtered(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testRecords())

	from := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.Local)
	dash, err := a.Snapshot(context.Background(), models.Filter{
		Regions: []string{"South"},
		From:    &from,
	})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if dash.FilteredCount != 1 || dash.TotalCount != 3 {
		t.Errorf("counts = %d/%d, want 1/3", dash.FilteredCount, dash.TotalCount)
	}
	if dash.Summary.TotalSales != 200 {
		t.Errorf("total sales = %v, want 200", dash.Summary.TotalSales)
	}
	// options always describe the full dataset
	if len(dash.Options.Regions) != 2 {
		t.Errorf("expected options from all records, got %+v", dash.Options.Regions)
	}
}

func TestAnalytics_Snapshot_Cancelled(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testRecords())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Snapshot(ctx, models.Filter{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestAnalytics_Snapshot_CarriesLoadError(t *testing.T) {
	a := NewAnalytics(WithLogger(quietLogger()))
	a.Load(context.Background(), &stubSource{err: errors.New("Failed to fetch CSV: 404 Not Found")})

	dash, err := a.Snapshot(context.Background(), models.Filter{})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if dash.LoadError == "" {
		t.Error("expected load error on dashboard")
	}
	if dash.TotalCount != len(dataset.SampleData()) {
		t.Errorf("expected sample data, got %d records", dash.TotalCount)
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testRecords())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := a.Snapshot(context.Background(), models.Filter{}); err != nil {
				t.Errorf("Snapshot() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			a.SetData(testRecords())
		}()
	}
	wg.Wait()
}

func TestAnalytics_EmptyData(t *testing.T) {
	a := NewAnalytics()

	dash, err := a.Snapshot(context.Background(), models.Filter{})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if dash.TotalCount != 0 || len(dash.Regions) != 0 || len(dash.Monthly) != 0 {
		t.Errorf("expected empty dashboard, got %+v", dash)
	}
	if dash.FilteredShare() != 0 {
		t.Errorf("expected 0%% share, got %v", dash.FilteredShare())
	}
}

func BenchmarkAnalytics_Snapshot(b *testing.B) {
	a := NewAnalytics()
	records := make([]models.SalesRecord, 0, 10000)
	for i := 0; i < 10000; i++ {
		records = append(records, dataset.SampleData()[i%12])
	}
	a.SetData(records)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Snapshot(context.Background(), models.Filter{})
	}
}
