package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
)

const testHeader = "Retailer,Retailer ID,Invoice Date,Region,State,City,Product,Price per Unit,Units Sold,Total Sales,Operating Profit,Operating Margin,Sales Method"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(services.WithLogger(quietLogger()))
	a.SetData([]models.SalesRecord{
		{Retailer: "Walmart", RetailerID: 1128299, InvoiceDate: "2021-01-05", Region: "South", State: "Texas", City: "Houston", Product: "Men's Street Footwear", PricePerUnit: 50, UnitsSold: 100, TotalSales: 5000, OperatingProfit: 1500, OperatingMargin: 0.3, SalesMethod: "Outlet"},
		{Retailer: "Kohl's", RetailerID: 1189833, InvoiceDate: "2021-02-10", Region: "Midwest", State: "Ohio", City: "Columbus", Product: "Women's Apparel", PricePerUnit: 40, UnitsSold: 50, TotalSales: 2000, OperatingProfit: 800, OperatingMargin: 0.4, SalesMethod: "Online"},
		{Retailer: "Walmart", RetailerID: 1128299, InvoiceDate: "2021-02-20", Region: "South", State: "Florida", City: "Miami", Product: "Women's Apparel", PricePerUnit: 30, UnitsSold: 10, TotalSales: 300, OperatingProfit: 60, OperatingMargin: 0.2, SalesMethod: "In-store"},
	})
	return a
}

type failingSource struct{}

func (failingSource) Fetch(ctx context.Context) (string, error) {
	return "", errors.New("connection refused")
}

func (failingSource) Describe() string { return "http:unreachable" }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Details   string `json:"details"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func serve(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewAPIHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := slog.Default()
	handlers := NewAPIHandlers(analytics, logger)

	if handlers == nil {
		t.Error("NewAPIHandlers() returned nil")
	}

	if handlers.analytics != analytics {
		t.Error("NewAPIHandlers() should set analytics field")
	}
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleSummary, http.MethodGet, "/api/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != cacheControl {
		t.Errorf("expected Cache-Control %q, got %q", cacheControl, cc)
	}

	env := decode(t, w)
	var summary models.Summary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.TotalSales != 7300 {
		t.Errorf("expected total sales 7300, got %v", summary.TotalSales)
	}
	if summary.UniqueRetailers != 2 {
		t.Errorf("expected 2 retailers, got %d", summary.UniqueRetailers)
	}
	if summary.Records != 3 {
		t.Errorf("expected 3 records, got %d", summary.Records)
	}
}

func TestAPIHandlers_HandleRegions(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleRegions, http.MethodGet, "/api/regions")
	env := decode(t, w)

	var regions []models.RegionSummary
	if err := json.Unmarshal(env.Data, &regions); err != nil {
		t.Fatal(err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Region != "South" || regions[0].TotalSales != 5300 || regions[0].Count != 2 {
		t.Errorf("unexpected first region: %+v", regions[0])
	}
}

func TestAPIHandlers_FilterByRegionAndDate(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	tests := []struct {
		name  string
		query string
		want  float64
	}{
		{"region", "?region=South", 5300},
		{"two regions", "?region=South&region=Midwest", 7300},
		{"product", "?product=Women%27s+Apparel", 2300},
		{"region and product", "?region=South&product=Women%27s+Apparel", 300},
		{"from", "?from=2021-02-01", 2300},
		{"inclusive to", "?to=2021-02-10", 7000},
		{"single day", "?from=2021-02-20&to=2021-02-20", 300},
		{"blank values ignored", "?region=&from=", 7300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(handlers.HandleSummary, http.MethodGet, "/api/summary"+tt.query)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var summary models.Summary
			if err := json.Unmarshal(decode(t, w).Data, &summary); err != nil {
				t.Fatal(err)
			}
			if summary.TotalSales != tt.want {
				t.Errorf("total sales = %v, want %v", summary.TotalSales, tt.want)
			}
		})
	}
}

func TestAPIHandlers_InvalidFilter(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	for _, query := range []string{
		"?from=01/02/2021",
		"?to=yesterday",
		"?from=2021-03-01&to=2021-02-01",
	} {
		t.Run(query, func(t *testing.T) {
			w := serve(handlers.HandleRegions, http.MethodGet, "/api/regions"+query)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			env := decode(t, w)
			if env.Success {
				t.Error("expected success=false")
			}
			if env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR, got %q", env.Error.Code)
			}
		})
	}
}

func TestAPIHandlers_HandleProductsLimit(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleProducts, http.MethodGet, "/api/products?limit=1")
	var products []models.ProductSummary
	if err := json.Unmarshal(decode(t, w).Data, &products); err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Product != "Men's Street Footwear" {
		t.Errorf("unexpected products: %+v", products)
	}

	w = serve(handlers.HandleProducts, http.MethodGet, "/api/products?limit=-3")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for negative limit, got %d", w.Code)
	}
}

func TestAPIHandlers_HandleMonthly(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleMonthly, http.MethodGet, "/api/monthly")
	var months []models.MonthlyTrend
	if err := json.Unmarshal(decode(t, w).Data, &months); err != nil {
		t.Fatal(err)
	}
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	if months[0].Month != "2021-01" || months[1].Month != "2021-02" {
		t.Errorf("months not in ascending order: %+v", months)
	}
	if months[1].TotalSales != 2300 {
		t.Errorf("expected February sales 2300, got %v", months[1].TotalSales)
	}
}

func TestAPIHandlers_HandleSalesMethodsAndRetailers(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleSalesMethods, http.MethodGet, "/api/sales-methods")
	var methods []models.ChannelSales
	if err := json.Unmarshal(decode(t, w).Data, &methods); err != nil {
		t.Fatal(err)
	}
	if len(methods) != 3 {
		t.Errorf("expected 3 sales methods, got %d", len(methods))
	}

	w = serve(handlers.HandleRetailers, http.MethodGet, "/api/retailers")
	var retailers []models.RetailerSales
	if err := json.Unmarshal(decode(t, w).Data, &retailers); err != nil {
		t.Fatal(err)
	}
	if len(retailers) != 2 || retailers[0].Retailer != "Walmart" || retailers[0].Sales != 5300 {
		t.Errorf("unexpected retailers: %+v", retailers)
	}
}

func TestAPIHandlers_DatasetMetadataIgnoresFilter(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleFilters, http.MethodGet, "/api/filters?region=South")
	var opts models.FilterOptions
	if err := json.Unmarshal(decode(t, w).Data, &opts); err != nil {
		t.Fatal(err)
	}
	if len(opts.Regions) != 2 || len(opts.Products) != 2 {
		t.Errorf("unexpected options: %+v", opts)
	}

	w = serve(handlers.HandleDateRange, http.MethodGet, "/api/date-range")
	var rng models.DateRange
	if err := json.Unmarshal(decode(t, w).Data, &rng); err != nil {
		t.Fatal(err)
	}
	if got := rng.MinDate.Format(dateLayout); got != "2021-01-05" {
		t.Errorf("min date = %s", got)
	}
	if got := rng.MaxDate.Format(dateLayout); got != "2021-02-20" {
		t.Errorf("max date = %s", got)
	}
}

func TestAPIHandlers_HandleDashboard(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleDashboard, http.MethodGet, "/api/dashboard?region=Midwest")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var dash models.Dashboard
	if err := json.Unmarshal(decode(t, w).Data, &dash); err != nil {
		t.Fatal(err)
	}
	if dash.FilteredCount != 1 || dash.TotalCount != 3 {
		t.Errorf("counts = %d/%d, want 1/3", dash.FilteredCount, dash.TotalCount)
	}
	if dash.Summary.TotalSales != 2000 {
		t.Errorf("summary sales = %v, want 2000", dash.Summary.TotalSales)
	}
	if len(dash.Options.Regions) != 2 {
		t.Errorf("options should cover the whole dataset, got %v", dash.Options.Regions)
	}
}

func TestAPIHandlers_HandleReload(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())
		w := serve(handlers.HandleReload, http.MethodPost, "/api/reload")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", w.Code)
		}
	})

	t.Run("load failure falls back", func(t *testing.T) {
		analytics := services.NewAnalytics(services.WithLogger(quietLogger()))
		_ = analytics.Load(context.Background(), failingSource{})
		handlers := NewAPIHandlers(analytics, quietLogger())

		w := serve(handlers.HandleReload, http.MethodPost, "/api/reload")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", w.Code)
		}
		env := decode(t, w)
		if env.Error.Code != "DATA_UNAVAILABLE" || !env.Error.Retryable {
			t.Errorf("unexpected error: %+v", env.Error)
		}
		if env.Error.Details != "http:unreachable" {
			t.Errorf("details = %q", env.Error.Details)
		}
		if len(analytics.Records()) == 0 {
			t.Error("sample data should remain loaded")
		}
	})

	t.Run("success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sales.csv")
		csv := testHeader + "\nWalmart,1128299,2021-01-05,South,Texas,Houston,Men's Apparel,$50.00,100,5000,1500,0.3,Outlet\n"
		if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
			t.Fatal(err)
		}

		analytics := services.NewAnalytics(services.WithLogger(quietLogger()))
		if err := analytics.Load(context.Background(), source.NewFileSource(path)); err != nil {
			t.Fatal(err)
		}
		handlers := NewAPIHandlers(analytics, quietLogger())

		w := serve(handlers.HandleReload, http.MethodPost, "/api/reload")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		var stats map[string]any
		if err := json.Unmarshal(decode(t, w).Data, &stats); err != nil {
			t.Fatal(err)
		}
		if stats["record_count"] != float64(1) {
			t.Errorf("record_count = %v, want 1", stats["record_count"])
		}
	})
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleHealth, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var health map[string]any
	if err := json.Unmarshal(decode(t, w).Data, &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", health["status"])
	}
	if _, ok := health["timestamp"]; !ok {
		t.Error("health response should include timestamp")
	}

	analytics := services.NewAnalytics(services.WithLogger(quietLogger()))
	_ = analytics.Load(context.Background(), failingSource{})
	w = serve(NewAPIHandlers(analytics, quietLogger()).HandleHealth, http.MethodGet, "/health")
	if err := json.Unmarshal(decode(t, w).Data, &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "degraded" {
		t.Errorf("expected degraded after load failure, got %v", health["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), quietLogger())

	w := serve(handlers.HandleStats, http.MethodGet, "/admin/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var stats map[string]any
	if err := json.Unmarshal(decode(t, w).Data, &stats); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"record_count", "last_processed", "using_sample", "regions", "products"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("stats missing %q", key)
		}
	}
}

func TestAPIHandlers_HandleDebugCSV(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sales.csv")
		body := testHeader + "\r\n" + strings.Repeat("Walmart,1,2021-01-05,South,Texas,Houston,Shoes,1,1,1,1,0.1,Online\n", 20)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		analytics := services.NewAnalytics(services.WithLogger(quietLogger()))
		_ = analytics.Load(context.Background(), source.WithRetry(source.NewFileSource(path), 0, 0))

		w := serve(NewAPIHandlers(analytics, quietLogger()).HandleDebugCSV, http.MethodGet, "/api/debug-csv")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var diag csvDiagnostics
		if err := json.Unmarshal(decode(t, w).Data, &diag); err != nil {
			t.Fatal(err)
		}
		if !diag.Exists || diag.Path != path {
			t.Errorf("unexpected diagnostics: %+v", diag)
		}
		if diag.Size != int64(len(body)) {
			t.Errorf("size = %d, want %d", diag.Size, len(body))
		}
		if diag.HeaderLine != testHeader {
			t.Errorf("header line = %q", diag.HeaderLine)
		}
		if len([]rune(diag.Preview)) != previewChars {
			t.Errorf("preview length = %d, want %d", len([]rune(diag.Preview)), previewChars)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.csv")
		analytics := services.NewAnalytics(services.WithLogger(quietLogger()))
		_ = analytics.Load(context.Background(), source.NewFileSource(path))

		w := serve(NewAPIHandlers(analytics, quietLogger()).HandleDebugCSV, http.MethodGet, "/api/debug-csv")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
		if env := decode(t, w); env.Error.Details != path {
			t.Errorf("details = %q, want %q", env.Error.Details, path)
		}
	})

	t.Run("no file source", func(t *testing.T) {
		w := serve(NewAPIHandlers(createTestAnalytics(), quietLogger()).HandleDebugCSV, http.MethodGet, "/api/debug-csv")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})
}
