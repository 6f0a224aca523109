package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/source"
)

const (
	topProducts  = 10
	topRetailers = 10
)

// LoadError is the user-facing notice raised when the dataset could not be
// loaded and the sample data is shown instead. It is retryable via Reload.
type LoadError struct {
	Source string
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v (using sample data as fallback)", e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

type Analytics struct {
	mu          sync.RWMutex
	records     []models.SalesRecord
	loadErr     *LoadError
	usingSample bool
	loadedAt    time.Time
	src         source.Source
	cache       *recordCache
	logger      *slog.Logger
}

type Option func(*Analytics)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

// WithCacheDir enables the parsed-record cache for file sources.
func WithCacheDir(dir string) Option {
	return func(a *Analytics) { a.cache = newRecordCache(dir) }
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		records: []models.SalesRecord{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetData replaces the dataset directly, clearing any load error.
func (a *Analytics) SetData(records []models.SalesRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = records
	a.loadErr = nil
	a.usingSample = false
	a.loadedAt = time.Now()
}

// Load fetches and parses the dataset from src. A fetch failure or empty
// content falls back to the bundled sample data and is reported through
// LoadError; the returned error is the same notice. A source that parses to
// zero records also falls back, without an error.
func (a *Analytics) Load(ctx context.Context, src source.Source) error {
	ctx, span := observability.StartSpan(ctx, "dataset.load")
	defer span.Report(a.logger)
	span.SetTag("source", src.Describe())

	a.mu.Lock()
	a.src = src
	a.mu.Unlock()

	start := time.Now()

	if records, ok := a.cache.lookup(src); ok {
		a.store(records, nil, false)
		a.logger.Info("loaded from cache", "records", len(records), "source", src.Describe())
		return nil
	}

	text, err := src.Fetch(ctx)
	if err != nil {
		loadErr := &LoadError{Source: src.Describe(), Cause: err}
		span.SetError(err)
		a.logger.Error("failed to load csv, using sample data", "source", src.Describe(), "error", err)
		a.store(dataset.SampleData(), loadErr, true)
		return loadErr
	}

	records := dataset.NewParser(a.logger).Parse(text)
	if len(records) == 0 {
		a.logger.Warn("no records parsed from csv, using sample data", "source", src.Describe())
		a.store(dataset.SampleData(), nil, true)
		return nil
	}

	if err := a.cache.save(src, records); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	a.store(records, nil, false)

	duration := time.Since(start)
	a.logger.Info("csv processing complete",
		"records", len(records),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(records))/duration.Seconds()),
	)
	return nil
}

// Reload repeats Load against the last used source.
func (a *Analytics) Reload(ctx context.Context) error {
	a.mu.RLock()
	src := a.src
	a.mu.RUnlock()

	if src == nil {
		return errors.New("no data source configured")
	}
	a.cache.invalidate(src)
	return a.Load(ctx, src)
}

func (a *Analytics) store(records []models.SalesRecord, loadErr *LoadError, sample bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = records
	a.loadErr = loadErr
	a.usingSample = sample
	a.loadedAt = time.Now()
}

// Records returns the loaded dataset. Callers must not modify it.
func (a *Analytics) Records() []models.SalesRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.records
}

// LoadError returns the notice from the last load, or nil.
func (a *Analytics) LoadError() *LoadError {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loadErr
}

func (a *Analytics) Source() source.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.src
}

// Snapshot computes every dashboard aggregate for the records matching f.
func (a *Analytics) Snapshot(ctx context.Context, f models.Filter) (models.Dashboard, error) {
	a.mu.RLock()
	all := a.records
	loadErr := a.loadErr
	a.mu.RUnlock()

	filtered := dataset.Filter(all, f)

	dash := models.Dashboard{
		FilteredCount: len(filtered),
		TotalCount:    len(all),
		DateRange:     dataset.GetDateRange(all),
		Options: models.FilterOptions{
			Regions:  dataset.DistinctRegions(all),
			Products: dataset.DistinctProducts(all),
		},
	}
	dash.Presets = dataset.QuickRanges(dash.DateRange)
	if loadErr != nil {
		dash.LoadError = loadErr.Error()
	}

	g, ctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { dash.Summary = dataset.Summarize(filtered) })
	run(func() { dash.Regions = dataset.AggregateByRegion(filtered) })
	run(func() {
		products := dataset.AggregateByProduct(filtered)
		if len(products) > topProducts {
			products = products[:topProducts]
		}
		dash.Products = products
	})
	run(func() { dash.Monthly = dataset.MonthlyTrends(filtered) })
	run(func() { dash.SalesMethods = dataset.AggregateBySalesMethod(filtered) })
	run(func() { dash.TopRetailers = dataset.TopRetailers(filtered, topRetailers) })

	if err := g.Wait(); err != nil {
		return models.Dashboard{}, fmt.Errorf("compute dashboard: %w", err)
	}
	return dash, nil
}

// Filtered returns the records matching f.
func (a *Analytics) Filtered(f models.Filter) []models.SalesRecord {
	return dataset.Filter(a.Records(), f)
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"record_count":   len(a.records),
		"last_processed": a.loadedAt,
		"using_sample":   a.usingSample,
		"regions":        len(dataset.DistinctRegions(a.records)),
		"products":       len(dataset.DistinctProducts(a.records)),
	}
	if a.src != nil {
		stats["source"] = a.src.Describe()
	}
	if a.loadErr != nil {
		stats["load_error"] = a.loadErr.Error()
	}
	return stats
}
