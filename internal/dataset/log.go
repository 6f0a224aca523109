package dataset

import (
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger routes diagnostics of the package-level functions (ParseCSV,
// MonthlyTrends) to l. A nil l restores slog.Default.
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func defaultLogger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
