package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/source"
)

const (
	previewChars = 500
	previewBytes = 4096
)

type csvDiagnostics struct {
	Exists     bool      `json:"exists"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Modified   time.Time `json:"modified"`
	Preview    string    `json:"preview"`
	HeaderLine string    `json:"header_line"`
}

// HandleDebugCSV reports what the server sees of the configured CSV file.
func (h *APIHandlers) HandleDebugCSV(w http.ResponseWriter, r *http.Request) {
	file, ok := source.AsFile(h.analytics.Source())
	if !ok {
		h.fail(w, r, errors.NotFound("no local CSV file configured"))
		return
	}

	info, err := file.Stat()
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			h.fail(w, r, errors.NotFound("CSV file not found").WithDetails(file.Path))
			return
		}
		h.fail(w, r, errors.InternalWrap(err, "Failed to stat CSV file"))
		return
	}

	head, err := readHead(file.Path, previewBytes)
	if err != nil {
		h.fail(w, r, errors.InternalWrap(err, "Failed to read CSV file"))
		return
	}

	header, _, _ := strings.Cut(head, "\n")

	errors.WriteSuccess(w, csvDiagnostics{
		Exists:     true,
		Path:       file.Path,
		Size:       info.Size(),
		Modified:   info.ModTime(),
		Preview:    truncateRunes(head, previewChars),
		HeaderLine: strings.TrimRight(header, "\r"),
	})
}

func readHead(path string, n int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, n))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), ""), nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
