// Package source provides the raw CSV text the dashboard is built from.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrEmptySource is returned when a source yields no usable content.
var ErrEmptySource = errors.New("csv source is empty")

// Source yields the full CSV text of the dataset.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	Describe() string
}

type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.Path, err)
	}
	return checkEmpty(string(data))
}

func (s *FileSource) Describe() string {
	return "file:" + s.Path
}

// Stat reports the file's metadata without reading it.
func (s *FileSource) Stat() (os.FileInfo, error) {
	return os.Stat(s.Path)
}

type HTTPSource struct {
	URL    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return checkEmpty(string(body))
}

func (s *HTTPSource) Describe() string {
	return "http:" + s.URL
}

// StatusError is a non-2xx response from an HTTPSource.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch CSV: %s", e.Status)
}

type retrySource struct {
	Source
	maxRetries uint64
	interval   time.Duration
}

// WithRetry retries src up to maxRetries extra times, waiting interval
// between attempts. An empty source and 4xx responses are not retried.
func WithRetry(src Source, maxRetries uint64, interval time.Duration) Source {
	return &retrySource{Source: src, maxRetries: maxRetries, interval: interval}
}

func (s *retrySource) Fetch(ctx context.Context) (string, error) {
	var text string
	err := backoff.Retry(
		func() error {
			var fetchErr error
			text, fetchErr = s.Source.Fetch(ctx)
			if fetchErr == nil {
				return nil
			}
			if isPermanent(fetchErr) {
				return backoff.Permanent(fetchErr)
			}
			return fetchErr
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(s.interval), s.maxRetries),
			ctx,
		),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *retrySource) Unwrap() Source {
	return s.Source
}

// AsFile returns the FileSource behind src, looking through WithRetry.
func AsFile(src Source) (*FileSource, bool) {
	for src != nil {
		switch s := src.(type) {
		case *FileSource:
			return s, true
		case interface{ Unwrap() Source }:
			src = s.Unwrap()
		default:
			return nil, false
		}
	}
	return nil, false
}

func isPermanent(err error) bool {
	if errors.Is(err, ErrEmptySource) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
	}
	return false
}

func checkEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptySource
	}
	return text, nil
}
