package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/roach88/nemhist/internal/catalog"
	"github.com/roach88/nemhist/internal/ir"
)

// DefaultURLTemplate addresses the public MMSDM monthly archives.
// {table}, {year} and {month} (zero padded) are substituted per request.
const DefaultURLTemplate = "http://nemweb.com.au/Data_Archive/Wholesale_Electricity/MMSDM/{year}/MMSDM_{year}_{month}/" +
	"MMSDM_Historical_Data_SQLLoader/DATA/PUBLIC_DVD_{table}_{year}{month}010000.zip"

const (
	DefaultMaxRetries      = 3
	DefaultTimeout         = 5 * time.Minute
	defaultInitialInterval = 500 * time.Millisecond
)

// HTTPFetcher fetches archives over HTTP.
type HTTPFetcher struct {
	client          *http.Client
	catalog         *catalog.Catalog
	urlTemplate     string
	maxRetries      uint64
	initialInterval time.Duration
	logger          *zap.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithURLTemplate overrides DefaultURLTemplate.
func WithURLTemplate(tmpl string) Option {
	return func(f *HTTPFetcher) {
		if tmpl != "" {
			f.urlTemplate = tmpl
		}
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n uint64) Option {
	return func(f *HTTPFetcher) { f.maxRetries = n }
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithInitialInterval sets the first retry delay.
func WithInitialInterval(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.initialInterval = d
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewHTTPFetcher creates a fetcher that types cells with cat.
func NewHTTPFetcher(cat *catalog.Catalog, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:          &http.Client{Timeout: DefaultTimeout},
		catalog:         cat,
		urlTemplate:     DefaultURLTemplate,
		maxRetries:      DefaultMaxRetries,
		initialInterval: defaultInitialInterval,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the archive location of one table and period.
func (f *HTTPFetcher) URL(table string, year, month int) string {
	return strings.NewReplacer(
		"{table}", table,
		"{year}", strconv.Itoa(year),
		"{month}", fmt.Sprintf("%02d", month),
	).Replace(f.urlTemplate)
}

// Fetch downloads and decodes one monthly archive.
// Every failure is a SOURCE_UNAVAILABLE error naming the table and period.
func (f *HTTPFetcher) Fetch(ctx context.Context, table string, year, month int) (ir.RecordSet, error) {
	url := f.URL(table, year, month)

	body, err := f.download(ctx, url)
	if err != nil {
		return ir.RecordSet{}, ir.NewSourceUnavailable(table, year, month, err)
	}

	rs, err := Decode(body, f.catalog)
	if err != nil {
		return ir.RecordSet{}, ir.NewSourceUnavailable(table, year, month, err)
	}

	f.logger.Info("archive fetched",
		zap.String("table", table),
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Int("rows", rs.Len()))
	return rs, nil
}

// statusError is a non-200 response.
type statusError struct {
	url    string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.url, e.status)
}

func (f *HTTPFetcher) download(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			f.logger.Warn("archive request failed", zap.String("url", url), zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			serr := &statusError{url: url, status: resp.StatusCode}
			if retryable(resp.StatusCode) {
				f.logger.Warn("archive request failed", zap.String("url", url), zap.Int("attempt", attempt), zap.Error(serr))
				return serr
			}
			return backoff.Permanent(serr)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		body = b
		return nil
	}

	if err := backoff.Retry(op, f.policy(ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx)
}

// retryable reports whether a status may succeed on a later attempt.
// A missing archive (404) will not.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// IsNotFound reports whether err came from a 404 response.
func IsNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusNotFound
}
