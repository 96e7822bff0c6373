package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// FetchError is returned when the remote source answers with a non-200 status
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// RefreshResult describes one refresh check
type RefreshResult struct {
	Year         int
	Path         string
	URL          string
	CheckedAt    time.Time
	MaxTimestamp time.Time // Latest timestamp in the cache after the check
	Stale        bool      // Cache missing, unreadable, or older than the stale threshold
	Fetched      bool      // A new copy replaced the cache
	Bytes        int64
	Err          error // Fetch or write failure; the previous cache is left untouched
}

// Age returns how old the cached data was at check time
func (r RefreshResult) Age() time.Duration {
	if r.MaxTimestamp.IsZero() {
		return 0
	}
	return r.CheckedAt.Sub(r.MaxTimestamp)
}

// Recorder persists refresh attempts
type Recorder interface {
	RecordRefresh(ctx context.Context, result RefreshResult) error
}

// RefresherOptions configures a Refresher
type RefresherOptions struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	StaleAfter time.Duration
	Location   *time.Location
	Recorder   Recorder
	HTTPClient *http.Client
	Now        func() time.Time
}

// Refresher keeps the current year's cached file up to date
type Refresher struct {
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	staleAfter time.Duration
	location   *time.Location
	recorder   Recorder
	now        func() time.Time
}

// NewRefresher creates a Refresher, filling in defaults for zero options
func NewRefresher(opts RefresherOptions) *Refresher {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 24 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Refresher{
		httpClient: client,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		staleAfter: opts.StaleAfter,
		location:   opts.Location,
		recorder:   opts.Recorder,
		now:        opts.Now,
	}
}

// Refresh checks the cache at path and replaces it from url when stale.
//
// The cache is stale when its latest timestamp is older than the stale threshold. A stale
// cache is only fetched again when the file itself was written more than the threshold ago,
// so repeated checks within that period cost at most one download.
func (r *Refresher) Refresh(ctx context.Context, year int, path, url string) RefreshResult {
	now := r.now()
	result := RefreshResult{
		Year:      year,
		Path:      path,
		URL:       url,
		CheckedAt: now,
	}

	if !r.needsFetch(path, now, &result) {
		r.record(ctx, result)
		return result
	}

	body, err := r.fetch(ctx, url)
	if err != nil {
		result.Err = err
		r.record(ctx, result)
		return result
	}

	records, err := ParseCSV(bytes.NewReader(body), r.location)
	if err != nil {
		result.Err = fmt.Errorf("validating download: %w", err)
		r.record(ctx, result)
		return result
	}
	latest, ok := MaxTimestamp(records)
	if !ok {
		result.Err = fmt.Errorf("validating download: %w", ErrNoRecords)
		r.record(ctx, result)
		return result
	}

	if err := writeAtomic(path, body); err != nil {
		result.Err = err
		r.record(ctx, result)
		return result
	}

	result.Fetched = true
	result.Bytes = int64(len(body))
	result.MaxTimestamp = latest
	r.record(ctx, result)
	return result
}

// needsFetch inspects the cache and fills in Stale and MaxTimestamp
func (r *Refresher) needsFetch(path string, now time.Time, result *RefreshResult) bool {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Err = fmt.Errorf("checking cache: %w", err)
			return false
		}
		result.Stale = true
		return true
	}

	records, err := ReadFile(path, r.location)
	if err != nil {
		// An unreadable cache can only be fixed by a new download
		result.Stale = true
		return true
	}
	latest, ok := MaxTimestamp(records)
	if !ok {
		result.Stale = true
		return true
	}

	result.MaxTimestamp = latest
	result.Stale = now.Sub(latest) > r.staleAfter
	if !result.Stale {
		return false
	}
	return now.Sub(info.ModTime()) > r.staleAfter
}

// fetch downloads url, retrying transport errors and server errors
func (r *Refresher) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 && r.retryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * r.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "text/csv")
		req.Header.Set("User-Agent", "powercurve")

		resp, err := r.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request error: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &FetchError{URL: url, StatusCode: resp.StatusCode}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Body: string(snippet)}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response body: %w", err)
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (r *Refresher) record(ctx context.Context, result RefreshResult) {
	if r.recorder == nil {
		return
	}
	// A failing refresh log must not change the refresh outcome
	_ = r.recorder.RecordRefresh(ctx, result)
}

// writeAtomic writes data to a temporary file and renames it over path
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}
