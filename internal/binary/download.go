package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// MaxRetries caps configured retries
	MaxRetries = 10
	// maxBackoff caps the wait between attempts
	maxBackoff = 30 * time.Second
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "hermes-setup/1.0"
	// maxRedirects bounds redirect chains
	maxRedirects = 10
)

// DownloaderConfig configures a Downloader. Zero values select the defaults.
type DownloaderConfig struct {
	Timeout time.Duration
	// Retries is the number of retries after the first attempt. Negative disables retrying.
	Retries   int
	UserAgent string
	// Progress receives a progress bar when it is a terminal. Nil disables it.
	Progress *os.File
}

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
	progress  *os.File
	// backoff returns the wait before retry attempt n (n >= 1)
	backoff func(attempt int) time.Duration
}

// NewDownloader creates a new downloader
func NewDownloader(cfg DownloaderConfig) *Downloader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	} else if retries == 0 {
		retries = DefaultRetries
	} else if retries > MaxRetries {
		retries = MaxRetries
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		retries:   retries,
		progress:  cfg.Progress,
		backoff:   exponentialBackoff,
	}
}

// exponentialBackoff waits 1s, 2s, 4s, ... up to maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	if attempt > 6 {
		return maxBackoff
	}
	return min(time.Duration(1<<uint(attempt-1))*time.Second, maxBackoff)
}

// DownloadToFile downloads a URL to a specific file path. The file only
// appears at destPath once the whole body has been written.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			select {
			case <-time.After(d.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = d.downloadOnce(ctx, url, destPath)
		if lastErr == nil || ctx.Err() != nil || !retryable(lastErr) {
			break
		}
	}
	if lastErr == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !retryable(lastErr) {
		return lastErr
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

// retryable reports whether another attempt can succeed. 4xx answers
// other than 429 will not change.
func retryable(err error) bool {
	var statusErr *HTTPStatusError
	return !errors.As(err, &statusErr) || statusErr.Temporary()
}

// downloadOnce performs a single GET and writes a 200 body to destPath.
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, finish := progress(d.progress, resp.Body, resp.ContentLength)
	defer finish()
	return writeAtomic(destPath, body)
}

// writeAtomic streams r into destPath via a sibling ".part" file, so a
// partial body never appears under the final name.
func writeAtomic(destPath string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	partPath := destPath + ".part"
	f, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(partPath)
		}
	}()

	if _, err = io.Copy(f, r); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(partPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
