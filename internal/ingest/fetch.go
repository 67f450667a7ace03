package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetch failures are the only fatal stage of a run.
var (
	ErrFetchTimeout = errors.New("fetch timed out")
	ErrFetchFailed  = errors.New("fetch failed")
)

// DefaultFetchTimeout bounds the raw source download. Retries are the
// scheduler's job, not the pipeline's.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher resolves a raw source locator (URL or local file path) to bytes.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// HTTPFetcher downloads raw sources over HTTP(S) and reads file:// or plain
// path locators from disk.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher builds a fetcher with the given timeout (DefaultFetchTimeout
// when zero).
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "sightline/1.0").
		SetRetryCount(0)
	return &HTTPFetcher{client: client}
}

// Fetch resolves locator to raw bytes. HTTP failures and timeouts map onto
// the fetch error kinds so the runner can report a Failed state.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	parsed, err := url.Parse(locator)
	if err != nil || parsed.Scheme == "" || parsed.Scheme == "file" {
		return fetchLocal(locator)
	}

	resp, err := f.client.R().SetContext(ctx).Get(locator)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrFetchTimeout, locator)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrFetchFailed, resp.StatusCode(), locator)
	}
	return resp.Body(), nil
}

func fetchLocal(locator string) ([]byte, error) {
	path := strings.TrimPrefix(locator, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return data, nil
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
