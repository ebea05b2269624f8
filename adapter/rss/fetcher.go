package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"cyberbites/domain"
)

// Some feeds reject default Go clients, so present a browser user-agent.
const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/115.0 Safari/537.36"
	acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"
)

type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}, timeout: timeout}
}

// Fetch retrieves one feed. Every outcome is captured in the returned result;
// nothing escapes to the caller, keeping sibling fetches isolated.
func (f *HTTPFetcher) Fetch(ctx context.Context, src domain.FeedSource) domain.FetchResult {
	res := domain.FetchResult{Source: src}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		res.Kind = domain.FailureConnection
		res.Err = fmt.Errorf("build request: %w", err)
		return res
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		res.Kind = classify(err)
		res.Err = fmt.Errorf("fetch %s: %w", src.URL, err)
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Kind = domain.FailureHTTP
		res.Err = fmt.Errorf("fetch %s: unexpected status %s", src.URL, resp.Status)
		return res
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Kind = classify(err)
		res.Err = fmt.Errorf("read %s: %w", src.URL, err)
		return res
	}
	res.Payload = payload
	return res
}

func classify(err error) domain.FailureKind {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.FailureTimeout
	}
	return domain.FailureConnection
}
