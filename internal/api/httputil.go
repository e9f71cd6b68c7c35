package api

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// NewHTTPClient creates an HTTP client with sensible defaults. A nil limiter
// disables rate limiting.
func NewHTTPClient(timeout time.Duration, limiter *rate.Limiter) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if limiter != nil {
		transport = &limitedTransport{base: transport, limiter: limiter}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// limitedTransport waits for a limiter token before every request.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}

// readBody reads and decompresses an HTTP response body.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		reader = resp.Body
	}
	return io.ReadAll(reader)
}
