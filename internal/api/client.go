// Package api talks to the remote product catalog.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"apiadventures/internal/domain"
)

const (
	DefaultBaseURL  = "https://kgtttq6tg9.execute-api.us-east-2.amazonaws.com/"
	DefaultEndpoint = "prod/random/"
)

// Client fetches the product list from BaseURL + Endpoint.
type Client struct {
	http *http.Client
	url  string
}

func NewClient(hc *http.Client, baseURL, endpoint string) *Client {
	if hc == nil {
		hc = NewHTTPClient(0, nil)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{http: hc, url: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")}
}

// URL is the full product endpoint.
func (c *Client) URL() string { return c.url }

// HostPort returns the host and port the endpoint resolves to, for
// connectivity probes.
func (c *Client) HostPort() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// AllProducts GETs the full product list. Errors are *HTTPError for non-2xx
// answers and wrap ErrUnreachable when the host cannot be reached.
func (c *Client) AllProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, URL: c.url}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read products body: %w", err)
	}
	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}
