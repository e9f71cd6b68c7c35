package api_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"apiadventures/internal/api"
)

const sample = `[
  {"name":"Treadmill","type":"Equipment","expiryDate":null,"price":32},
  {"name":"Banana","type":"Food","expiryDate":"2026-02-29","price":29},
  {"name":null,"type":"Food","expiryDate":null,"price":3}
]`

func TestAllProducts_DecodesList(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	c := api.NewClient(srv.Client(), srv.URL+"/", "prod/random/")
	products, err := c.AllProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/prod/random/" {
		t.Fatalf("want path /prod/random/, got %q", gotPath)
	}
	if len(products) != 3 {
		t.Fatalf("want 3 products, got %d", len(products))
	}
	if products[0].Name == nil || *products[0].Name != "Treadmill" || products[0].ExpiryDate != nil {
		t.Fatalf("bad first product: %+v", products[0])
	}
	if products[1].ExpiryDate == nil || *products[1].ExpiryDate != "2026-02-29" {
		t.Fatalf("bad expiry on second product: %+v", products[1])
	}
	if products[2].Name != nil {
		t.Fatalf("want nil name on third product, got %q", *products[2].Name)
	}
}

func TestAllProducts_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(sample))
	_ = zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	products, err := api.NewClient(srv.Client(), srv.URL, "prod/random/").AllProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 3 {
		t.Fatalf("want 3 products, got %d", len(products))
	}
}

func TestAllProducts_ErrorClasses(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer garbage.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name        string
		baseURL     string
		wantHTTP    bool
		wantOffline bool
	}{
		{name: "server error status", baseURL: failing.URL, wantHTTP: true},
		{name: "connection refused", baseURL: closedURL, wantOffline: true},
		{name: "malformed body", baseURL: garbage.URL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := api.NewClient(api.NewHTTPClient(2*time.Second, nil), tt.baseURL, "prod/random/")
			_, err := c.AllProducts(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			var httpErr *api.HTTPError
			if got := errors.As(err, &httpErr); got != tt.wantHTTP {
				t.Fatalf("HTTPError match = %v, want %v (err=%v)", got, tt.wantHTTP, err)
			}
			if tt.wantHTTP && httpErr.StatusCode != http.StatusInternalServerError {
				t.Fatalf("want 500, got %d", httpErr.StatusCode)
			}
			if got := errors.Is(err, api.ErrUnreachable); got != tt.wantOffline {
				t.Fatalf("ErrUnreachable match = %v, want %v (err=%v)", got, tt.wantOffline, err)
			}
		})
	}
}

func TestRateLimitedClient_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	// one token per hour: the second call has to wait and times out instead
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	c := api.NewClient(api.NewHTTPClient(time.Second, limiter), srv.URL, "")
	if _, err := c.AllProducts(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.AllProducts(ctx)
	if err == nil {
		t.Fatal("expected limiter error")
	}
	if errors.Is(err, api.ErrUnreachable) {
		t.Fatalf("limiter wait must not read as offline: %v", err)
	}
}

func TestHostPort(t *testing.T) {
	c := api.NewClient(nil, "", "")
	hp, err := c.HostPort()
	if err != nil {
		t.Fatal(err)
	}
	if hp != "kgtttq6tg9.execute-api.us-east-2.amazonaws.com:443" {
		t.Fatalf("unexpected host port %q", hp)
	}
	if c.URL() != api.DefaultBaseURL+api.DefaultEndpoint {
		t.Fatalf("unexpected url %q", c.URL())
	}
}
