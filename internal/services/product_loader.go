package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"apiadventures/internal/api"
	"apiadventures/internal/config"
	"apiadventures/internal/domain"
	applog "apiadventures/internal/log"
)

// ProductSource is the remote catalog.
type ProductSource interface {
	AllProducts(ctx context.Context) ([]domain.Product, error)
}

// ProductStore is the local cache of raw records.
type ProductStore interface {
	AddNewProducts(ctx context.Context, products []domain.Product) error
	ReplaceStoredProducts(ctx context.Context, products []domain.Product) error
	StoredProducts(ctx context.Context) ([]domain.Product, error)
}

// Loader produces an Outcome for one load attempt.
type Loader interface {
	Load(ctx context.Context) (domain.Outcome, error)
}

type ProductLoader struct {
	Source ProductSource
	Store  ProductStore
	// Policy is config.CachePolicyMerge (add-only) or config.CachePolicyReplace.
	Policy string
}

func NewProductLoader(src ProductSource, store ProductStore, policy string) *ProductLoader {
	if policy == "" {
		policy = config.CachePolicyMerge
	}
	return &ProductLoader{Source: src, Store: store, Policy: policy}
}

// Load fetches products from the server and falls back to the cache when the
// host is unreachable. Server errors and unreachable hosts map to
// LoadUnsuccessful outcomes; any other failure is returned as an error.
// Records that cannot be categorized are dropped, never reported.
func (l *ProductLoader) Load(ctx context.Context) (domain.Outcome, error) {
	fields := map[string]any{"load_id": uuid.NewString(), "policy": l.Policy}

	fetched, err := l.Source.AllProducts(ctx)
	if err != nil {
		var httpErr *api.HTTPError
		switch {
		case errors.As(err, &httpErr):
			fields["status"] = httpErr.StatusCode
			applog.Warn(nil, "products.load.server_error", err, fields)
			return done(domain.LoadUnsuccessful{Reason: domain.ServerError}, "server", fields), nil
		case errors.Is(err, api.ErrUnreachable):
			applog.Warn(nil, "products.load.offline", err, fields)
			return done(l.offline(ctx, fields), "cache", fields), nil
		}
		applog.Error(nil, "products.load.fail", err, fields)
		return domain.ProductsNotLoaded{}, fmt.Errorf("load products: %w", err)
	}

	products := validRecords(fetched)
	fields["fetched"] = len(fetched)
	fields["valid"] = len(products)
	if len(products) == 0 {
		return done(domain.LoadUnsuccessful{Reason: domain.ServerNoProducts}, "server", fields), nil
	}

	if err := l.write(ctx, products); err != nil {
		applog.Warn(nil, "products.cache.write.fail", err, fields)
		return done(domain.ProductList{Products: categorize(products, fields)}, "server", fields), nil
	}
	stored, err := l.Store.StoredProducts(ctx)
	if err != nil {
		applog.Warn(nil, "products.cache.read.fail", err, fields)
		return done(domain.ProductList{Products: categorize(products, fields)}, "server", fields), nil
	}
	list := categorize(distinctContent(stored), fields)
	if len(list) == 0 {
		list = categorize(products, fields)
	}
	return done(domain.ProductList{Products: list}, "cache", fields), nil
}

func (l *ProductLoader) write(ctx context.Context, products []domain.Product) error {
	if l.Policy == config.CachePolicyReplace {
		return l.Store.ReplaceStoredProducts(ctx, products)
	}
	return l.Store.AddNewProducts(ctx, products)
}

// offline reads the cache. A read failure counts as an empty cache.
func (l *ProductLoader) offline(ctx context.Context, fields map[string]any) domain.Outcome {
	stored, err := l.Store.StoredProducts(ctx)
	if err != nil {
		applog.Warn(nil, "products.cache.read.fail", err, fields)
		stored = nil
	}
	list := categorize(distinctContent(stored), fields)
	if len(list) == 0 {
		return domain.LoadUnsuccessful{Reason: domain.OfflineNoProducts}
	}
	return domain.ProductList{Products: list}
}

// validRecords deduplicates and keeps only records that categorize.
func validRecords(in []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(in))
	for _, p := range domain.Distinct(in) {
		if domain.Valid(p) {
			out = append(out, p)
		}
	}
	return out
}

// distinctContent drops rows whose content repeats an earlier row, ignoring ids.
func distinctContent(in []domain.Product) []domain.Product {
	seen := make(map[domain.Key]struct{}, len(in))
	out := make([]domain.Product, 0, len(in))
	for _, p := range in {
		k := p.ContentKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

func categorize(records []domain.Product, fields map[string]any) []domain.CategorizedProduct {
	out := make([]domain.CategorizedProduct, 0, len(records))
	skipped := 0
	for _, p := range records {
		c, ok := domain.Categorize(p)
		if !ok {
			skipped++
			continue
		}
		out = append(out, c)
	}
	if skipped > 0 {
		applog.Warn(nil, "products.categorize.skip", nil, map[string]any{
			"load_id": fields["load_id"], "skipped": skipped,
		})
	}
	return out
}

func done(o domain.Outcome, source string, fields map[string]any) domain.Outcome {
	f := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		f[k] = v
	}
	f["source"] = source
	switch v := o.(type) {
	case domain.ProductList:
		f["outcome"] = domain.StateProducts
		f["count"] = len(v.Products)
	case domain.LoadUnsuccessful:
		f["outcome"] = domain.StateUnsuccessful
		f["reason"] = v.Reason.String()
	}
	applog.Info(nil, "products.load.done", f)
	return o
}
