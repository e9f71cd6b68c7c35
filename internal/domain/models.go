package domain

// Product is a raw product record, both as the API sends it and as the cache
// stores it. Every field besides ID may be missing upstream.
type Product struct {
	ID         int64    `db:"id" json:"-"`
	Name       *string  `db:"name" json:"name"`
	Type       *string  `db:"type" json:"type"`
	ExpiryDate *string  `db:"expiry_date" json:"expiryDate"`
	Price      *float64 `db:"price" json:"price"`
}

const (
	TypeEquipment = "Equipment"
	TypeFood      = "Food"
)

// Complete reports whether name, type and price are all present.
func (p Product) Complete() bool {
	return p.Name != nil && p.Type != nil && p.Price != nil
}

// Key is the comparable value of a record, used for equality checks.
type Key struct {
	ID         int64
	Name       string
	HasName    bool
	Type       string
	HasType    bool
	ExpiryDate string
	HasExpiry  bool
	Price      float64
	HasPrice   bool
}

// Key returns p as a comparable value. Two records are equal when their keys are.
func (p Product) Key() Key {
	k := Key{ID: p.ID}
	if p.Name != nil {
		k.Name, k.HasName = *p.Name, true
	}
	if p.Type != nil {
		k.Type, k.HasType = *p.Type, true
	}
	if p.ExpiryDate != nil {
		k.ExpiryDate, k.HasExpiry = *p.ExpiryDate, true
	}
	if p.Price != nil {
		k.Price, k.HasPrice = *p.Price, true
	}
	return k
}

// ContentKey is Key without the generated identifier.
func (p Product) ContentKey() Key {
	k := p.Key()
	k.ID = 0
	return k
}

// Equal compares every field, the generated ID included.
func (p Product) Equal(o Product) bool { return p.Key() == o.Key() }

// Distinct drops later duplicates, keeping the first occurrence.
func Distinct(products []Product) []Product {
	seen := make(map[Key]struct{}, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NewProduct builds a fully populated record. An empty expiry means none.
func NewProduct(name, typ, expiry string, price float64) Product {
	p := Product{Name: &name, Type: &typ, Price: &price}
	if expiry != "" {
		p.ExpiryDate = &expiry
	}
	return p
}
