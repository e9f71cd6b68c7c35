package domain

// CategorizedProduct is a validated product of a known category.
// The set of implementations is closed: Equipment and Food.
type CategorizedProduct interface {
	Category() string
	ProductName() string
	ProductPrice() float64
	Expiry() *string
	categorized()
}

type Equipment struct {
	Name       string
	ExpiryDate *string
	Price      float64
}

type Food struct {
	Name       string
	ExpiryDate *string
	Price      float64
}

func (Equipment) Category() string { return TypeEquipment }
func (e Equipment) ProductName() string { return e.Name }
func (e Equipment) ProductPrice() float64 { return e.Price }
func (e Equipment) Expiry() *string { return e.ExpiryDate }
func (Equipment) categorized() {}
func (Food) Category() string { return TypeFood }
func (f Food) ProductName() string { return f.Name }
func (f Food) ProductPrice() float64 { return f.Price }
func (f Food) Expiry() *string { return f.ExpiryDate }
func (Food) categorized() {}

// Categorize converts a raw record. ok is false when name, type or price is
// missing or the type is neither Equipment nor Food.
func Categorize(p Product) (CategorizedProduct, bool) {
	if !p.Complete() {
		return nil, false
	}
	switch *p.Type {
	case TypeEquipment:
		return Equipment{Name: *p.Name, ExpiryDate: p.ExpiryDate, Price: *p.Price}, true
	case TypeFood:
		return Food{Name: *p.Name, ExpiryDate: p.ExpiryDate, Price: *p.Price}, true
	}
	return nil, false
}

// Valid reports whether p can be categorized.
func Valid(p Product) bool {
	_, ok := Categorize(p)
	return ok
}
