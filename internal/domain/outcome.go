package domain

// Outcome is what the presentation layer should show after a load attempt.
// Implementations: ProductsNotLoaded, ProductList, LoadUnsuccessful.
type Outcome interface {
	outcome()
}

// ProductsNotLoaded means no load attempt has finished yet.
type ProductsNotLoaded struct{}

// ProductList holds a non-empty list obtained from the server or, when
// offline, from the cache.
type ProductList struct {
	Products []CategorizedProduct
}

// LoadUnsuccessful means nothing could be shown; Reason says why.
type LoadUnsuccessful struct {
	Reason Reason
}

func (ProductsNotLoaded) outcome() {}
func (ProductList) outcome()       {}
func (LoadUnsuccessful) outcome()  {}

type Reason int

const (
	ServerError Reason = iota + 1
	ServerNoProducts
	OfflineNoProducts
)

func (r Reason) String() string {
	switch r {
	case ServerError:
		return "server_error"
	case ServerNoProducts:
		return "server_no_products"
	case OfflineNoProducts:
		return "offline_no_products"
	}
	return "unknown"
}

// Message is the user-facing text for r.
func (r Reason) Message() string {
	switch r {
	case ServerError:
		return "Products could not be loaded because the server returned an error."
	case ServerNoProducts:
		return "The server did not return any products."
	case OfflineNoProducts:
		return "You are offline and no products have been saved on this device."
	}
	return "Products could not be loaded."
}

// OutcomeView is the JSON shape of an Outcome.
type OutcomeView struct {
	State    string        `json:"state"`
	Reason   string        `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
	Products []ProductView `json:"products,omitempty"`
}

type ProductView struct {
	Category   string  `json:"category"`
	Name       string  `json:"name"`
	ExpiryDate *string `json:"expiryDate,omitempty"`
	Price      float64 `json:"price"`
}

const (
	StateNotLoaded    = "not_loaded"
	StateProducts     = "products"
	StateUnsuccessful = "unsuccessful"
)

// View converts o for serialization. A nil outcome reads as not loaded.
func View(o Outcome) OutcomeView {
	switch v := o.(type) {
	case ProductList:
		out := OutcomeView{State: StateProducts, Products: make([]ProductView, 0, len(v.Products))}
		for _, p := range v.Products {
			out.Products = append(out.Products, ProductView{
				Category:   p.Category(),
				Name:       p.ProductName(),
				ExpiryDate: p.Expiry(),
				Price:      p.ProductPrice(),
			})
		}
		return out
	case LoadUnsuccessful:
		return OutcomeView{State: StateUnsuccessful, Reason: v.Reason.String(), Message: v.Reason.Message()}
	}
	return OutcomeView{State: StateNotLoaded}
}
