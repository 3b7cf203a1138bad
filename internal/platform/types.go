package platform

import "net/http"

// Role references a role assigned within a product.
type Role struct {
	ID string `json:"id"`
}

// Group references a group assigned within a product.
type Group struct {
	ID string `json:"id"`
}

// Product is one product entry on a platform user together with the roles
// and groups the user holds in it.
type Product struct {
	ID     string  `json:"id"`
	Roles  []Role  `json:"roles"`
	Groups []Group `json:"groups"`
}

// Account is a platform user as returned by the user endpoints.
type Account struct {
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsEnabled bool      `json:"isEnabled"`
	IsAdmin   bool      `json:"isAdmin"`
	Products  []Product `json:"products"`
}

// AccountRequest is the payload written by POST/PUT /user/. It has the same
// shape as Account so either converts to the other.
type AccountRequest struct {
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsEnabled bool      `json:"isEnabled"`
	IsAdmin   bool      `json:"isAdmin"`
	Products  []Product `json:"products"`
}

// RequestFromAccount seeds a write payload from an upstream record.
// Products are deep-copied so the request never aliases the account.
func RequestFromAccount(a Account) AccountRequest {
	req := AccountRequest(a)
	req.Products = CloneProducts(a.Products)
	return req
}

// Clone returns a deep copy of r.
func (r AccountRequest) Clone() AccountRequest {
	out := r
	out.Products = CloneProducts(r.Products)
	return out
}

// CloneProducts deep-copies products. The result and every roles/groups
// slice in it are non-nil so they encode as [] rather than null.
func CloneProducts(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		roles := make([]Role, len(p.Roles))
		copy(roles, p.Roles)
		groups := make([]Group, len(p.Groups))
		copy(groups, p.Groups)
		out = append(out, Product{ID: p.ID, Roles: roles, Groups: groups})
	}
	return out
}

// CatalogRole is a role available in a product's catalog.
type CatalogRole struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// CatalogProduct is a product as listed by GET /Product.
type CatalogProduct struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Roles []CatalogRole `json:"roles"`
}

// ProductGroup is a group as listed by GET /Group/{productId}.
type ProductGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccountLookup is the outcome of an existence probe. A missing account is
// a normal result, not an error.
type AccountLookup struct {
	Account Account
	Found   bool
}

// AccountFound wraps an existing upstream record.
func AccountFound(a Account) AccountLookup {
	return AccountLookup{Account: a, Found: true}
}

// AccountNotFound is the lookup result for an unknown email.
func AccountNotFound() AccountLookup {
	return AccountLookup{}
}

// GroupLookup is the outcome of listing one product's groups. Found is false
// when the platform answered 404; Groups is empty in that case and when the
// body was not a JSON array.
type GroupLookup struct {
	Groups []ProductGroup
	Found  bool
}

// WriteMode selects between creating and replacing a platform user.
type WriteMode int

const (
	// WriteCreate issues POST /user/.
	WriteCreate WriteMode = iota

	// WriteUpdate issues PUT /user/.
	WriteUpdate
)

// String returns "create" or "update".
func (m WriteMode) String() string {
	if m == WriteUpdate {
		return "update"
	}
	return "create"
}

// Method returns the HTTP verb for the mode.
func (m WriteMode) Method() string {
	if m == WriteUpdate {
		return http.MethodPut
	}
	return http.MethodPost
}
