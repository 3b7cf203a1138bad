package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/opmodel/platconn/internal/platform"
)

// Write is one WriteAccount call seen by FakePlatform.
type Write struct {
	Request platform.AccountRequest
	Mode    platform.WriteMode
}

// FakePlatform is an in-memory platform. Written requests become the stored
// account, the way the real API echoes them.
type FakePlatform struct {
	mu sync.Mutex

	accounts []platform.Account

	// Products is returned by ListProducts.
	Products []platform.CatalogProduct

	// Groups maps product id to its groups. Missing ids answer 404.
	Groups map[string][]platform.ProductGroup

	// Info is returned by TestConnection.
	Info platform.ConnectionInfo

	// Errors maps a method name ("GetAccount", "WriteAccount", ...) to the
	// error that method returns.
	Errors map[string]error

	// Writes records every WriteAccount call.
	Writes []Write

	// Calls records method names in call order.
	Calls []string
}

// NewFakePlatform returns a FakePlatform holding accounts.
func NewFakePlatform(accounts ...platform.Account) *FakePlatform {
	return &FakePlatform{
		accounts: slices.Clone(accounts),
		Groups:   map[string][]platform.ProductGroup{},
		Errors:   map[string]error{},
	}
}

// Account returns the stored account for email.
func (f *FakePlatform) Account(email string) (platform.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(email)
	if i < 0 {
		return platform.Account{}, false
	}
	return f.accounts[i], true
}

func (f *FakePlatform) index(email string) int {
	return slices.IndexFunc(f.accounts, func(a platform.Account) bool { return a.Email == email })
}

func (f *FakePlatform) enter(method string) error {
	f.Calls = append(f.Calls, method)
	return f.Errors[method]
}

func (f *FakePlatform) GetAccount(_ context.Context, email string) (platform.AccountLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetAccount"); err != nil {
		return platform.AccountLookup{}, err
	}
	i := f.index(email)
	if i < 0 {
		return platform.AccountNotFound(), nil
	}
	return platform.AccountFound(f.accounts[i]), nil
}

func (f *FakePlatform) WriteAccount(_ context.Context, req platform.AccountRequest, mode platform.WriteMode) (platform.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("WriteAccount"); err != nil {
		return platform.Account{}, err
	}
	f.Writes = append(f.Writes, Write{Request: req.Clone(), Mode: mode})

	stored := platform.Account(req.Clone())
	if i := f.index(req.Email); i >= 0 {
		f.accounts[i] = stored
	} else {
		f.accounts = append(f.accounts, stored)
	}
	return stored, nil
}

func (f *FakePlatform) ListAccounts(context.Context) ([]platform.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListAccounts"); err != nil {
		return nil, err
	}
	return slices.Clone(f.accounts), nil
}

func (f *FakePlatform) ListProducts(context.Context) ([]platform.CatalogProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListProducts"); err != nil {
		return nil, err
	}
	return slices.Clone(f.Products), nil
}

func (f *FakePlatform) ListProductGroups(_ context.Context, productID string) (platform.GroupLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListProductGroups"); err != nil {
		return platform.GroupLookup{}, err
	}
	groups, ok := f.Groups[productID]
	if !ok {
		return platform.GroupLookup{}, nil
	}
	return platform.GroupLookup{Groups: slices.Clone(groups), Found: true}, nil
}

func (f *FakePlatform) TestConnection(context.Context) (platform.ConnectionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("TestConnection"); err != nil {
		return platform.ConnectionInfo{}, err
	}
	return f.Info, nil
}
