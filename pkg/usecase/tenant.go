package usecase

import (
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
)

// Tenant is one configured account together with its outbound clients
type Tenant struct {
	Account *model.Account
	Chat    interfaces.ChatService
	Tracker interfaces.TrackerService
}

// ID returns the account ID of the tenant
func (t *Tenant) ID() string {
	return t.Account.ID
}

// TenantFactory builds the outbound clients of an account
type TenantFactory func(account *model.Account) (*Tenant, error)

type tenantSet struct {
	byID  map[string]*Tenant
	order []string
}

// TenantRegistry resolves account IDs to tenants. The whole set is swapped
// atomically by Replace, so a request sees either the old or the new accounts.
type TenantRegistry struct {
	set atomic.Pointer[tenantSet]
}

// NewTenantRegistry creates a registry holding tenants
func NewTenantRegistry(tenants ...*Tenant) *TenantRegistry {
	r := &TenantRegistry{}
	r.Replace(tenants)
	return r
}

// BuildTenantRegistry creates tenants for every account of accounts using factory
func BuildTenantRegistry(accounts *model.AccountRegistry, factory TenantFactory) (*TenantRegistry, error) {
	tenants, err := BuildTenants(accounts, factory)
	if err != nil {
		return nil, err
	}
	return NewTenantRegistry(tenants...), nil
}

// BuildTenants creates tenants for every account of accounts using factory
func BuildTenants(accounts *model.AccountRegistry, factory TenantFactory) ([]*Tenant, error) {
	var tenants []*Tenant
	for _, account := range accounts.List() {
		tenant, err := factory(account)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build tenant", goerr.V(AccountIDKey, account.ID))
		}
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

// Replace swaps the registered tenants for tenants. A later entry with the same ID wins.
func (r *TenantRegistry) Replace(tenants []*Tenant) {
	set := &tenantSet{
		byID: make(map[string]*Tenant, len(tenants)),
	}
	for _, t := range tenants {
		if _, exists := set.byID[t.ID()]; !exists {
			set.order = append(set.order, t.ID())
		}
		set.byID[t.ID()] = t
	}
	r.set.Store(set)
}

// Resolve returns the tenant of accountID or an error wrapping ErrTenantNotFound
func (r *TenantRegistry) Resolve(accountID string) (*Tenant, error) {
	t, ok := r.set.Load().byID[accountID]
	if !ok {
		return nil, goerr.Wrap(ErrTenantNotFound, "unknown account", goerr.V(AccountIDKey, accountID))
	}
	return t, nil
}

// List returns tenants in registration order
func (r *TenantRegistry) List() []*Tenant {
	set := r.set.Load()
	tenants := make([]*Tenant, 0, len(set.order))
	for _, id := range set.order {
		tenants = append(tenants, set.byID[id])
	}
	return tenants
}

// Len returns the number of tenants
func (r *TenantRegistry) Len() int {
	return len(r.set.Load().order)
}
