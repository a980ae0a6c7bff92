package usecase

import (
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
)

type UseCases struct {
	repo    interfaces.Repository
	tenants *TenantRegistry
	Relay   *RelayUseCase
}

type Option func(*UseCases)

func WithTenants(tenants *TenantRegistry) Option {
	return func(uc *UseCases) {
		uc.tenants = tenants
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.tenants == nil {
		uc.tenants = NewTenantRegistry()
	}
	uc.Relay = NewRelayUseCase(repo)

	return uc
}

// Tenants returns the registry of configured accounts
func (uc *UseCases) Tenants() *TenantRegistry {
	return uc.tenants
}

// Repository returns the backing repository
func (uc *UseCases) Repository() interfaces.Repository {
	return uc.repo
}
