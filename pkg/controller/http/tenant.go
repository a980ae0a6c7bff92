package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/relayboard/pkg/usecase"
	"github.com/secmon-lab/relayboard/pkg/utils/errutil"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const tenantKey contextKey = "tenant"

func contextWithTenant(ctx context.Context, tenant *usecase.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

func tenantFromContext(ctx context.Context) *usecase.Tenant {
	tenant, _ := ctx.Value(tenantKey).(*usecase.Tenant)
	return tenant
}

// tenantMiddleware resolves the {accountID} path segment. Unknown accounts get 404,
// which is also how Trello learns a callback URL is not accepted.
func tenantMiddleware(tenants TenantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			accountID := chi.URLParam(r, "accountID")

			tenant, err := tenants.Resolve(accountID)
			if err != nil {
				errutil.HandleHTTP(ctx, w, err, statusFor(err))
				return
			}

			logger := logging.From(ctx).With(usecase.AccountIDKey, tenant.ID())
			ctx = logging.With(contextWithTenant(ctx, tenant), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
