package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/relayboard/pkg/domain/model/chat"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/secmon-lab/relayboard/pkg/usecase"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
	"github.com/secmon-lab/relayboard/pkg/utils/safe"
)

// maxBodySize bounds webhook payloads
const maxBodySize = 1 << 20

// RelayUseCase is the part of the use case layer the webhooks drive
type RelayUseCase interface {
	HandleChatEvent(ctx context.Context, tenant *usecase.Tenant, ev *chat.Event) error
	HandleTrackerEvent(ctx context.Context, tenant *usecase.Tenant, ev *tracker.Event) error
}

// TenantResolver maps the account ID of a webhook path to a tenant
type TenantResolver interface {
	Resolve(accountID string) (*usecase.Tenant, error)
}

type Server struct {
	router     *chi.Mux
	relay      RelayUseCase
	tenants    TenantResolver
	slackAsync bool
}

type Options func(*Server)

// WithSlackAsync acknowledges Slack callbacks before relaying them
func WithSlackAsync(enabled bool) Options {
	return func(s *Server) {
		s.slackAsync = enabled
	}
}

func New(relay RelayUseCase, tenants TenantResolver, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		relay:   relay,
		tenants: tenants,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	// Webhook endpoints are addressed per account; no session auth, deliveries are signed
	resolve := tenantMiddleware(s.tenants)
	r.Route("/hooks", func(r chi.Router) {
		r.With(resolve, slackSignatureMiddleware).Post("/slack/{accountID}", s.slackWebhookHandler)

		r.With(resolve).Head("/trello/{accountID}", trelloProbeHandler)
		r.With(resolve, trelloSignatureMiddleware).Post("/trello/{accountID}", s.trelloWebhookHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, []byte("ok"))
}
