package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/cli/config"
	httpctrl "github.com/secmon-lab/relayboard/pkg/controller/http"
	"github.com/secmon-lab/relayboard/pkg/service/worker"
	"github.com/secmon-lab/relayboard/pkg/usecase"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var (
		addr       string
		slackAsync bool

		accountsCfg config.Accounts
		repoCfg     config.Repository
		sentryCfg   config.Sentry
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("RELAYBOARD_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "slack-async",
			Usage:       "Acknowledge Slack events before relaying them",
			Sources:     cli.EnvVars("RELAYBOARD_SLACK_ASYNC"),
			Destination: &slackAsync,
		},
	}
	flags = append(flags, accountsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the relay HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"addr", addr,
				"slack_async", slackAsync,
				"accounts", accountsCfg,
				"repository", repoCfg,
				"sentry", sentryCfg,
			)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			accounts, err := accountsCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load accounts")
			}
			tenants, err := usecase.BuildTenantRegistry(accounts, newTenant)
			if err != nil {
				return goerr.Wrap(err, "failed to build tenants")
			}
			for _, t := range tenants.List() {
				logger.Info("Account loaded", "account", *t.Account)
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err)
				}
			}()

			uc := usecase.New(repo, usecase.WithTenants(tenants))

			var reloader *worker.AccountReloadWorker
			if accountsCfg.Watch() {
				reloader = worker.NewAccountReloadWorker(accountsCfg.Path(), reloadTenants(&accountsCfg, uc.Tenants()))
				if err := reloader.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start account reload worker")
				}
				defer reloader.Stop()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.Relay, uc.Tenants(), httpctrl.WithSlackAsync(slackAsync)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr, "accounts", uc.Tenants().Len())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("Context canceled, shutting down")
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown completed")
			return nil
		},
	}
}

// reloadTenants rebuilds every tenant from the accounts file and swaps them in.
// A broken file keeps the current tenants.
func reloadTenants(accountsCfg *config.Accounts, tenants *usecase.TenantRegistry) worker.ReloadFunc {
	return func(ctx context.Context) error {
		accounts, err := accountsCfg.Load()
		if err != nil {
			return goerr.Wrap(err, "failed to reload accounts")
		}
		next, err := usecase.BuildTenants(accounts, newTenant)
		if err != nil {
			return goerr.Wrap(err, "failed to rebuild tenants")
		}
		tenants.Replace(next)
		logging.From(ctx).Debug("Tenants rebuilt", "count", len(next))
		return nil
	}
}
