package worker

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
)

// DefaultReloadDebounce collapses the burst of events an editor save produces
const DefaultReloadDebounce = 500 * time.Millisecond

// ReloadFunc re-reads the accounts file and swaps the running configuration
type ReloadFunc func(ctx context.Context) error

// AccountReloadWorker watches the accounts file and calls a ReloadFunc when it changes.
//
// The parent directory is watched rather than the file, since editors and
// config management tools usually replace the file by rename.
type AccountReloadWorker struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type ReloadOption func(*AccountReloadWorker)

// WithDebounce sets how long the worker waits for further changes before reloading
func WithDebounce(d time.Duration) ReloadOption {
	return func(w *AccountReloadWorker) {
		w.debounce = d
	}
}

// NewAccountReloadWorker creates a new worker for reloading accounts from path
func NewAccountReloadWorker(path string, reload ReloadFunc, opts ...ReloadOption) *AccountReloadWorker {
	w := &AccountReloadWorker{
		path:     filepath.Clean(path),
		reload:   reload,
		debounce: DefaultReloadDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching in a background goroutine
func (w *AccountReloadWorker) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create file watcher")
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return goerr.Wrap(err, "failed to watch accounts directory", goerr.V("path", w.path))
	}
	w.watcher = watcher

	logging.Default().Info("Account reload worker starting",
		"path", w.path,
		"debounce", w.debounce.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *AccountReloadWorker) Stop() {
	logging.Default().Info("Account reload worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Account reload worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *AccountReloadWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		if err := w.watcher.Close(); err != nil {
			logging.Default().Error("failed to close file watcher", "error", err.Error())
		}
	}()

	// the timer only runs while a reload is pending
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logging.Default().Debug("accounts file changed", "op", ev.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				// keep serving the previous accounts
				logging.Default().Error("Account reload failed (keeping current accounts)",
					"path", w.path,
					"error", err.Error())
				continue
			}
			logging.Default().Info("Accounts reloaded", "path", w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Default().Error("file watcher error", "error", err.Error())

		case <-w.stopCh:
			logging.Default().Info("Account reload worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Account reload worker context cancelled")
			return
		}
	}
}
