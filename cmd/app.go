package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Tiliavir/heatlog/internal/config"
	"github.com/Tiliavir/heatlog/internal/credential"
	"github.com/Tiliavir/heatlog/internal/logger"
	"github.com/Tiliavir/heatlog/internal/progress"
	"github.com/Tiliavir/heatlog/internal/records"
	"github.com/Tiliavir/heatlog/internal/remote"
	"github.com/Tiliavir/heatlog/internal/storage"
)

// app holds everything a command needs for one run.
type app struct {
	cfg   config.Config
	loc   *time.Location
	cache storage.Cache
	creds *credential.Resolver
	store *records.Store
}

// openApp wires cache, credential, backend and store from cfg.
func openApp(ctx context.Context, c config.Config) (*app, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	cache, err := storage.Open(c.Cache.Driver, c.Cache.Dir)
	if err != nil {
		return nil, err
	}

	creds := credential.NewResolver(c.Backend.Credential, cache)
	secret, src, err := creds.Resolve(ctx)
	switch {
	case err == nil:
		logger.Debug("credential resolved", "source", src)
	case errors.Is(err, credential.ErrNotFound):
	default:
		logger.Warn("resolving credential failed", "error", err)
	}

	backend := newBackend(ctx, c, secret, loc)

	opts := records.Options{
		Cache:         cache,
		Backend:       backend,
		HasCredential: secret != "",
	}
	if c.Bootstrap != "" {
		opts.Bootstrap = remote.NewStatic(c.Bootstrap).Fetch
	}

	return &app{
		cfg:   c,
		loc:   loc,
		cache: cache,
		creds: creds,
		store: records.New(opts),
	}, nil
}

// newBackend returns nil when no remote backend is configured.
func newBackend(ctx context.Context, c config.Config, secret string, loc *time.Location) records.Backend {
	switch c.Backend.Kind {
	case config.BackendSpreadsheet:
		return records.NewSpreadsheetBackend(remote.NewSpreadsheet(ctx, c.Backend.Endpoint, secret, loc))
	case config.BackendDocStore:
		return records.NewDocStoreBackend(remote.NewDocStore(ctx, c.Backend.Endpoint, c.Backend.Path, c.Backend.Branch, secret))
	default:
		return nil
	}
}

// exitError carries the process exit status for an error returned by a
// command: 1 for user errors, 2 for storage and backend errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: 1, err: err} }

func storageError(err error) error { return &exitError{code: 2, err: err} }

// exitCode maps an error returned from Execute to a process exit status.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// withApp opens the app, optionally loads the records, runs fn and closes
// the app before returning fn's error.
func withApp(ctx context.Context, load bool, fn func(a *app) error) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return storageError(err)
	}
	defer a.Close()

	if load {
		if report := a.store.Load(ctx); report.Source == "" {
			fmt.Fprintln(os.Stderr, "warning: no record source was usable, starting empty")
		}
	}
	return fn(a)
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		logger.Warn("closing cache failed", "error", err)
	}
}

func (a *app) now() time.Time {
	return nowIn(a.loc)
}

func (a *app) goal() (progress.Goal, error) {
	return progress.ParseGoal(a.cfg.Goal.Start, a.cfg.Goal.End, a.loc)
}
