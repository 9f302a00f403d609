// Package server runs the background poller and the HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/grabarr/internal/download"
)

// Poller periodically fetches each client's live queue and drives the
// reconciler. One poller runs per process.
type Poller struct {
	manager    *download.Manager
	reconciler *download.Reconciler
	interval   time.Duration
	timeout    time.Duration
	log        *slog.Logger

	refresh chan struct{}
}

// NewPoller creates a poller. timeout bounds each client's queue fetch.
func NewPoller(manager *download.Manager, reconciler *download.Reconciler, interval, timeout time.Duration, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Poller{
		manager:    manager,
		reconciler: reconciler,
		interval:   interval,
		timeout:    timeout,
		log:        log.With("component", "poller"),
		refresh:    make(chan struct{}, 1),
	}
}

// RefreshNow requests an immediate poll. Coalesces with an already
// pending request.
func (p *Poller) RefreshNow() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run polls on the configured interval until the context is canceled.
// In-flight imports are allowed to finish before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopping, waiting for in-flight imports")
			p.reconciler.Wait()
			return nil
		case <-ticker.C:
			p.poll(ctx)
		case <-p.refresh:
			p.poll(ctx)
		}
	}
}

// poll visits every configured client sequentially. A single client's
// failure never aborts the cycle.
func (p *Poller) poll(ctx context.Context) {
	start := time.Now()

	for _, client := range p.manager.Clients() {
		if ctx.Err() != nil {
			return
		}
		p.pollClient(ctx, client)
	}

	p.log.Debug("poll complete", "duration_ms", time.Since(start).Milliseconds())
}

func (p *Poller) pollClient(ctx context.Context, client download.Client) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	queue, err := client.Queue(fetchCtx)
	cancel()
	if err != nil {
		// Transient failure; the next tick retries.
		p.log.Warn("queue fetch failed", "client", client.Name(), "error", err)
		return
	}

	liveIDs := make(map[string]bool, len(queue))
	for _, item := range queue {
		liveIDs[item.ID] = true
	}

	if err := p.reconciler.Reconcile(ctx, client, liveIDs); err != nil {
		p.log.Error("reconcile failed", "client", client.Name(), "error", err)
	}
}

// Runner ties the poller and the HTTP API into one lifecycle.
type Runner struct {
	poller *Poller
	server *http.Server
	log    *slog.Logger
}

// NewRunner creates a runner. server may be nil to run the poller alone.
func NewRunner(poller *Poller, server *http.Server, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		poller: poller,
		server: server,
		log:    log.With("component", "runner"),
	}
}

// Run blocks until the context is canceled or a component fails. On
// cancellation the HTTP server drains and the poller finishes its
// in-flight imports before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.poller.Run(ctx)
	})

	if r.server != nil {
		g.Go(func() error {
			r.log.Info("http server listening", "addr", r.server.Addr)
			if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return r.server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
