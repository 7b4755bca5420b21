package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/doing"
	"github.com/aretw0/doing/internal/plan"
	httpAdapter "github.com/aretw0/doing/pkg/adapters/http"
	"github.com/aretw0/doing/pkg/adapters/memory"
	"github.com/aretw0/doing/pkg/adapters/redis"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/observability"
	"github.com/aretw0/doing/pkg/ports"
	"github.com/aretw0/doing/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
)

// lockWait bounds how long a run waits for another driver of the same plan.
const lockWait = 5 * time.Second

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	PlanPath  string
	JSON      bool
	Graph     bool
	Limit     time.Duration
	Tock      time.Duration
	Serve     string
	RedisAddr string
	RedisTTL  time.Duration
	Log       LogOptions

	Out    io.Writer
	ErrOut io.Writer

	// Ready, when set, receives the status server address once it listens.
	Ready func(addr string)
}

// Run loads a plan, drives its doers to completion and prints the trace.
// Hook failures are reported in the trace and returned joined.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	logger, err := createLogger(opts.ErrOut, opts.Log)
	if err != nil {
		return err
	}

	p, err := plan.Load(opts.PlanPath)
	if err != nil {
		return err
	}
	if opts.Limit > 0 {
		p.Limit = opts.Limit
	}
	if opts.Tock > 0 {
		p.Tock = opts.Tock
	}

	store, cleanup, err := openStore(ctx, opts, p, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	trace := NewTrace()
	streams := httpAdapter.NewStreamManager(logger)

	doers, err := p.Build(
		doing.WithLogger(logger),
		doing.WithLifecycleHooks(observability.Chain(
			metrics.Hooks(),
			trace.Hooks(),
			streams.Hooks(),
			observability.LogHooks(logger),
		)),
	)
	if err != nil {
		return err
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithStore(store),
		runner.WithMetrics(metrics),
		runner.WithLimit(p.Limit),
	}
	if p.Tock > 0 {
		runnerOpts = append(runnerOpts, runner.WithTock(p.Tock))
	}
	r := runner.New(runnerOpts...)
	for _, d := range doers {
		if err := r.Add(d); err != nil {
			return err
		}
	}

	if opts.Serve != "" {
		handler := httpAdapter.NewHandler(store,
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
		)
		stop, err := serve(opts.Serve, handler, logger, opts.Ready)
		if err != nil {
			return err
		}
		defer stop()
		if !opts.JSON {
			printSystemMessage(opts.ErrOut, "Status API listening on %s", opts.Serve)
		}
	}

	runErr := r.Run(ctx)

	if opts.JSON {
		if err := trace.WriteJSON(opts.Out); err != nil {
			return err
		}
		return runErr
	}

	var report strings.Builder
	fmt.Fprintf(&report, "# %s\n\n## Trace\n\n%s\n", filepath.Base(opts.PlanPath), trace.Markdown())
	snaps, err := loadSnapshots(context.WithoutCancel(ctx), store)
	if err != nil {
		logger.Warn("failed to load final snapshots", "error", err)
	}
	fmt.Fprintf(&report, "\n## Doers\n\n%s", snapshotTable(snaps))
	if opts.Graph {
		fmt.Fprintf(&report, "\n## Graph\n\n%s", traceGraph(trace.Entries(), snaps))
	}
	if err := writeReport(opts.Out, report.String()); err != nil {
		return err
	}
	return runErr
}

// openStore returns the status store for a run. With a Redis address the run
// also takes a lock on the plan so two processes never drive it at once.
func openStore(ctx context.Context, opts RunOptions, p *plan.Plan, logger *slog.Logger) (ports.StatusStore, func(), error) {
	if opts.RedisAddr == "" {
		return memory.NewStore(), func() {}, nil
	}

	var storeOpts []redis.Option
	if opts.RedisTTL > 0 {
		storeOpts = append(storeOpts, redis.WithTTL(opts.RedisTTL))
	}
	store := redis.New(opts.RedisAddr, "", 0, storeOpts...)

	lockTTL := p.Limit + lockWait
	if p.Limit == 0 {
		lockTTL = time.Hour
	}
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := redis.NewLocker(store.Client(), "doing:").Lock(lockCtx, filepath.Base(opts.PlanPath), lockTTL)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("plan %s is being run elsewhere: %w", opts.PlanPath, err)
	}

	return store, func() {
		if err := unlock(context.Background()); err != nil {
			logger.Warn("failed to release plan lock", "error", err)
		}
		store.Close()
	}, nil
}

func loadSnapshots(ctx context.Context, store ports.StatusStore) ([]domain.Snapshot, error) {
	names, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	snaps := make([]domain.Snapshot, 0, len(names))
	for _, name := range names {
		snap, err := store.Load(ctx, name)
		if errors.Is(err, domain.ErrDoerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// serve starts an HTTP server in the background. The returned func shuts it down.
func serve(addr string, handler http.Handler, logger *slog.Logger, ready func(string)) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", "error", err)
		}
	}()
	if ready != nil {
		ready(ln.Addr().String())
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "error", err)
			srv.Close()
		}
	}, nil
}
