package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	httpAdapter "github.com/aretw0/doing/pkg/adapters/http"
	"github.com/aretw0/doing/pkg/adapters/redis"
	"github.com/prometheus/client_golang/prometheus"
)

// ServeOptions configures the standalone status server.
type ServeOptions struct {
	Addr      string
	RedisAddr string
	Log       LogOptions
	ErrOut    io.Writer
}

// Serve exposes the snapshots another process records in Redis until ctx is done.
func Serve(ctx context.Context, opts ServeOptions) error {
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.RedisAddr == "" {
		return fmt.Errorf("serve needs --redis: snapshots live in the process that runs the plan otherwise")
	}
	logger, err := createLogger(opts.ErrOut, opts.Log)
	if err != nil {
		return err
	}

	store := redis.New(opts.RedisAddr, "", 0)
	defer store.Close()
	if err := store.Client().Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", opts.RedisAddr, err)
	}

	handler := httpAdapter.NewHandler(store,
		httpAdapter.WithGatherer(prometheus.DefaultGatherer),
		httpAdapter.WithLogger(logger),
	)
	stop, err := serve(opts.Addr, handler, logger, nil)
	if err != nil {
		return err
	}
	defer stop()

	printSystemMessage(opts.ErrOut, "Serving doer status from %s on %s", opts.RedisAddr, opts.Addr)
	<-ctx.Done()
	printSystemMessage(opts.ErrOut, "Status server stopped")
	return nil
}
