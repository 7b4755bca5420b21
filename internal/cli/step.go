package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/doing"
	"github.com/aretw0/doing/internal/plan"
	"github.com/aretw0/doing/pkg/domain"
)

// StepOptions configures the step command.
type StepOptions struct {
	Controls []string
	Tock     float64
	FailOn   string
	JSON     bool
	Log      LogOptions

	Out    io.Writer
	ErrOut io.Writer
}

// Step drives a single Doer by hand, sending each control in order.
// Names that are not controls are sent as-is and abort the Doer.
func Step(ctx context.Context, opts StepOptions) error {
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

	hooks, err := plan.NewScript(plan.DoerSpec{Name: "manual", FailOn: opts.FailOn})
	if err != nil {
		return err
	}
	trace := NewTrace()
	d := doing.New(
		doing.WithName("manual"),
		doing.WithTock(opts.Tock),
		doing.WithHooks(hooks),
		doing.WithLogger(logger),
		doing.WithLifecycleHooks(trace.Hooks()),
	)

	var errs []error
	for _, name := range opts.Controls {
		_, err := d.Step(ctx, parseControlArg(name))
		if errors.Is(err, domain.ErrExhausted) {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			break
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if opts.JSON {
		if err := trace.WriteJSON(opts.Out); err != nil {
			return err
		}
	} else {
		report := fmt.Sprintf("## Steps\n\n%s\n## Doer\n\n%s", trace.Markdown(), snapshotTable([]domain.Snapshot{d.Snapshot(time.Now())}))
		if err := writeReport(opts.Out, report); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// parseControlArg maps unrecognized names to an out-of-range control,
// which the Doer treats as an abort.
func parseControlArg(name string) domain.Control {
	c, err := domain.ParseControl(name)
	if err != nil {
		return domain.Control(-1)
	}
	return c
}
