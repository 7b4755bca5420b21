package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/aretw0/doing/internal/logging"
	"github.com/aretw0/doing/internal/presentation/tui"
	"github.com/aretw0/doing/pkg/domain"
)

// LogOptions configures the CLI logger.
type LogOptions struct {
	Level  string
	Format string
}

// createLogger builds the application logger on w.
// Logs go to stderr so stdout stays clean for the trace.
func createLogger(w io.Writer, opts LogOptions) (*slog.Logger, error) {
	if opts.Level == "" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	format := logging.FormatText
	if opts.Format == string(logging.FormatJSON) {
		format = logging.FormatJSON
	}
	return logging.NewWithWriter(w, level, format), nil
}

// writeReport prints markdown to out, styled through glamour when out is a terminal.
func writeReport(out io.Writer, markdown string) error {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = tui.IsTerminal(f)
	}
	rendered, err := tui.NewRenderer(styled)(markdown)
	if err != nil {
		rendered = markdown
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// snapshotTable renders final doer snapshots as markdown.
func snapshotTable(snaps []domain.Snapshot) string {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			s.Name,
			s.State.String(),
			s.Desire.String(),
			strconv.FormatBool(s.Done),
			strconv.Itoa(s.Steps),
		})
	}
	return tui.Table([]string{"doer", "state", "desire", "done", "steps"}, rows)
}

func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
