package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
)

// Hooks runs local processes as the enter, recur and exit work of a Doer.
//
// Each process receives DOING_NAME, DOING_HOOK and DOING_FORCED in its
// environment. A non-zero exit status fails the hook, which aborts the Doer.
// When the last non-empty line a process prints names a control (enter,
// recur, exit or abort), it becomes the Doer's desire.
type Hooks struct {
	cfg Config
}

var _ ports.Hooks = (*Hooks)(nil)

// NewHooks creates process-backed hooks from cfg.
func NewHooks(cfg Config) *Hooks {
	return &Hooks{cfg: cfg}
}

func (h *Hooks) Enter(ctx context.Context, u ports.Unit) error {
	return h.run(ctx, u, domain.HookEnter, h.cfg.Enter, false)
}

func (h *Hooks) Recur(ctx context.Context, u ports.Unit) error {
	return h.run(ctx, u, domain.HookRecur, h.cfg.Recur, false)
}

func (h *Hooks) Exit(ctx context.Context, u ports.Unit, forced bool) error {
	return h.run(ctx, u, domain.HookExit, h.cfg.Exit, forced)
}

func (h *Hooks) run(ctx context.Context, u ports.Unit, hook domain.Hook, c Command, forced bool) error {
	if c.Empty() {
		return nil
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = h.cfg.Dir

	env := []string{
		"DOING_NAME=" + h.cfg.Name,
		"DOING_HOOK=" + string(hook),
		fmt.Sprintf("DOING_FORCED=%t", forced),
	}
	for k, v := range h.cfg.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	if desire, ok := lastControl(stdout.String()); ok {
		u.SetDesire(desire)
	}
	return nil
}

// lastControl parses the last non-empty output line as a control name.
func lastControl(output string) (domain.Control, bool) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return 0, false
	}
	c, err := domain.ParseControl(last)
	if err != nil {
		return 0, false
	}
	return c, true
}
