package plan

import (
	"context"
	"fmt"

	"github.com/aretw0/doing"
	"github.com/aretw0/doing/pkg/adapters/process"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
)

// Build creates one Doer per spec. opts are applied to every Doer before
// the per-spec name, tock and hooks.
func (p *Plan) Build(opts ...doing.Option) ([]*doing.Doer, error) {
	doers := make([]*doing.Doer, 0, len(p.Doers))
	for _, spec := range p.Doers {
		hooks, err := p.hooksFor(spec)
		if err != nil {
			return nil, err
		}
		all := append(append([]doing.Option{}, opts...),
			doing.WithName(spec.Name),
			doing.WithTock(spec.Tock),
			doing.WithHooks(hooks),
		)
		doers = append(doers, doing.New(all...))
	}
	return doers, nil
}

func (p *Plan) hooksFor(spec DoerSpec) (ports.Hooks, error) {
	switch spec.Kind {
	case KindProcess:
		cfg := spec.Process
		if cfg == nil {
			ref, ok := p.Processes[spec.Ref]
			if !ok {
				return nil, fmt.Errorf("%s: process %q not found", spec.Name, spec.Ref)
			}
			cfg = &ref
		}
		return process.NewHooks(*cfg), nil
	case KindScript, "":
		return NewScript(spec)
	default:
		return nil, fmt.Errorf("%s: unknown kind %q", spec.Name, spec.Kind)
	}
}

// Script is an in-process hook set driven by a DoerSpec.
type Script struct {
	spec  DoerSpec
	then  domain.Control
	calls map[domain.Hook]int
}

// NewScript validates spec and returns its hooks.
func NewScript(spec DoerSpec) (*Script, error) {
	then := domain.ControlExit
	if spec.Then != "" {
		c, err := domain.ParseControl(spec.Then)
		if err != nil {
			return nil, fmt.Errorf("%s: then: %w", spec.Name, err)
		}
		then = c
	}
	if spec.FailAt == 0 {
		spec.FailAt = 1
	}
	return &Script{spec: spec, then: then, calls: make(map[domain.Hook]int)}, nil
}

// Calls reports how many times hook ran.
func (s *Script) Calls(hook domain.Hook) int {
	return s.calls[hook]
}

func (s *Script) Enter(ctx context.Context, u ports.Unit) error {
	if err := s.hit(domain.HookEnter); err != nil {
		return err
	}
	// A re-entered script counts its recurs from zero.
	s.calls[domain.HookRecur] = 0
	return nil
}

func (s *Script) Recur(ctx context.Context, u ports.Unit) error {
	if err := s.hit(domain.HookRecur); err != nil {
		return err
	}
	if s.spec.Recurs > 0 && s.calls[domain.HookRecur] >= s.spec.Recurs {
		u.SetDesire(s.then)
	}
	return nil
}

func (s *Script) Exit(ctx context.Context, u ports.Unit, forced bool) error {
	return s.hit(domain.HookExit)
}

func (s *Script) hit(hook domain.Hook) error {
	s.calls[hook]++
	if s.calls[hook] != s.spec.FailAt {
		return nil
	}
	if domain.Hook(s.spec.PanicOn) == hook {
		panic(fmt.Sprintf("%s: scripted panic in %s", s.spec.Name, hook))
	}
	if domain.Hook(s.spec.FailOn) == hook {
		return fmt.Errorf("%s: scripted failure in %s", s.spec.Name, hook)
	}
	return nil
}
