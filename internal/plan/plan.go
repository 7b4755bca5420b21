// Package plan loads YAML run plans describing a set of doers for the runner.
package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/doing/pkg/adapters/process"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	KindScript  = "script"
	KindProcess = "process"
)

// Plan is a decoded run plan.
type Plan struct {
	Tock        time.Duration `mapstructure:"tock"`
	Limit       time.Duration `mapstructure:"limit"`
	ProcessFile string        `mapstructure:"process_file"`
	Doers       []DoerSpec    `mapstructure:"doers"`

	// Processes holds the entries of ProcessFile, keyed by name.
	Processes map[string]process.Config `mapstructure:"-"`
}

// DoerSpec describes one doer of the plan.
//
// Script doers recur Recurs times (0 means until stopped) and then set
// their desire to Then. FailOn and PanicOn make the named hook fail on
// its FailAt-th call, which exercises the abort path.
type DoerSpec struct {
	Name    string  `mapstructure:"name"`
	Kind    string  `mapstructure:"kind"`
	Tock    float64 `mapstructure:"tock"`
	Recurs  int     `mapstructure:"recurs"`
	Then    string  `mapstructure:"then"`
	FailOn  string  `mapstructure:"fail_on"`
	PanicOn string  `mapstructure:"panic_on"`
	FailAt  int     `mapstructure:"fail_at"`

	// Process is an inline command set; Ref names an entry of the plan's process file.
	Process *process.Config `mapstructure:"process"`
	Ref     string          `mapstructure:"ref"`
}

// Load reads and validates a plan file. A relative process_file is
// resolved against the plan's directory.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if p.ProcessFile != "" {
		file := p.ProcessFile
		if !filepath.IsAbs(file) {
			file = filepath.Join(filepath.Dir(path), file)
		}
		p.Processes, err = process.LoadConfigs(file)
		if err != nil {
			return nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// Parse decodes plan YAML without validating references.
func Parse(data []byte) (*Plan, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	var p Plan
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &p,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	for i := range p.Doers {
		if p.Doers[i].Kind == "" {
			p.Doers[i].Kind = KindScript
			if p.Doers[i].Process != nil || p.Doers[i].Ref != "" {
				p.Doers[i].Kind = KindProcess
			}
		}
		if p.Doers[i].FailAt == 0 {
			p.Doers[i].FailAt = 1
		}
	}
	return &p, nil
}

// Validate checks names, kinds and hook references.
func (p *Plan) Validate() error {
	if p.Tock < 0 {
		return fmt.Errorf("tock must not be negative")
	}
	if p.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	var errs []error
	seen := make(map[string]bool)
	for i, d := range p.Doers {
		label := d.Name
		if label == "" {
			label = fmt.Sprintf("doers[%d]", i)
		} else if seen[d.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate name", label))
		}
		seen[d.Name] = true

		switch d.Kind {
		case KindScript:
			if d.Recurs < 0 {
				errs = append(errs, fmt.Errorf("%s: recurs must not be negative", label))
			}
			if d.Then != "" {
				if _, err := domain.ParseControl(d.Then); err != nil {
					errs = append(errs, fmt.Errorf("%s: then: %w", label, err))
				}
			}
			for _, h := range []string{d.FailOn, d.PanicOn} {
				if h != "" && !validHook(h) {
					errs = append(errs, fmt.Errorf("%s: unknown hook %q", label, h))
				}
			}
		case KindProcess:
			if d.Process == nil && d.Ref == "" {
				errs = append(errs, fmt.Errorf("%s: process doer needs process or ref", label))
			}
			if d.Ref != "" {
				if _, ok := p.Processes[d.Ref]; !ok {
					errs = append(errs, fmt.Errorf("%s: process %q not found", label, d.Ref))
				}
			}
		default:
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", label, d.Kind))
		}
	}
	return errors.Join(errs...)
}

func validHook(name string) bool {
	switch domain.Hook(name) {
	case domain.HookEnter, domain.HookRecur, domain.HookExit:
		return true
	}
	return false
}
