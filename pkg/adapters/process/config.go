package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Command is one executable invocation.
type Command struct {
	Command string   `yaml:"command" json:"command" mapstructure:"command"`
	Args    []string `yaml:"args" json:"args" mapstructure:"args"`
}

// Empty reports whether no command is configured.
func (c Command) Empty() bool {
	return c.Command == ""
}

// Config describes the commands run by a process-backed Doer.
// Any of Enter, Recur or Exit may be empty, which makes that hook a no-op.
type Config struct {
	Name        string            `yaml:"name" json:"name" mapstructure:"name"`
	Enter       Command           `yaml:"enter" json:"enter" mapstructure:"enter"`
	Recur       Command           `yaml:"recur" json:"recur" mapstructure:"recur"`
	Exit        Command           `yaml:"exit" json:"exit" mapstructure:"exit"`
	Environment map[string]string `yaml:"env" json:"env" mapstructure:"env"`
	Dir         string            `yaml:"dir" json:"dir" mapstructure:"dir"`
}

// ConfigFile represents the structure of processes.yaml.
type ConfigFile struct {
	Processes []Config `yaml:"processes" json:"processes"`
}

// LoadConfigs reads a configuration file (YAML or JSON) and returns the configs keyed by name.
// A missing file yields an empty map.
func LoadConfigs(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Config{}, nil
		}
		return nil, fmt.Errorf("failed to read process config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	configs := make(map[string]Config)
	for _, c := range cfg.Processes {
		if c.Name == "" {
			continue
		}
		configs[c.Name] = c
	}
	return configs, nil
}
