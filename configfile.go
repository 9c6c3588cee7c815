package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional YAML overlay of engine tuning knobs,
// loaded via --config PATH. It supplies defaults that an explicit CLI
// flag always overrides.
type ConfigFile struct {
	Workers         int    `yaml:"workers"`
	Strategy        string `yaml:"test_manager"`
	GiveUpThreshold int    `yaml:"give_up_threshold"`
	MaxImprovement  int64  `yaml:"max_improvement"`
	AlsoInteresting int    `yaml:"also_interesting"`
	Sanitize        bool   `yaml:"sanitize"`
	Slow            bool   `yaml:"slow"`
	SaveDir         string `yaml:"save_dir"`
}

// LoadConfigFile reads and parses a YAML config file. A file that
// cannot be read is an error; callers only invoke this when --config
// was given.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cf, nil
}

// String returns a human-readable summary for --verbose logging; there
// are no secrets here, only tuning knobs.
func (cf *ConfigFile) String() string {
	return fmt.Sprintf(
		"workers=%d test_manager=%q give_up_threshold=%d max_improvement=%d also_interesting=%d sanitize=%v slow=%v save_dir=%q",
		cf.Workers, cf.Strategy, cf.GiveUpThreshold, cf.MaxImprovement, cf.AlsoInteresting, cf.Sanitize, cf.Slow, cf.SaveDir,
	)
}
