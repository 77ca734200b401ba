// Package config loads the scheduler's tunable parameters (spec §6.1) from
// an optional YAML defaults file, layered over the built-in factory
// defaults — mirroring the teacher's opts-struct-plus-flags style
// (cmd/consumption/main.go) but sourced from a file instead of flags, since
// a simulation run's parameter set is naturally data rather than a CLI
// one-liner.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors spec §6.1's parameter table. Every field has the same
// factory default as state.DefaultParams(); a YAML file only needs to name
// the keys it wants to override.
type Config struct {
	TaskGran      int64  `yaml:"taskgran"`
	SMMPerSecond  int64  `yaml:"smmpersecond"`
	SMMOverhead   int64  `yaml:"smmoverhead"`
	BinSize       int64  `yaml:"binsize"`
	CPUs          int    `yaml:"cpus"`
	BinPacker     string `yaml:"binpacker"`
	CheckSplitter string `yaml:"checksplitter"`
	RanTask       string `yaml:"rantask"`
	RandSeed      int64  `yaml:"randseed"`
}

// Defaults returns the factory parameter set (spec §6.1), kept in lockstep
// with state.DefaultParams.
func Defaults() Config {
	return Config{
		TaskGran:      50,
		SMMPerSecond:  10,
		SMMOverhead:   70,
		BinSize:       100,
		CPUs:          1,
		BinPacker:     "DefaultBin",
		CheckSplitter: "DefaultTasks",
		RanTask:       "reschedule",
		RandSeed:      1,
	}
}

// Load returns Defaults() unmodified when path is empty, otherwise parses
// the YAML file at path over top of the defaults (unset keys keep their
// default value).
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
