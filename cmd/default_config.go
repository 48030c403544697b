package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bulletproofpenguin/predictive-cache/internal/cachemgr"
)

// tunablesFile is the top-level shape of config/defaults.yaml. All
// sections must be listed to satisfy KnownFields(true) strict parsing —
// an unrecognized key is a typo, not a silently ignored extension.
type tunablesFile struct {
	Version  string          `yaml:"version"`
	Tunables tunablesSection `yaml:"tunables"`
}

type tunablesSection struct {
	BlockSize int64 `yaml:"block_size"`

	TDiskUS   float64 `yaml:"t_disk_us"`
	TCpuUS    float64 `yaml:"t_cpu_us"`
	THitUS    float64 `yaml:"t_hit_us"`
	TDriverUS float64 `yaml:"t_driver_us"`

	Gamma   float64 `yaml:"gamma"`
	Epsilon float64 `yaml:"epsilon"`

	HitRatioRefreshIntervalUS float64 `yaml:"hit_ratio_refresh_interval_us"`

	PipelineStrengthThreshold uint32  `yaml:"pipeline_strength_threshold"`
	PipelineMinRunFraction    float64 `yaml:"pipeline_min_run_fraction"`

	MinimumChanceFloor float64 `yaml:"minimum_chance_floor"`
	MinimumChanceCeil  float64 `yaml:"minimum_chance_ceil"`
	MinimumChanceStep  float64 `yaml:"minimum_chance_step"`

	PrefetchCapacityFraction float64 `yaml:"prefetch_capacity_fraction"`
}

func (s tunablesSection) toTunables() cachemgr.Tunables {
	return cachemgr.Tunables{
		BlockSize:                 s.BlockSize,
		TDiskUS:                   s.TDiskUS,
		TCpuUS:                    s.TCpuUS,
		THitUS:                    s.THitUS,
		TDriverUS:                 s.TDriverUS,
		Gamma:                     s.Gamma,
		Epsilon:                   s.Epsilon,
		HitRatioRefreshIntervalUS: s.HitRatioRefreshIntervalUS,
		PipelineStrengthThreshold: s.PipelineStrengthThreshold,
		PipelineMinRunFraction:    s.PipelineMinRunFraction,
		MinimumChanceFloor:        s.MinimumChanceFloor,
		MinimumChanceCeil:         s.MinimumChanceCeil,
		MinimumChanceStep:         s.MinimumChanceStep,
		PrefetchCapacityFraction:  s.PrefetchCapacityFraction,
	}
}

// loadTunables reads and strictly parses a tunables YAML file. An empty
// path returns cachemgr.DefaultTunables() unchanged.
func loadTunables(path string) (cachemgr.Tunables, error) {
	if path == "" {
		return cachemgr.DefaultTunables(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cachemgr.Tunables{}, fmt.Errorf("reading tunables config %s: %w", path, err)
	}

	var cfg tunablesFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cachemgr.Tunables{}, fmt.Errorf("parsing tunables config %s: %w", path, err)
	}

	return cfg.Tunables.toTunables(), nil
}
