package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// benchConfig mirrors the flag set but can also be loaded from a JSONC
// (JSON-with-comments) file, letting a benchmark run be checked into a repo
// with inline notes about why its shape was chosen.
type benchConfig struct {
	Capacity  uint64 `json:"capacity"`
	KeySpace  int    `json:"key_space"`
	Workers   int    `json:"workers"`
	Ops       int    `json:"ops"`
	Seed      int64  `json:"seed"`
	AddWeight int    `json:"add_weight"`
	GetWeight int    `json:"get_weight"`
	DelWeight int    `json:"del_weight"`
}

func defaultBenchConfig() benchConfig {
	return benchConfig{
		Capacity:  1 << 16,
		KeySpace:  10000,
		Workers:   8,
		Ops:       200000,
		Seed:      1,
		AddWeight: 1,
		GetWeight: 8,
		DelWeight: 1,
	}
}

// loadBenchConfig reads a JSONC config file, applying its fields over the
// defaults. An empty path is a no-op.
func loadBenchConfig(path string, cfg benchConfig) (benchConfig, error) {
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return cfg, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config JSON in %s: %w", path, err)
	}
	return cfg, nil
}
