// Package config assembles and validates the run configuration consumed
// by cmd/qmeshtiler: CLI flags layered over an optional YAML file,
// validated with struct tags before mesh.BuildZoom is invoked.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/coronis-gis/qmeshtiler/internal/mesh"
)

// GridProfile selects the TMS tile layout (internal/grid).
type GridProfile string

const (
	GridGeodetic GridProfile = "geodetic"
	GridMercator GridProfile = "mercator"
)

// Config is the fully-resolved run configuration.
type Config struct {
	RasterPath      string      `yaml:"raster" validate:"required,file"`
	OutDir          string      `yaml:"out" validate:"required"`
	StartZoom       int         `yaml:"startZoom" validate:"gte=0"`
	EndZoom         int         `yaml:"endZoom" validate:"gtefield=StartZoom"`
	StopRatio       float64     `yaml:"stopRatio" validate:"gt=0,lte=1"`
	Grid            GridProfile `yaml:"grid" validate:"oneof=geodetic mercator"`
	PreserveCorners bool        `yaml:"preserveCorners"`
	// OutputFormat selects how the pyramid is written: "dir" for a loose
	// {zoom}/{x}/{y}.terrain tree, or "pmtiles" for a single PMTiles v3
	// archive at OutDir.
	OutputFormat string `yaml:"outputFormat" validate:"oneof=dir pmtiles"`
	// Workers is the tile concurrency within one wavefront diagonal; 0
	// means auto-detect from system RAM (see internal/sysinfo).
	Workers  int `yaml:"workers" validate:"gte=0"`
	LogLevel        string      `yaml:"logLevel" validate:"oneof=debug info warn error"`
}

// Default returns the baseline configuration flags layer on top of.
func Default() Config {
	return Config{
		StopRatio:    0.05,
		Grid:         GridGeodetic,
		Workers:      0, // auto-detect
		LogLevel:     "info",
		OutputFormat: "dir",
	}
}

// LoadFile reads a YAML config file and merges its fields over cfg,
// returning the merged result. Absent YAML keys leave cfg's existing
// values untouched (the CLI calls this before applying flag overrides,
// so flags still win over the file).
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks struct tags (zoom ordering, stop-ratio range, raster
// path existence, worker count, grid profile name) and returns a
// descriptive error listing every violated field.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ToMeshConfig projects the CLI/YAML configuration down to the subset
// internal/mesh.BuildZoom needs.
func (c Config) ToMeshConfig() mesh.Config {
	return mesh.Config{
		StartZoom:       c.StartZoom,
		EndZoom:         c.EndZoom,
		StopRatio:       c.StopRatio,
		PreserveCorners: c.PreserveCorners,
		Workers:         c.Workers,
	}
}
