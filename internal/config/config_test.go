package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig(t *testing.T, rasterPath string) Config {
	t.Helper()
	cfg := Default()
	cfg.RasterPath = rasterPath
	cfg.OutDir = "out"
	cfg.StartZoom = 0
	cfg.EndZoom = 5
	return cfg
}

func tempRasterFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raster.tif")
	if err := os.WriteFile(path, []byte("not a real tiff"), 0o644); err != nil {
		t.Fatalf("writing temp raster: %v", err)
	}
	return path
}

func TestDefaultIsInvalidWithoutRequiredFields(t *testing.T) {
	if err := Default().Validate(); err == nil {
		t.Fatal("expected the default config (missing raster/out) to fail validation")
	}
}

func TestValidConfigPasses(t *testing.T) {
	cfg := validConfig(t, tempRasterFile(t))
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRejectsEndZoomBeforeStartZoom(t *testing.T) {
	cfg := validConfig(t, tempRasterFile(t))
	cfg.StartZoom = 5
	cfg.EndZoom = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when endZoom < startZoom")
	}
}

func TestValidateRejectsStopRatioOutOfRange(t *testing.T) {
	cfg := validConfig(t, tempRasterFile(t))
	cfg.StopRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for stopRatio > 1")
	}
}

func TestValidateRejectsUnknownGridProfile(t *testing.T) {
	cfg := validConfig(t, tempRasterFile(t))
	cfg.Grid = GridProfile("spherical")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unrecognized grid profile")
	}
}

func TestValidateRejectsMissingRasterFile(t *testing.T) {
	cfg := validConfig(t, filepath.Join(t.TempDir(), "missing.tif"))
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when the raster file does not exist")
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "raster: /data/elevation.tif\nout: /data/tiles\nstartZoom: 2\nendZoom: 10\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	merged, err := LoadFile(Default(), path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if merged.RasterPath != "/data/elevation.tif" {
		t.Errorf("RasterPath = %q, want /data/elevation.tif", merged.RasterPath)
	}
	if merged.StartZoom != 2 || merged.EndZoom != 10 {
		t.Errorf("zoom range = [%d,%d], want [2,10]", merged.StartZoom, merged.EndZoom)
	}
	// Fields absent from the file must keep Default()'s values.
	if merged.StopRatio != Default().StopRatio {
		t.Errorf("StopRatio = %v, want default %v unchanged", merged.StopRatio, Default().StopRatio)
	}
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	_, err := LoadFile(Default(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestToMeshConfigProjectsFields(t *testing.T) {
	cfg := validConfig(t, tempRasterFile(t))
	cfg.PreserveCorners = true
	cfg.Workers = 4

	mc := cfg.ToMeshConfig()
	if mc.StartZoom != cfg.StartZoom || mc.EndZoom != cfg.EndZoom {
		t.Errorf("zoom range not carried through: got [%d,%d]", mc.StartZoom, mc.EndZoom)
	}
	if mc.StopRatio != cfg.StopRatio || mc.PreserveCorners != cfg.PreserveCorners || mc.Workers != cfg.Workers {
		t.Errorf("ToMeshConfig did not carry through all fields: %+v", mc)
	}
}
