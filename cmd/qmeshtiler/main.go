// Command qmeshtiler reads a georeferenced elevation raster and writes a
// pyramid of Cesium quantized-mesh terrain tiles.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/coronis-gis/qmeshtiler/internal/cog"
	"github.com/coronis-gis/qmeshtiler/internal/config"
	"github.com/coronis-gis/qmeshtiler/internal/geodetic"
	"github.com/coronis-gis/qmeshtiler/internal/grid"
	"github.com/coronis-gis/qmeshtiler/internal/mesh"
	"github.com/coronis-gis/qmeshtiler/internal/pmtiles"
	"github.com/coronis-gis/qmeshtiler/internal/sysinfo"
	"github.com/coronis-gis/qmeshtiler/internal/terrainio"
)

// estimatedTileWorkingSet is a conservative estimate of one tile build's
// peak memory (raster window, triangulation arena, quantization buffers)
// used only to auto-size the worker pool when --workers is left at 0.
const estimatedTileWorkingSet = 8 * 1024 * 1024

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()
	var configFile string

	cmd := &cobra.Command{
		Use:   "qmeshtiler",
		Short: "Build a quantized-mesh terrain tile pyramid from a GeoTIFF elevation raster",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				// Flags given on the command line win over the file:
				// remember them, merge the file, then set them again.
				explicit := map[string]string{}
				cmd.Flags().Visit(func(f *pflag.Flag) { explicit[f.Name] = f.Value.String() })
				merged, err := config.LoadFile(cfg, configFile)
				if err != nil {
					return err
				}
				cfg = merged
				for name, value := range explicit {
					if err := cmd.Flags().Set(name, value); err != nil {
						return err
					}
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.RasterPath, "raster", cfg.RasterPath, "path to the input GeoTIFF/COG elevation raster")
	flags.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output directory for the tile pyramid")
	flags.IntVar(&cfg.StartZoom, "start-zoom", cfg.StartZoom, "first zoom level to build")
	flags.IntVar(&cfg.EndZoom, "end-zoom", cfg.EndZoom, "last zoom level to build")
	flags.Float64Var(&cfg.StopRatio, "stop-ratio", cfg.StopRatio, "edge-count stop ratio for mesh simplification")
	flags.StringVar((*string)(&cfg.Grid), "grid", string(cfg.Grid), "TMS grid profile: geodetic or mercator")
	flags.BoolVar(&cfg.PreserveCorners, "preserve-corners", true, "always constrain the four tile corners during simplification")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "tiles to build concurrently within one wavefront diagonal (0 = auto-detect from system RAM)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, or error")
	flags.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "pyramid output format: dir (loose {zoom}/{x}/{y}.terrain tree) or pmtiles (single archive file)")
	flags.StringVar(&configFile, "config", "", "optional YAML config file; flags override its values")

	cmd.AddCommand(newInspectCommand())

	return cmd
}

func run(cfg config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	reader, err := cog.Open(cfg.RasterPath)
	if err != nil {
		return fmt.Errorf("opening raster: %w", err)
	}
	defer reader.Close()

	raster := cog.RasterAdapter{Reader: reader}

	var gridAdapter mesh.GridAdapter
	switch config.GridProfile(cfg.Grid) {
	case config.GridMercator:
		gridAdapter = grid.MercatorGrid{}
		sugar.Warnw("mercator grid selected; this is not Cesium's native geodetic tile layout")
	default:
		gridAdapter = grid.GeodeticGrid{}
	}

	var writer mesh.TileWriter
	switch cfg.OutputFormat {
	case "pmtiles":
		minX, minY, maxX, maxY := reader.BoundsInCRS()
		archive, err := pmtiles.NewArchiveTileWriter(cfg.OutDir, cfg.StartZoom, cfg.EndZoom,
			cog.Bounds{MinLon: minX, MinLat: minY, MaxLon: maxX, MaxLat: maxY})
		if err != nil {
			return fmt.Errorf("creating pmtiles archive: %w", err)
		}
		writer = archive
	default:
		writer = terrainio.FileTileWriter{OutDir: cfg.OutDir}
	}

	meshCfg := cfg.ToMeshConfig()
	if meshCfg.Workers == 0 {
		meshCfg.Workers = sysinfo.RecommendedWorkers(estimatedTileWorkingSet, sysinfo.DefaultMemoryPressurePercent)
		sugar.Infow("auto-detected worker count", "workers", meshCfg.Workers)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Infow("starting pyramid build",
		"raster", cfg.RasterPath, "out", cfg.OutDir,
		"startZoom", cfg.StartZoom, "endZoom", cfg.EndZoom,
		"grid", cfg.Grid, "workers", meshCfg.Workers, "format", cfg.OutputFormat)

	if err := mesh.BuildZoom(ctx, meshCfg, raster, gridAdapter, geodetic.Adapter{}, writer, sugar); err != nil {
		return err
	}
	if archive, ok := writer.(*pmtiles.ArchiveTileWriter); ok {
		return archive.Close()
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	cfg.Level = lvl
	return cfg.Build()
}
