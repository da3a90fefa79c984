package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coronis-gis/qmeshtiler/internal/cog"
)

// newInspectCommand reports a raster's georeferencing metadata and samples
// its elevation at the four corners, without building any
// tiles. Useful for diagnosing a raster before committing to a full
// pyramid build.
func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <raster>",
		Short: "Print a GeoTIFF/COG elevation raster's metadata and sample elevations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(path string) error {
	r, err := cog.Open(path)
	if err != nil {
		return fmt.Errorf("opening raster: %w", err)
	}
	defer r.Close()

	minX, minY, maxX, maxY := r.BoundsInCRS()

	fmt.Printf("File: %s\n", path)
	fmt.Printf("EPSG: %d\n", r.EPSG())
	fmt.Printf("Full-res size: %d x %d\n", r.Width(), r.Height())
	fmt.Printf("Pixel size (CRS units): %f\n", r.PixelSize())
	fmt.Printf("Overview levels: %d (%d IFDs total)\n", r.NumOverviews(), r.IFDCount())
	fmt.Printf("Bounds: lon=[%f, %f] lat=[%f, %f]\n", minX, maxX, minY, maxY)

	if r.EPSG() != 4326 {
		fmt.Println("warning: raster is not EPSG:4326; qmeshtiler requires a geographic raster")
		return nil
	}

	const samples = 2
	h, err := r.ReadElevationWindow(minX, minY, maxX, maxY, samples, samples)
	if err != nil {
		return fmt.Errorf("sampling elevation: %w", err)
	}
	labels := []string{"northwest", "northeast", "southwest", "southeast"}
	fmt.Println("Sample elevations (corners):")
	for i, label := range labels {
		fmt.Printf("  %-10s elevation=%f\n", label, h[i])
	}
	return nil
}
