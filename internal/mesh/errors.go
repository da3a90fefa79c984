package mesh

import "errors"

// Sentinel error kinds used by the core pipeline. Wrap with
// fmt.Errorf("%w: ...", ErrX) at the point of failure and recover the
// kind with errors.Is.
var (
	// ErrRasterRead indicates the backing raster window read did not
	// complete. The tile is skipped; the driver continues.
	ErrRasterRead = errors.New("raster read error")

	// ErrProjection indicates the raster is not in geographic WGS84.
	// Fatal: returned before the pyramid starts.
	ErrProjection = errors.New("raster projection error")

	// ErrMeshInvariant indicates fewer than four corners were detected
	// after the border walk. Logged; the tile is still emitted.
	ErrMeshInvariant = errors.New("mesh invariant violated")

	// ErrBoundsClamp indicates a vertex coordinate fell outside [0,1]
	// before clamping. Non-fatal, informational.
	ErrBoundsClamp = errors.New("bounds clamp warning")
)
