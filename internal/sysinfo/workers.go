// Package sysinfo detects host resources (RAM, CPU count) to size the
// pyramid builder's worker pool automatically when the operator does not
// pin a worker count explicitly.
package sysinfo

import "runtime"

// DefaultMemoryPressurePercent is the fraction of total RAM the worker
// pool is allowed to target before RecommendedWorkers starts capping
// concurrency to avoid swapping. 0.90 = 90%.
const DefaultMemoryPressurePercent = 0.90

// RecommendedWorkers estimates how many tiles can be built concurrently
// within one wavefront diagonal without exceeding the configured fraction
// of system RAM, given perTileBytes — the caller's estimate of one tile
// build's peak working set (raster window, triangulation, and
// quantization buffers).
//
// Falls back to runtime.NumCPU() if RAM cannot be detected, and always
// returns at least 1.
func RecommendedWorkers(perTileBytes int64, fraction float64) int {
	if perTileBytes <= 0 {
		perTileBytes = 1
	}

	totalRAM, err := totalSystemRAM()
	if err != nil {
		return clampWorkers(runtime.NumCPU())
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	overhead := m.Sys + 512*1024*1024 // current usage + fixed headroom

	budget := int64(float64(totalRAM)*fraction) - int64(overhead)
	if budget <= 0 {
		return 1
	}

	byMemory := int(budget / perTileBytes)
	return clampWorkers(byMemory)
}

func clampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if cpu := runtime.NumCPU(); n > cpu {
		return cpu
	}
	return n
}
