// Package terrainio implements the Tile writer external interface
// (spec.md §6): binary serialization of a mesh.QuantizedTile to the
// Cesium quantized-mesh wire format, and a filesystem sink addressed by
// {outDir}/{zoom}/{x}/{y}.terrain. The manual little-endian
// encoding/binary style is adapted from internal/pmtiles/header.go's
// Serialize/Deserialize pair in the teacher repo.
package terrainio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/coronis-gis/qmeshtiler/internal/mesh"
)

// Encode serializes tile to the quantized-mesh binary layout: a
// little-endian header, three parallel 16-bit vertex arrays under
// zig-zag delta encoding, a high-watermark-encoded triangle index array,
// and four length-prefixed edge-index lists.
func Encode(tile *mesh.QuantizedTile) ([]byte, error) {
	var buf bytes.Buffer

	if err := writeHeader(&buf, tile.Header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	vertexCount := uint32(len(tile.U))
	if err := binary.Write(&buf, binary.LittleEndian, vertexCount); err != nil {
		return nil, err
	}
	writeZigZagDeltas(&buf, tile.U)
	writeZigZagDeltas(&buf, tile.V)
	writeZigZagDeltas(&buf, tile.H)

	wide := vertexCount > 65536

	triangleCount := uint32(len(tile.Indices) / 3)
	if err := binary.Write(&buf, binary.LittleEndian, triangleCount); err != nil {
		return nil, err
	}
	if err := writeHighWatermarkIndices(&buf, tile.Indices, wide); err != nil {
		return nil, fmt.Errorf("writing indices: %w", err)
	}

	for _, edge := range [][]uint32{tile.West, tile.South, tile.East, tile.North} {
		if err := writeEdgeIndices(&buf, edge, wide); err != nil {
			return nil, fmt.Errorf("writing edge indices: %w", err)
		}
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, h mesh.TileHeader) error {
	fields := []float64{
		h.Center[0], h.Center[1], h.Center[2],
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, float32(h.MinHeight)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, float32(h.MaxHeight)); err != nil {
		return err
	}
	sphere := []float64{
		h.BoundingSphereCenter[0], h.BoundingSphereCenter[1], h.BoundingSphereCenter[2],
		h.BoundingSphereRadius,
		h.HorizonOcclusionPoint[0], h.HorizonOcclusionPoint[1], h.HorizonOcclusionPoint[2],
	}
	for _, f := range sphere {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// writeZigZagDeltas writes values as successive deltas from the previous
// value, each zig-zag encoded so small deltas (the common case for a
// smoothly varying terrain surface) pack into small magnitudes
// regardless of sign.
func writeZigZagDeltas(buf *bytes.Buffer, values []uint16) {
	var prev int32
	for _, v := range values {
		cur := int32(v)
		delta := cur - prev
		zz := uint16(uint32((delta << 1) ^ (delta >> 31)))
		binary.Write(buf, binary.LittleEndian, zz)
		prev = cur
	}
}

// writeHighWatermarkIndices writes triangle indices as the distance below
// a running high-water mark: index i is encoded as (watermark - i), and
// the watermark advances to i+1 whenever that exceeds it. This assumes
// (and the vertex-fetch optimization in internal/mesh/quantize.go
// guarantees) that the index stream is close to monotonically
// increasing, which is what makes this encoding compact.
func writeHighWatermarkIndices(buf *bytes.Buffer, indices []uint32, wide bool) error {
	watermark := uint32(0)
	for _, idx := range indices {
		code := watermark - idx
		if err := writeIndex(buf, code, wide); err != nil {
			return err
		}
		if idx+1 > watermark {
			watermark = idx + 1
		}
	}
	return nil
}

func writeEdgeIndices(buf *bytes.Buffer, indices []uint32, wide bool) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(indices))); err != nil {
		return err
	}
	for _, idx := range indices {
		if err := writeIndex(buf, idx, wide); err != nil {
			return err
		}
	}
	return nil
}

func writeIndex(buf *bytes.Buffer, v uint32, wide bool) error {
	if wide {
		return binary.Write(buf, binary.LittleEndian, v)
	}
	return binary.Write(buf, binary.LittleEndian, uint16(v))
}
