// Package morton computes 30-bit interleaved Morton codes for points
// normalized against a scene bounding box, used to derive the leaf order
// that the LBVH builder sorts on.
//
// The bit-spreading technique is the standard "insert two zero bits
// between every original bit" trick (grounded on the interleaving used by
// _examples/other_examples/VoxelsPlace-VOPL__morton.go), specialized here
// to spread a 10-bit quantized coordinate across a 32-bit word.
package morton

import "github.com/achilleasa/go-lbvh/geom"

const (
	quantBits  = 10
	quantScale = 1 << quantBits
	quantMax   = quantScale - 1
)

// Encode maps p, normalized against the scene box, to a 32-bit Morton
// code with 30 significant low bits: x occupies bit 2, y bit 1, z bit 0
// of every 3-bit group.
func Encode(p geom.Point, scene geom.Box) uint32 {
	qx := quantize(normalize(p.X, scene.Min.X, scene.Max.X))
	qy := quantize(normalize(p.Y, scene.Min.Y, scene.Max.Y))
	qz := quantize(normalize(p.Z, scene.Min.Z, scene.Max.Z))
	return spread(qx)<<2 | spread(qy)<<1 | spread(qz)
}

// normalize maps v in [lo,hi] to [0,1], clamping degenerate (zero-span)
// axes to 0.
func normalize(v, lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		return 0
	}
	u := (v - lo) / span
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

func quantize(u float64) uint32 {
	q := uint32(u * quantScale)
	if q > quantMax {
		return quantMax
	}
	return q
}

// spread inserts two zero bits after each of the low 10 bits of v.
func spread(v uint32) uint32 {
	v &= 0x000003ff
	v = (v | (v << 16)) & 0x030000ff
	v = (v | (v << 8)) & 0x0300f00f
	v = (v | (v << 4)) & 0x030c30c3
	v = (v | (v << 2)) & 0x09249249
	return v
}
