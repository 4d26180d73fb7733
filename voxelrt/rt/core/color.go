package core

import (
	"encoding/binary"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorSize is the GPU size of a Color: four f32 components.
const ColorSize = 16

// Color is a linear RGBA color as laid out in the colored material table.
type Color struct {
	R, G, B, A float32
}

var (
	Black  = Color{0, 0, 0, 1}
	White  = Color{1, 1, 1, 1}
	Red    = Color{1, 0, 0, 1}
	Green  = Color{0, 1, 0, 1}
	Blue   = Color{0, 0, 1, 1}
	Yellow = Color{1, 1, 0, 1}
)

// ColorFromHex parses "#rrggbb" into an opaque color.
func ColorFromHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return FromColorful(c), nil
}

func FromColorful(c colorful.Color) Color {
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}
}

func (c Color) PutBytes(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(c.R))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(c.G))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(c.B))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(c.A))
}
