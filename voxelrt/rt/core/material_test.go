package core

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialPaletteAdd(t *testing.T) {
	p := NewMaterialPalette()

	stone := p.AddMaterial(NewMaterial("stone", 1.0, TextureHandle(3)))
	colored := p.AddColoredMaterial(DefaultColoredMaterial())
	log := p.AddMaterial(NewMaterial("log", 1.0, NoTexture))

	assert.Equal(t, NewVoxel(1), stone)
	assert.Equal(t, NewVoxel(2), log)
	assert.Equal(t, NewColoredVoxel(0, 0), colored)

	assert.Equal(t, 32, p.MaterialsSize())
	assert.Equal(t, 4112, p.ColoredMaterialsSize())

	v, ok := p.Lookup("stone")
	require.True(t, ok)
	assert.Equal(t, stone, v)
	v, ok = p.Lookup("PlainColor")
	require.True(t, ok)
	assert.Equal(t, colored, v)
	_, ok = p.Lookup("missing")
	assert.False(t, ok)
}

func TestMaterialPaletteSizes(t *testing.T) {
	p := NewMaterialPalette()
	p.AddMaterial(Material{Name: "m", Scale: 2.5, Diffuse: 7})
	p.AddColoredMaterial(DefaultColoredMaterial())

	assert.Equal(t, 16, p.MaterialsSize())
	assert.Equal(t, 4112, p.ColoredMaterialsSize())
}

func TestMaterialRecordLayout(t *testing.T) {
	p := NewMaterialPalette()
	p.AddMaterial(Material{Name: "stone", Scale: 2.5, Diffuse: 7, Normal: 9})
	p.AddMaterial(Material{Name: "dirt", Scale: 0.5, Diffuse: 2})

	buf := make([]byte, p.MaterialsSize())
	for i := range buf {
		buf[i] = 0xFF
	}
	p.WriteMaterials(buf)

	assert.Equal(t, float32(2.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, uint16(7), binary.LittleEndian.Uint16(buf[4:]))
	assert.Equal(t, uint16(9), binary.LittleEndian.Uint16(buf[6:]))
	assert.Equal(t, make([]byte, 8), buf[8:16], "padding is zeroed")

	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(buf[20:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[22:]))
}

func TestColoredMaterialRecordLayout(t *testing.T) {
	m := DefaultColoredMaterial()
	m.Material.Diffuse = 4
	m.Palette[1] = Blue
	m.Palette[255] = Color{0.25, 0.5, 0.75, 1}

	buf := make([]byte, ColoredMaterialDataSize)
	m.WriteBytes(buf)

	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(buf[4:]))
	readColor := func(i int) Color {
		off := MaterialDataSize + i*ColorSize
		f := func(o int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off+o:])) }
		return Color{f(0), f(4), f(8), f(12)}
	}
	assert.Equal(t, Black, readColor(0))
	assert.Equal(t, Blue, readColor(1))
	assert.Equal(t, Color{0.25, 0.5, 0.75, 1}, readColor(255))
}

func TestPaletteLayoutAlignment(t *testing.T) {
	p := NewMaterialPalette()
	p.AddColoredMaterial(DefaultColoredMaterial())
	p.AddMaterial(Material{Name: "a", Scale: 1, Diffuse: 1})
	p.AddMaterial(Material{Name: "b", Scale: 3, Diffuse: 2})

	l := p.Layout(256)
	assert.Equal(t, 4112, l.ColoredMaterialsSize)
	assert.Equal(t, 4352, l.MaterialsOffset)
	assert.Equal(t, 32, l.MaterialsSize)
	assert.Equal(t, 4384, l.Size)
	assert.Equal(t, 4608, l.AlignedSize)

	buf, got := p.WriteBuffer(256)
	require.Equal(t, l, got)
	require.Len(t, buf, 4608)

	assert.Equal(t, make([]byte, 4352-4112), buf[4112:4352], "gap between segments is zeroed")
	assert.Equal(t, make([]byte, 4608-4384), buf[4384:], "tail padding is zeroed")

	second := buf[l.MaterialsOffset+MaterialDataSize:]
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(second)))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(second[4:]))
}

func TestPaletteLayoutEmpty(t *testing.T) {
	l := NewMaterialPalette().Layout(256)
	assert.Equal(t, PaletteLayout{}, l)
}

func TestAlignTo(t *testing.T) {
	assert.Equal(t, 0, AlignTo(0, 256))
	assert.Equal(t, 256, AlignTo(1, 256))
	assert.Equal(t, 256, AlignTo(256, 256))
	assert.Equal(t, 4116, AlignTo(4113, 4))
	require.Panics(t, func() { AlignTo(10, 3) })
	require.Panics(t, func() { AlignTo(10, 0) })
}

func TestColorFromHex(t *testing.T) {
	c, err := ColorFromHex("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, Red, c)

	_, err = ColorFromHex("nope")
	assert.Error(t, err)
}

func TestDefaultMaterialPalette(t *testing.T) {
	p := DefaultMaterialPalette()
	assert.Same(t, p, DefaultMaterialPalette())
	assert.Equal(t, DefaultPaletteID, p.ID)
}
