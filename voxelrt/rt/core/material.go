package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/google/uuid"
)

const (
	// MaterialDataSize is the GPU record size of a Material.
	MaterialDataSize = 16
	// PaletteColors is the number of colors in a colored material table.
	PaletteColors = 256
	// ColoredMaterialDataSize is a material record followed by its color table.
	ColoredMaterialDataSize = MaterialDataSize + PaletteColors*ColorSize
)

// DefaultPaletteID identifies the process-wide material palette.
var DefaultPaletteID = uuid.MustParse("6ac654c6-607f-426f-98b5-2e7f6d810056")

type Material struct {
	Name    string
	Scale   float32
	Diffuse TextureHandle // NoTexture when unset
	Normal  TextureHandle
}

func NewMaterial(name string, scale float32, diffuse TextureHandle) Material {
	return Material{
		Name:    name,
		Scale:   scale,
		Diffuse: diffuse,
	}
}

// WriteBytes writes the 16 byte record: scale f32, diffuse u16, normal u16, zero padding.
func (m Material) WriteBytes(b []byte) {
	b = b[:MaterialDataSize]
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(m.Scale))
	binary.LittleEndian.PutUint16(b[4:], uint16(m.Diffuse))
	binary.LittleEndian.PutUint16(b[6:], uint16(m.Normal))
	clear(b[8:])
}

type ColoredMaterial struct {
	Material Material
	Palette  [PaletteColors]Color
}

// DefaultColoredMaterial is a plain color material with an all black table.
func DefaultColoredMaterial() ColoredMaterial {
	m := ColoredMaterial{
		Material: Material{Name: "PlainColor"},
	}
	for i := range m.Palette {
		m.Palette[i] = Black
	}
	return m
}

// UniformColoredMaterial fills every palette entry with c.
func UniformColoredMaterial(material Material, c Color) ColoredMaterial {
	m := ColoredMaterial{Material: material}
	for i := range m.Palette {
		m.Palette[i] = c
	}
	return m
}

func (m *ColoredMaterial) WriteBytes(b []byte) {
	b = b[:ColoredMaterialDataSize]
	m.Material.WriteBytes(b[:MaterialDataSize])
	table := b[MaterialDataSize:]
	for i, c := range m.Palette {
		c.PutBytes(table[i*ColorSize:])
	}
}

// MaterialPalette maps voxel codes to materials. Entries are append only.
type MaterialPalette struct {
	ID               uuid.UUID
	ColoredMaterials []ColoredMaterial
	Materials        []Material

	names map[string]Voxel
}

func NewMaterialPalette() *MaterialPalette {
	return &MaterialPalette{
		ID:    uuid.New(),
		names: make(map[string]Voxel),
	}
}

var defaultPalette = &MaterialPalette{
	ID:    DefaultPaletteID,
	names: make(map[string]Voxel),
}

// DefaultMaterialPalette returns the well-known palette. Populate it during
// startup before any voxel data references it.
func DefaultMaterialPalette() *MaterialPalette {
	return defaultPalette
}

// AddMaterial appends m and returns its regular voxel. Index 0 is air, so the
// first material is voxel 1.
func (p *MaterialPalette) AddMaterial(m Material) Voxel {
	p.Materials = append(p.Materials, m)
	voxel := NewVoxel(uint16(len(p.Materials)))
	p.remember(m.Name, voxel)
	return voxel
}

// AddColoredMaterial appends m and returns its colored voxel with color 0.
func (p *MaterialPalette) AddColoredMaterial(m ColoredMaterial) Voxel {
	if len(p.ColoredMaterials) > maxColoredID {
		panic(fmt.Sprintf("core: palette already holds %d colored materials", len(p.ColoredMaterials)))
	}
	voxel := NewColoredVoxel(uint8(len(p.ColoredMaterials)), 0)
	p.ColoredMaterials = append(p.ColoredMaterials, m)
	p.remember(m.Material.Name, voxel)
	return voxel
}

func (p *MaterialPalette) remember(name string, v Voxel) {
	if name == "" {
		return
	}
	if p.names == nil {
		p.names = make(map[string]Voxel)
	}
	if _, ok := p.names[name]; !ok {
		p.names[name] = v
	}
}

// Lookup returns the voxel of the first material registered under name.
func (p *MaterialPalette) Lookup(name string) (Voxel, bool) {
	v, ok := p.names[name]
	return v, ok
}

func (p *MaterialPalette) MaterialsSize() int {
	return MaterialDataSize * len(p.Materials)
}

func (p *MaterialPalette) ColoredMaterialsSize() int {
	return ColoredMaterialDataSize * len(p.ColoredMaterials)
}

func (p *MaterialPalette) WriteMaterials(b []byte) {
	for i, m := range p.Materials {
		m.WriteBytes(b[i*MaterialDataSize : (i+1)*MaterialDataSize])
	}
}

func (p *MaterialPalette) WriteColoredMaterials(b []byte) {
	for i := range p.ColoredMaterials {
		p.ColoredMaterials[i].WriteBytes(b[i*ColoredMaterialDataSize : (i+1)*ColoredMaterialDataSize])
	}
}

// PaletteLayout locates the two palette segments inside one GPU buffer.
type PaletteLayout struct {
	ColoredMaterialsSize int
	// MaterialsOffset is ColoredMaterialsSize rounded up to the alignment.
	MaterialsOffset int
	MaterialsSize   int
	// Size is the unpadded end of the materials segment.
	Size int
	// AlignedSize is Size rounded up to the alignment.
	AlignedSize int
}

// AlignTo rounds n up to a multiple of alignment, which must be a power of two.
func AlignTo(n, alignment int) int {
	if alignment <= 0 || bits.OnesCount(uint(alignment)) != 1 {
		panic(fmt.Sprintf("core: alignment %d is not a power of two", alignment))
	}
	return (n + alignment - 1) &^ (alignment - 1)
}

func (p *MaterialPalette) Layout(alignment int) PaletteLayout {
	l := PaletteLayout{
		ColoredMaterialsSize: p.ColoredMaterialsSize(),
		MaterialsSize:        p.MaterialsSize(),
	}
	l.MaterialsOffset = AlignTo(l.ColoredMaterialsSize, alignment)
	l.Size = l.MaterialsOffset + l.MaterialsSize
	l.AlignedSize = AlignTo(l.Size, alignment)
	return l
}

// WriteBuffer serializes both segments into a fresh zero-filled buffer:
// colored materials first, then materials at the aligned offset.
func (p *MaterialPalette) WriteBuffer(alignment int) ([]byte, PaletteLayout) {
	l := p.Layout(alignment)
	buf := make([]byte, l.AlignedSize)
	p.WriteColoredMaterials(buf[:l.ColoredMaterialsSize])
	p.WriteMaterials(buf[l.MaterialsOffset:l.Size])
	return buf, l
}
