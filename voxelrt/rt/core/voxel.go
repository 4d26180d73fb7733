package core

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/gekko3d/svoray/voxelrt/rt/volume"
)

const (
	// VoxelSize is the encoded size of a voxel in the octree payload.
	VoxelSize = 2

	coloredTag      = 0x8000
	maxRegularID    = 0x7FFF
	maxColoredID    = 0x7F
	coloredIDShift  = 8
	colorMask       = 0xFF
	coloredIDMask   = 0x7F
	coloredInputBit = 0x80
)

// Voxel is the packed 16-bit voxel code stored in the octree and uploaded to the GPU.
//
//	0x0000           air
//	0x0001 - 0x7FFF  regular materials, 1-based index into MaterialPalette.Materials
//	0x8000 - 0xFFFF  colored: bits 8-14 colored material index, bits 0-7 palette color
type Voxel uint16

// Air is the empty voxel.
const Air Voxel = 0

// VoxelData is the decoded form of a Voxel: either Regular or Colored.
type VoxelData interface {
	isVoxelData()
}

type Regular struct {
	ID uint16
}

type Colored struct {
	ID    uint8
	Color uint8
}

func (Regular) isVoxelData() {}
func (Colored) isVoxelData() {}

// NewVoxel returns a regular voxel. Ids with bit 15 set panic.
func NewVoxel(id uint16) Voxel {
	if id&coloredTag != 0 {
		panic(fmt.Sprintf("core: regular voxel id %#x exceeds %#x", id, maxRegularID))
	}
	return Voxel(id)
}

// NewColoredVoxel returns a colored voxel. Colored material ids are 0 - 127.
func NewColoredVoxel(id uint8, color uint8) Voxel {
	if id&coloredInputBit != 0 {
		panic(fmt.Sprintf("core: colored voxel id %d exceeds %d", id, maxColoredID))
	}
	return Voxel(coloredTag | uint16(id)<<coloredIDShift | uint16(color))
}

func (v Voxel) Raw() uint16 {
	return uint16(v)
}

func (v Voxel) IsAir() bool {
	return v == Air
}

func (v Voxel) IsColored() bool {
	return v&coloredTag != 0
}

func (v Voxel) Decode() VoxelData {
	if !v.IsColored() {
		return Regular{ID: uint16(v)}
	}
	return Colored{
		ID:    uint8(uint16(v)>>coloredIDShift) & coloredIDMask,
		Color: uint8(uint16(v) & colorMask),
	}
}

// WithColor replaces the palette color of a colored voxel. Regular voxels are returned unchanged.
func (v Voxel) WithColor(color uint8) Voxel {
	switch d := v.Decode().(type) {
	case Colored:
		return NewColoredVoxel(d.ID, color)
	default:
		return v
	}
}

// PutBytes writes the little-endian wire form into b[:VoxelSize].
func (v Voxel) PutBytes(b []byte) {
	binary.LittleEndian.PutUint16(b, uint16(v))
}

func (v Voxel) String() string {
	switch d := v.Decode().(type) {
	case Colored:
		return fmt.Sprintf("Colored(%d, %d)", d.ID, d.Color)
	case Regular:
		return fmt.Sprintf("Regular(%d)", d.ID)
	}
	return "Voxel(?)"
}

// Reduce8 picks the most frequent of eight sibling voxels. Ties go to the
// smallest raw value, which is the first maximal run after sorting.
func Reduce8(children [8]Voxel) Voxel {
	sorted := children
	slices.Sort(sorted[:])

	best, bestCount := sorted[0], 0
	run, runCount := sorted[0], 0
	for _, v := range sorted {
		if v != run {
			run, runCount = v, 0
		}
		runCount++
		if runCount > bestCount {
			best, bestCount = run, runCount
		}
	}
	return best
}

// VoxelCodec plugs the voxel encoding and LOD rule into the octree store.
var VoxelCodec = volume.Codec[Voxel]{
	Width:  VoxelSize,
	Reduce: Reduce8,
	Put: func(b []byte, v Voxel) {
		v.PutBytes(b)
	},
}

func NewVoxelOctree() *volume.Octree[Voxel] {
	return volume.NewOctree(VoxelCodec)
}
