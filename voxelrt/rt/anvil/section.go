package anvil

import (
	"fmt"

	"github.com/gekko3d/svoray/voxelrt/rt/core"
)

const (
	// SectionSize is the edge length of a section and of a chunk column.
	SectionSize = 16
	// RegionChunks is the number of chunks along one edge of a region.
	RegionChunks = 32
	// RegionSize is the edge length of a region in blocks.
	RegionSize = RegionChunks * SectionSize
)

// VoxelSink receives decoded voxels. *volume.Octree[core.Voxel] satisfies it.
type VoxelSink interface {
	Set(x, y, z, size uint32, v core.Voxel)
}

// Packing selects how block-state entries are laid out in their words.
type Packing int

const (
	// PackingSpanning lets entries cross word boundaries (before 1.16).
	PackingSpanning Packing = iota
	// PackingAligned keeps entries inside one word (1.16 and later).
	PackingAligned
)

// Section is one 16x16x16 slice of a chunk column.
type Section struct {
	Y           int
	Palette     []string
	BlockStates []uint64
	Packing     Packing
}

// Placement locates a section in the world.
type Placement struct {
	RegionX, RegionZ int
	ChunkX, ChunkZ   int
	// YShift is added to every absolute Y, e.g. 64 for worlds starting at -64.
	YShift int
	Extent uint32
}

// Stats counts what a decode produced.
type Stats struct {
	Chunks      int
	Sections    int
	Voxels      int
	Skipped     int
	Substituted int
	Clipped     int
}

func (s *Stats) Add(o Stats) {
	s.Chunks += o.Chunks
	s.Sections += o.Sections
	s.Voxels += o.Voxels
	s.Skipped += o.Skipped
	s.Substituted += o.Substituted
	s.Clipped += o.Clipped
}

// HasBlocks reports whether the section carries anything to decode.
func (s *Section) HasBlocks() bool {
	if len(s.Palette) == 0 {
		return false
	}
	// 1.18 sections with a single palette entry omit the data array.
	return len(s.BlockStates) > 0 || (s.Packing == PackingAligned && len(s.Palette) == 1)
}

func (s *Section) indices(out *[SectionVolume]uint16) error {
	switch s.Packing {
	case PackingAligned:
		width := AlignedBits(len(s.Palette))
		if width == 0 && len(s.BlockStates) > 0 {
			// 1.16 and 1.17 still write the array for single entry palettes
			width = MinAlignedBits
		}
		return UnpackAligned(s.BlockStates, width, out)
	default:
		return UnpackSpanning(s.BlockStates, SpanningBits(len(s.BlockStates)), out)
	}
}

// DecodeSection resolves every block of s through blocks and writes the
// resulting voxels to sink at absolute world coordinates.
func DecodeSection(s *Section, at Placement, blocks *BlockTable, sink VoxelSink, unknown func(name string)) (Stats, error) {
	var stats Stats
	if !s.HasBlocks() {
		return stats, nil
	}
	stats.Sections = 1

	var indices [SectionVolume]uint16
	if err := s.indices(&indices); err != nil {
		return stats, fmt.Errorf("section y=%d: %w", s.Y, err)
	}

	baseX := at.ChunkX*SectionSize + at.RegionX*RegionSize
	baseZ := at.ChunkZ*SectionSize + at.RegionZ*RegionSize
	baseY := s.Y*SectionSize + at.YShift
	extent := int(at.Extent)

	for i, index := range indices {
		if i>>12 != 0 {
			panic(fmt.Sprintf("anvil: block index %d outside section", i))
		}
		if int(index) >= len(s.Palette) {
			return stats, fmt.Errorf("section y=%d: palette index %d out of range (%d entries)", s.Y, index, len(s.Palette))
		}
		name := s.Palette[index]
		voxel, place, known := blocks.Lookup(name)
		if !place {
			stats.Skipped++
			continue
		}
		if !known {
			stats.Substituted++
			if unknown != nil {
				unknown(name)
			}
		}

		x := baseX + i&0xF
		z := baseZ + (i>>4)&0xF
		y := baseY + i>>8
		if x < 0 || y < 0 || z < 0 || x >= extent || y >= extent || z >= extent {
			stats.Clipped++
			continue
		}
		sink.Set(uint32(x), uint32(y), uint32(z), at.Extent, voxel)
		stats.Voxels++
	}
	return stats, nil
}
