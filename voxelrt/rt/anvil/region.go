package anvil

import (
	"fmt"
	"path/filepath"

	"github.com/Tnze/go-mc/save/region"
)

// Logger is the subset of the application logger the loader uses.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

// RegionPath returns dir/r.<x>.<z>.mca.
func RegionPath(dir string, x, z int) string {
	return filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", x, z))
}

// Loader decodes region files into a voxel sink.
type Loader struct {
	Blocks *BlockTable
	// Extent is the power-of-two edge length of the sink; voxels outside are clipped.
	Extent uint32
	YShift int
	Logger Logger

	reported map[string]bool
}

func NewLoader(blocks *BlockTable, extent uint32) *Loader {
	return &Loader{
		Blocks: blocks,
		Extent: extent,
	}
}

func (l *Loader) debugf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Debugf(format, args...)
	}
}

func (l *Loader) unknownBlock(name string) {
	if l.reported == nil {
		l.reported = make(map[string]bool)
	}
	if !l.reported[name] {
		l.reported[name] = true
		l.debugf("missing block %q, using %v", name, l.Blocks.Default)
	}
}

// LoadRegion decodes every chunk of the region file at path. Any I/O or
// decode error aborts the region; voxels already written stay in the sink.
func (l *Loader) LoadRegion(path string, regionX, regionZ int, sink VoxelSink) (Stats, error) {
	var stats Stats
	r, err := region.Open(path)
	if err != nil {
		return stats, fmt.Errorf("open region %s: %w", path, err)
	}
	defer r.Close()

	for cz := 0; cz < RegionChunks; cz++ {
		for cx := 0; cx < RegionChunks; cx++ {
			if !r.ExistSector(cx, cz) {
				continue
			}
			data, err := r.ReadSector(cx, cz)
			if err != nil {
				return stats, fmt.Errorf("region %s chunk %d,%d: %w", path, cx, cz, err)
			}
			l.debugf("loading chunk %d %d", cx, cz)
			cs, err := l.LoadChunk(data, Placement{
				RegionX: regionX,
				RegionZ: regionZ,
				ChunkX:  cx,
				ChunkZ:  cz,
				YShift:  l.YShift,
				Extent:  l.Extent,
			}, sink)
			if err != nil {
				return stats, fmt.Errorf("region %s chunk %d,%d: %w", path, cx, cz, err)
			}
			stats.Add(cs)
		}
	}
	if l.Logger != nil {
		l.Logger.Infof("region %d,%d: %d chunks, %d sections, %d voxels (%d substituted, %d clipped)",
			regionX, regionZ, stats.Chunks, stats.Sections, stats.Voxels, stats.Substituted, stats.Clipped)
	}
	return stats, nil
}

// LoadChunk decodes one sector payload placed at the given chunk position.
func (l *Loader) LoadChunk(data []byte, at Placement, sink VoxelSink) (Stats, error) {
	stats := Stats{Chunks: 1}
	sections, err := decodeChunk(data)
	if err != nil {
		return stats, err
	}
	for i := range sections {
		ss, err := DecodeSection(&sections[i], at, l.Blocks, sink, l.unknownBlock)
		stats.Add(ss)
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}
