package svoray

import (
	"fmt"
	"sync"

	"github.com/gekko3d/svoray/voxelrt/rt/anvil"
	"github.com/gekko3d/svoray/voxelrt/rt/core"
	"github.com/gekko3d/svoray/voxelrt/rt/volume"
	"github.com/go-gl/mathgl/mgl32"
)

// World is a voxel octree filled from region files.
type World struct {
	Config Config
	Assets *Assets
	Octree *volume.Octree[core.Voxel]
	Stats  anvil.Stats

	loader *anvil.Loader
	logger Logger
	loaded map[RegionCoord]bool
	mu     sync.Mutex
}

// NewWorld validates cfg and loads its assets into palette (a fresh one when nil).
func NewWorld(cfg Config, palette *core.MaterialPalette, logger Logger) (*World, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	assets, err := LoadAssets(cfg, palette, logger)
	if err != nil {
		return nil, err
	}
	loader := anvil.NewLoader(assets.Blocks, cfg.Extent)
	loader.YShift = cfg.YShift
	loader.Logger = logger
	return &World{
		Config: cfg,
		Assets: assets,
		Octree: core.NewVoxelOctree(),
		loader: loader,
		logger: logger,
		loaded: make(map[RegionCoord]bool),
	}, nil
}

// LoadRegion decodes r.<x>.<z>.mca from the region directory. A region that
// was already loaded is skipped.
func (w *World) LoadRegion(x, z int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	coord := RegionCoord{X: x, Z: z}
	if w.loaded[coord] {
		w.logger.Debugf("region %d,%d already loaded", x, z)
		return nil
	}
	path := anvil.RegionPath(w.Config.RegionDir, x, z)
	w.logger.Infof("loading region %s", path)
	stats, err := w.loader.LoadRegion(path, x, z, w.Octree)
	w.Stats.Add(stats)
	if err != nil {
		return err
	}
	w.loaded[coord] = true
	return nil
}

// LoadRegions loads every configured region in order and stops at the first
// failure. Regions loaded before the failure stay in the octree.
func (w *World) LoadRegions() error {
	for _, r := range w.Config.Regions {
		if err := w.LoadRegion(r.X, r.Z); err != nil {
			return fmt.Errorf("load world: %w", err)
		}
	}
	w.logger.Infof("world: %d regions, %d voxels, %d octree nodes",
		len(w.loaded), w.Stats.Voxels, w.Octree.NodeCount())
	return nil
}

// Chunk wraps the world octree in a chunk anchored at the origin.
func (w *World) Chunk() *core.Chunk {
	return core.NewChunk(w.Octree, mgl32.Vec4{0, 0, 0, float32(w.Config.Extent)})
}
