package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gekko3d/svoray"
	"github.com/gekko3d/svoray/voxelrt/rt/core"
	"github.com/gekko3d/svoray/voxelrt/rt/gpu"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	ChunkFile   = "chunk.bin"
	PaletteFile = "palette.bin"
)

// App loads a world and hands its buffers to the GPU or to disk.
type App struct {
	Config   svoray.Config
	Logger   svoray.Logger
	Profiler *Profiler

	World *svoray.World
	Chunk *core.Chunk

	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Buffers  *gpu.Manager
}

func NewApp(cfg svoray.Config, logger svoray.Logger) *App {
	if logger == nil {
		logger = svoray.NewNopLogger()
	}
	return &App{
		Config:   cfg,
		Logger:   logger,
		Profiler: NewProfiler(),
	}
}

// Load builds the world from the configured regions into the well-known palette.
func (a *App) Load() error {
	a.Profiler.Begin("assets")
	world, err := svoray.NewWorld(a.Config, core.DefaultMaterialPalette(), a.Logger)
	a.Profiler.End("assets")
	if err != nil {
		return err
	}
	a.World = world

	a.Profiler.Begin("regions")
	err = world.LoadRegions()
	a.Profiler.End("regions")
	if err != nil {
		return err
	}

	a.Chunk = world.Chunk()
	a.Profiler.SetCount("voxels", world.Stats.Voxels)
	a.Profiler.SetCount("substituted", world.Stats.Substituted)
	a.Profiler.SetCount("clipped", world.Stats.Clipped)
	a.Profiler.SetCount("octree nodes", world.Octree.NodeCount())
	return nil
}

// InitGPU opens a device without a surface.
func (a *App) InitGPU() error {
	a.Instance = wgpu.CreateInstance(nil)

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return err
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return err
	}
	a.Buffers = gpu.NewManager(a.Device, a.Config.Alignment)
	return nil
}

// Upload copies the chunk, the palette and any pending textures to the device.
func (a *App) Upload() error {
	if a.Buffers == nil || a.Chunk == nil {
		return fmt.Errorf("upload: gpu or world not initialized")
	}
	a.Profiler.Begin("upload")
	defer a.Profiler.End("upload")

	if _, err := a.Buffers.UploadChunk(a.Chunk); err != nil {
		return err
	}
	if err := a.Buffers.UploadPalette(a.World.Assets.Palette); err != nil {
		return err
	}
	if err := a.Buffers.SyncTextures(a.World.Assets.Textures); err != nil {
		return err
	}
	a.Logger.Infof("uploaded chunk %s (%d bytes), palette (%d bytes), textures %v",
		a.Chunk.ID, a.Chunk.SerializedSize(), a.Buffers.PaletteLayout.AlignedSize, a.Buffers.TextureExtent)
	return nil
}

// Export writes the serialized chunk and palette buffers into dir.
func (a *App) Export(dir string) error {
	if a.Chunk == nil {
		return fmt.Errorf("export: world not loaded")
	}
	a.Profiler.Begin("export")
	defer a.Profiler.End("export")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	chunk := a.Chunk.Serialize()
	if err := os.WriteFile(filepath.Join(dir, ChunkFile), chunk, 0o644); err != nil {
		return err
	}
	palette, layout := a.World.Assets.Palette.WriteBuffer(a.Config.Alignment)
	if err := os.WriteFile(filepath.Join(dir, PaletteFile), palette, 0o644); err != nil {
		return err
	}
	a.Logger.Infof("wrote %s: %d bytes, %s: %d bytes (materials at %d), extent %d",
		ChunkFile, len(chunk), PaletteFile, len(palette), layout.MaterialsOffset, a.Config.Extent)
	return nil
}

func (a *App) Release() {
	if a.Buffers != nil {
		a.Buffers.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
