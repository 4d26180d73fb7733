package svoray

import (
	"fmt"
	"path/filepath"

	"github.com/gekko3d/svoray/voxelrt/rt/anvil"
	"github.com/gekko3d/svoray/voxelrt/rt/core"
)

// Assets is the material palette, its textures and the block mapping built from a Config.
type Assets struct {
	Palette  *core.MaterialPalette
	Textures *core.TextureRepo
	Blocks   *anvil.BlockTable

	loaded map[string]core.TextureHandle
	dir    string
}

// LoadAssets registers every configured material into palette, or into a
// fresh palette when it is nil. Textures are decoded eagerly and queued in
// Textures until the GPU side drains them.
func LoadAssets(cfg Config, palette *core.MaterialPalette, logger Logger) (*Assets, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	if palette == nil {
		palette = core.NewMaterialPalette()
	}
	a := &Assets{
		Palette:  palette,
		Textures: core.NewTextureRepo(cfg.TextureWidth, cfg.TextureHeight),
		loaded:   make(map[string]core.TextureHandle),
		dir:      cfg.AssetDir,
	}

	for _, mc := range cfg.ColoredMaterials {
		m, err := a.material(mc.MaterialConfig)
		if err != nil {
			return nil, err
		}
		cm, err := coloredMaterial(m, mc)
		if err != nil {
			return nil, err
		}
		v := a.Palette.AddColoredMaterial(cm)
		logger.Debugf("colored material %q -> %v", m.Name, v)
	}
	for _, mc := range cfg.Materials {
		m, err := a.material(mc)
		if err != nil {
			return nil, err
		}
		v := a.Palette.AddMaterial(m)
		logger.Debugf("material %q -> %v", m.Name, v)
	}

	blocks, err := a.blockTable(cfg)
	if err != nil {
		return nil, err
	}
	a.Blocks = blocks
	logger.Infof("palette: %d colored materials, %d materials, %d textures, %d block mappings",
		len(a.Palette.ColoredMaterials), len(a.Palette.Materials), a.Textures.Len(), blocks.Len())
	return a, nil
}

func (a *Assets) texture(path string) (core.TextureHandle, error) {
	if path == "" {
		return core.NoTexture, nil
	}
	if h, ok := a.loaded[path]; ok {
		return h, nil
	}
	full := path
	if a.dir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(a.dir, path)
	}
	h, err := a.Textures.Load(full)
	if err != nil {
		return core.NoTexture, err
	}
	a.loaded[path] = h
	return h, nil
}

func (a *Assets) material(mc MaterialConfig) (core.Material, error) {
	diffuse, err := a.texture(mc.Diffuse)
	if err != nil {
		return core.Material{}, fmt.Errorf("material %q: %w", mc.Name, err)
	}
	normal, err := a.texture(mc.Normal)
	if err != nil {
		return core.Material{}, fmt.Errorf("material %q: %w", mc.Name, err)
	}
	m := core.NewMaterial(mc.Name, mc.Scale, diffuse)
	m.Normal = normal
	return m, nil
}

func coloredMaterial(m core.Material, mc ColoredMaterialConfig) (core.ColoredMaterial, error) {
	fill := core.Black
	if mc.Color != "" {
		c, err := core.ColorFromHex(mc.Color)
		if err != nil {
			return core.ColoredMaterial{}, fmt.Errorf("material %q: %w", mc.Name, err)
		}
		fill = c
	}
	cm := core.UniformColoredMaterial(m, fill)
	for i, hex := range mc.Colors {
		if i < 0 || i >= core.PaletteColors {
			return cm, fmt.Errorf("material %q: color index %d out of range", mc.Name, i)
		}
		c, err := core.ColorFromHex(hex)
		if err != nil {
			return cm, fmt.Errorf("material %q: %w", mc.Name, err)
		}
		cm.Palette[i] = c
	}
	return cm, nil
}

// blockTable uses the stock overworld mapping when no blocks are configured.
func (a *Assets) blockTable(cfg Config) (*anvil.BlockTable, error) {
	def, ok := a.Palette.Lookup(cfg.DefaultBlock)
	if !ok {
		return nil, fmt.Errorf("default block material %q is not registered", cfg.DefaultBlock)
	}
	if len(cfg.Blocks) == 0 {
		if !def.IsColored() {
			return nil, fmt.Errorf("default block material %q must be a colored material", cfg.DefaultBlock)
		}
		return anvil.DefaultBlockTable(def), nil
	}

	table := anvil.NewBlockTable(def)
	for name, b := range cfg.Blocks {
		if b.Skip {
			table.Skip(name)
			continue
		}
		v, ok := a.Palette.Lookup(b.Material)
		if !ok {
			return nil, fmt.Errorf("block %s: unknown material %q", name, b.Material)
		}
		if b.Color != nil {
			if !v.IsColored() {
				return nil, fmt.Errorf("block %s: material %q has no color table", name, b.Material)
			}
			v = v.WithColor(*b.Color)
		}
		table.Map(name, v)
	}
	return table, nil
}
