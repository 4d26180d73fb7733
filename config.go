package svoray

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"
)

type RegionCoord struct {
	X int `yaml:"x" json:"x"`
	Z int `yaml:"z" json:"z"`
}

type MaterialConfig struct {
	Name  string  `yaml:"name" json:"name"`
	Scale float32 `yaml:"scale" json:"scale"`
	// Diffuse and Normal are texture paths relative to AssetDir.
	Diffuse string `yaml:"diffuse" json:"diffuse"`
	Normal  string `yaml:"normal" json:"normal"`
}

type ColoredMaterialConfig struct {
	MaterialConfig `yaml:",inline"`
	// Color fills the whole table; Colors overrides single entries. Both are #rrggbb.
	Color  string         `yaml:"color" json:"color"`
	Colors map[int]string `yaml:"colors" json:"colors"`
}

// BlockConfig maps one block name to a material, optionally with a palette color.
type BlockConfig struct {
	Material string `yaml:"material" json:"material"`
	Color    *uint8 `yaml:"color" json:"color"`
	Skip     bool   `yaml:"skip" json:"skip"`
}

type Config struct {
	RegionDir string        `yaml:"region_dir" json:"region_dir"`
	Regions   []RegionCoord `yaml:"regions" json:"regions"`
	// Extent is the power-of-two edge length of the world octree.
	Extent uint32 `yaml:"extent" json:"extent"`
	YShift int    `yaml:"y_shift" json:"y_shift"`

	AssetDir      string `yaml:"asset_dir" json:"asset_dir"`
	TextureWidth  uint32 `yaml:"texture_width" json:"texture_width"`
	TextureHeight uint32 `yaml:"texture_height" json:"texture_height"`
	// Alignment is the GPU storage/copy alignment for the palette buffer.
	Alignment int `yaml:"alignment" json:"alignment"`

	LogPrefix string `yaml:"log_prefix" json:"log_prefix"`
	Debug     bool   `yaml:"debug" json:"debug"`

	ColoredMaterials []ColoredMaterialConfig `yaml:"colored_materials" json:"colored_materials"`
	Materials        []MaterialConfig        `yaml:"materials" json:"materials"`
	// DefaultBlock names the material used for unmapped block names.
	DefaultBlock string                 `yaml:"default_block" json:"default_block"`
	Blocks       map[string]BlockConfig `yaml:"blocks" json:"blocks"`
}

// DefaultConfig is the four-region overworld setup with the stock texture set.
func DefaultConfig() Config {
	return Config{
		RegionDir: "region",
		Regions: []RegionCoord{
			{X: 1, Z: 0},
			{X: 0, Z: 0},
			{X: 1, Z: 1},
			{X: 0, Z: 1},
		},
		Extent:        1024,
		AssetDir:      "assets",
		TextureWidth:  512,
		TextureHeight: 512,
		Alignment:     256,
		LogPrefix:     "svoray",
		ColoredMaterials: []ColoredMaterialConfig{
			{
				MaterialConfig: MaterialConfig{Name: "PlainColor"},
				Color:          "#000000",
				Colors: map[int]string{
					1: "#0000ff",
					2: "#ffff00",
					3: "#ff0000",
					4: "#00ff00",
				},
			},
			{
				MaterialConfig: MaterialConfig{Name: "grass", Scale: 1, Diffuse: "textures/grass.png"},
				Color:          "#00ff00",
			},
			{
				MaterialConfig: MaterialConfig{Name: "leaves", Scale: 1, Diffuse: "textures/leaves_oak.png"},
				Color:          "#00ff00",
			},
		},
		Materials: []MaterialConfig{
			{Name: "stone", Scale: 1, Diffuse: "textures/stone.png"},
			{Name: "log", Scale: 1, Diffuse: "textures/log_oak.png"},
			{Name: "dirt", Scale: 1, Diffuse: "textures/dirt.png"},
			{Name: "sand", Scale: 1, Diffuse: "textures/sand.png"},
		},
		DefaultBlock: "PlainColor",
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON with comments (.json, .jsonc)
// file over DefaultConfig. Lists in the file replace the default lists whole.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return def, err
	}

	// encoding/json decodes array elements over existing ones, so the lists
	// start empty and the defaults are restored where the file has none.
	cfg := def
	cfg.Regions, cfg.ColoredMaterials, cfg.Materials = nil, nil, nil
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json", ".jsonc":
		err = jsonc.Unmarshal(data, &cfg)
	default:
		return def, fmt.Errorf("config %s: unknown format", path)
	}
	if err != nil {
		return def, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Regions == nil {
		cfg.Regions = def.Regions
	}
	if cfg.ColoredMaterials == nil {
		cfg.ColoredMaterials = def.ColoredMaterials
	}
	if cfg.Materials == nil {
		cfg.Materials = def.Materials
	}
	return cfg, cfg.Validate()
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && bits.OnesCount64(n) == 1
}

func (c *Config) Validate() error {
	var errs []error
	if !isPowerOfTwo(uint64(c.Extent)) {
		errs = append(errs, fmt.Errorf("extent %d is not a power of two", c.Extent))
	}
	if c.Alignment <= 0 || !isPowerOfTwo(uint64(c.Alignment)) {
		errs = append(errs, fmt.Errorf("alignment %d is not a power of two", c.Alignment))
	}
	if c.TextureWidth == 0 || c.TextureHeight == 0 {
		errs = append(errs, fmt.Errorf("texture size %dx%d is empty", c.TextureWidth, c.TextureHeight))
	}
	if len(c.ColoredMaterials) > 128 {
		errs = append(errs, fmt.Errorf("%d colored materials, at most 128", len(c.ColoredMaterials)))
	}
	for name, b := range c.Blocks {
		if !b.Skip && b.Material == "" {
			errs = append(errs, fmt.Errorf("block %s has no material", name))
		}
	}
	return errors.Join(errs...)
}
