package svoray

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func expectedOverrides() Config {
	green := uint8(4)
	want := DefaultConfig()
	want.RegionDir = "/srv/world/region"
	want.Regions = []RegionCoord{{X: 0, Z: 0}, {X: -1, Z: 2}}
	want.Extent = 2048
	want.YShift = 64
	want.Debug = true
	want.Blocks = map[string]BlockConfig{
		"minecraft:stone":       {Material: "stone"},
		"minecraft:air":         {Skip: true},
		"minecraft:grass_block": {Material: "PlainColor", Color: &green},
	}
	return want
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "world.yaml", `
# overrides only; everything else keeps its default
region_dir: /srv/world/region
regions:
  - {x: 0, z: 0}
  - {x: -1, z: 2}
extent: 2048
y_shift: 64
debug: true
blocks:
  "minecraft:stone": {material: stone}
  "minecraft:air": {skip: true}
  "minecraft:grass_block": {material: PlainColor, color: 4}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	if diff := cmp.Diff(expectedOverrides(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigJSONC(t *testing.T) {
	path := writeFile(t, "world.jsonc", `{
	// same overrides as the YAML case
	"region_dir": "/srv/world/region",
	"regions": [{"x": 0, "z": 0}, {"x": -1, "z": 2}],
	"extent": 2048,
	"y_shift": 64,
	"debug": true, /* verbose */
	"blocks": {
		"minecraft:stone": {"material": "stone"},
		"minecraft:air": {"skip": true},
		"minecraft:grass_block": {"material": "PlainColor", "color": 4}
	}
}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	if diff := cmp.Diff(expectedOverrides(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigColoredMaterials(t *testing.T) {
	path := writeFile(t, "palette.yml", `
colored_materials:
  - name: Glass
    scale: 0.5
    color: "#ffffff"
    colors: {7: "#ff0000"}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.ColoredMaterials, 1)
	cm := cfg.ColoredMaterials[0]
	assert.Equal(t, "Glass", cm.Name)
	assert.Equal(t, float32(0.5), cm.Scale)
	assert.Equal(t, "#ffffff", cm.Color)
	assert.Equal(t, map[int]string{7: "#ff0000"}, cm.Colors)
	assert.Len(t, cfg.Materials, 4, "materials keep their defaults")
}

func TestLoadConfigListsReplaceDefaults(t *testing.T) {
	for _, tc := range []struct{ name, content string }{
		{"partial.jsonc", `{
			// entries must not pick up fields of the default entry at the same index
			"materials": [{"name": "foo"}],
			"colored_materials": [{"name": "bar"}]
		}`},
		{"partial.yaml", "materials: [{name: foo}]\ncolored_materials: [{name: bar}]\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, tc.name, tc.content))
			require.NoError(t, err)
			assert.Equal(t, []MaterialConfig{{Name: "foo"}}, cfg.Materials)
			assert.Equal(t, []ColoredMaterialConfig{{MaterialConfig: MaterialConfig{Name: "bar"}}}, cfg.ColoredMaterials)
			assert.Equal(t, DefaultConfig().Regions, cfg.Regions)
		})
	}
}

func TestLoadConfigEmptyList(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "none.json", `{"materials": []}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Materials)
	assert.Len(t, cfg.ColoredMaterials, 3)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "world.toml", "extent = 1024"))
	assert.ErrorContains(t, err, "unknown format")

	_, err = LoadConfig(writeFile(t, "bad.yaml", "extent: [1, 2"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "extent: 1000\nalignment: 3"))
	assert.ErrorContains(t, err, "extent 1000 is not a power of two")
	assert.ErrorContains(t, err, "alignment 3 is not a power of two")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.TextureWidth = 0
	assert.ErrorContains(t, cfg.Validate(), "texture size 0x512")

	cfg = DefaultConfig()
	cfg.Blocks = map[string]BlockConfig{"minecraft:stone": {}}
	assert.ErrorContains(t, cfg.Validate(), "block minecraft:stone has no material")

	cfg = DefaultConfig()
	cfg.ColoredMaterials = make([]ColoredMaterialConfig, 129)
	assert.Error(t, cfg.Validate())
}
