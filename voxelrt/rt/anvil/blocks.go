package anvil

import (
	"github.com/gekko3d/svoray/voxelrt/rt/core"
)

type blockEntry struct {
	voxel core.Voxel
	skip  bool
}

// BlockTable maps block names to voxels. Names it does not know resolve to Default.
type BlockTable struct {
	Default core.Voxel
	entries map[string]blockEntry
}

func NewBlockTable(def core.Voxel) *BlockTable {
	return &BlockTable{
		Default: def,
		entries: make(map[string]blockEntry),
	}
}

func (t *BlockTable) Map(name string, v core.Voxel) {
	t.entries[name] = blockEntry{voxel: v}
}

// Skip marks name as not producing a voxel (air, decorative plants).
func (t *BlockTable) Skip(name string) {
	t.entries[name] = blockEntry{skip: true}
}

// Lookup resolves name. place is false for skipped blocks; known is false when
// Default was substituted.
func (t *BlockTable) Lookup(name string) (v core.Voxel, place bool, known bool) {
	e, ok := t.entries[name]
	if !ok {
		return t.Default, true, false
	}
	if e.skip {
		return core.Air, false, true
	}
	return e.voxel, true, true
}

func (t *BlockTable) Len() int {
	return len(t.entries)
}

// DefaultBlockTable colors overworld blocks with the palette colors of a
// single colored material.
func DefaultBlockTable(colored core.Voxel) *BlockTable {
	t := NewBlockTable(colored)
	for _, name := range []string{
		"minecraft:air",
		"minecraft:cave_air",
		"minecraft:grass",
		"minecraft:tall_grass",
	} {
		t.Skip(name)
	}
	for name, color := range map[string]uint8{
		"minecraft:stone":         3,
		"minecraft:granite":       3,
		"minecraft:gravel":        3,
		"minecraft:diorite":       3,
		"minecraft:iron_ore":      3,
		"minecraft:coal_ore":      3,
		"minecraft:andesite":      3,
		"minecraft:bedrock":       3,
		"minecraft:grass_block":   4,
		"minecraft:oak_log":       1,
		"minecraft:oak_leaves":    4,
		"minecraft:acacia_leaves": 4,
		"minecraft:dirt":          3,
		"minecraft:water":         1,
		"minecraft:sand":          2,
		"minecraft:lava":          3,
	} {
		t.Map(name, colored.WithColor(color))
	}
	return t
}
