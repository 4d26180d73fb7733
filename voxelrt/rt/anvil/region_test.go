package anvil

import (
	"bytes"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save/region"
	"github.com/gekko3d/svoray/voxelrt/rt/core"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeChunk(t *testing.T, compression byte, chunk map[string]any) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(compression)
	switch compression {
	case CompressionGzip:
		w := gzip.NewWriter(&buf)
		require.NoError(t, nbt.NewEncoder(w).Encode(chunk, ""))
		require.NoError(t, w.Close())
	case CompressionZlib:
		w := zlib.NewWriter(&buf)
		require.NoError(t, nbt.NewEncoder(w).Encode(chunk, ""))
		require.NoError(t, w.Close())
	default:
		require.NoError(t, nbt.NewEncoder(&buf).Encode(chunk, ""))
	}
	return buf.Bytes()
}

func legacyStoneChunk(sectionY int8) map[string]any {
	states := make([]int64, 64)
	for i := range states {
		states[i] = -1
	}
	return map[string]any{
		"DataVersion": int32(2230),
		"Level": map[string]any{
			"xPos": int32(0),
			"zPos": int32(0),
			"Sections": []map[string]any{
				{"Y": int8(-1)},
				{
					"Y": sectionY,
					"Palette": []map[string]any{
						{"Name": "minecraft:air"},
						{"Name": "minecraft:stone"},
					},
					"BlockStates": states,
				},
			},
		},
	}
}

func modernChunk() map[string]any {
	return map[string]any{
		"DataVersion": int32(3465),
		"sections": []map[string]any{
			{
				"Y": int8(0),
				"block_states": map[string]any{
					"palette": []map[string]any{{"Name": "minecraft:sand"}},
				},
			},
		},
	}
}

func TestLoadChunkCompressions(t *testing.T) {
	blocks, colored := testTable()
	loader := NewLoader(blocks, 1024)

	for _, compression := range []byte{CompressionGzip, CompressionZlib, CompressionUncompressed} {
		sink := &recordingSink{}
		stats, err := loader.LoadChunk(encodeChunk(t, compression, legacyStoneChunk(2)), Placement{Extent: 1024}, sink)
		require.NoError(t, err, "compression %d", compression)
		assert.Equal(t, 1, stats.Chunks)
		assert.Equal(t, 1, stats.Sections)
		assert.Equal(t, SectionVolume, stats.Voxels)
		assert.Equal(t, colored.WithColor(3), sink.sets[0].v)
		assert.Equal(t, uint32(32), sink.sets[0].y)
	}
}

func TestLoadChunkModernLayout(t *testing.T) {
	blocks, colored := testTable()
	loader := NewLoader(blocks, 1024)
	sink := &recordingSink{}
	stats, err := loader.LoadChunk(encodeChunk(t, CompressionZlib, modernChunk()), Placement{Extent: 1024}, sink)
	require.NoError(t, err)
	assert.Equal(t, SectionVolume, stats.Voxels)
	assert.Equal(t, colored.WithColor(2), sink.sets[0].v)
}

func TestLoadChunkBadCompression(t *testing.T) {
	blocks, _ := testTable()
	_, err := NewLoader(blocks, 16).LoadChunk([]byte{9, 0, 0}, Placement{Extent: 16}, &recordingSink{})
	require.ErrorIs(t, err, ErrCompression)
}

func TestLoadRegion(t *testing.T) {
	dir := t.TempDir()
	path := RegionPath(dir, 1, 0)

	r, err := region.Create(path)
	require.NoError(t, err)
	require.NoError(t, r.WriteSector(0, 0, encodeChunk(t, CompressionZlib, legacyStoneChunk(0))))
	require.NoError(t, r.WriteSector(3, 2, encodeChunk(t, CompressionGzip, legacyStoneChunk(1))))
	require.NoError(t, r.Close())

	blocks, colored := testTable()
	octree := core.NewVoxelOctree()
	loader := NewLoader(blocks, 1024)
	stats, err := loader.LoadRegion(path, 1, 0, octree)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Sections)
	assert.Equal(t, 2*SectionVolume, stats.Voxels)

	stone := colored.WithColor(3)
	assert.Equal(t, stone, octree.Get(512, 0, 0))
	assert.Equal(t, stone, octree.Get(512+15, 15, 15))
	assert.Equal(t, core.Air, octree.Get(512, 16, 0))
	assert.Equal(t, stone, octree.Get(512+3*16, 16, 2*16))
	assert.Equal(t, core.Air, octree.Get(0, 0, 0))
}

func TestLoadRegionMissingFile(t *testing.T) {
	blocks, _ := testTable()
	_, err := NewLoader(blocks, 1024).LoadRegion(RegionPath(t.TempDir(), 0, 0), 0, 0, core.NewVoxelOctree())
	require.Error(t, err)
}

func TestRegionPath(t *testing.T) {
	assert.Equal(t, "world/region/r.-1.2.mca", RegionPath("world/region", -1, 2))
}
