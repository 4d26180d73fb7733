package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyWorldConfig loads no regions and no textures.
func emptyWorldConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	content := "region_dir: " + dir + "\n" +
		"regions: []\n" +
		"materials: []\n" +
		"colored_materials: [{name: PlainColor, color: \"#000000\"}]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunExportsBuffers(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	assert.Equal(t, 0, run([]string{"-config", emptyWorldConfig(t), "-out", out}))
	assert.FileExists(t, filepath.Join(out, "chunk.bin"))
	assert.FileExists(t, filepath.Join(out, "palette.bin"))
}

func TestRunReturnsExitCodes(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-nosuchflag"}))
	assert.Equal(t, 1, run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}))

	// a failure after the app is built returns instead of exiting the process
	blocked := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocked, nil, 0o644))
	assert.Equal(t, 1, run([]string{"-config", emptyWorldConfig(t), "-out", blocked}))
}
