package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProvidesABaseline(t *testing.T) {
	d := Default()
	require.NotNil(t, d.Backend)
	assert.Equal(t, "terminal", *d.Backend)
	require.NotNil(t, d.Scale)
	assert.Equal(t, 2, *d.Scale)
	require.NotNil(t, d.StrictHeader)
	assert.False(t, *d.StrictHeader)
}

func TestMergeFillsOnlyNilFields(t *testing.T) {
	top := Options{Backend: stringPtr("sdl2")}
	bottom := Default()

	merged := top.Merge(bottom)

	assert.Equal(t, "sdl2", *merged.Backend, "a field already set on the higher-priority layer must survive")
	assert.Equal(t, 2, *merged.Scale, "an unset field must be filled from the lower-priority layer")
}

func TestMergeOfTwoEmptyLayersStaysEmpty(t *testing.T) {
	merged := Options{}.Merge(Options{})
	assert.Nil(t, merged.Scale)
	assert.Nil(t, merged.Backend)
}

func TestRebaseRelativePathsOnlyTouchesRelativePaths(t *testing.T) {
	rel := "saves/game.sav"
	abs := "/already/absolute.sav"
	o := Options{SavePath: &rel, TracePath: &abs}

	o.RebaseRelativePaths("/home/user/configs")

	assert.Equal(t, filepath.Join("/home/user/configs", "saves/game.sav"), *o.SavePath)
	assert.Equal(t, "/already/absolute.sav", *o.TracePath)
}

func TestFromFileReturnsEmptyOptionsWhenMissing(t *testing.T) {
	o, err := FromFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Nil(t, o.Backend)
}

func TestFromFileParsesJSONAndRebasesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	payload, err := json.Marshal(map[string]any{
		"BootROMPath": "boot.bin",
		"Scale":       3,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	o, err := FromFile(path)
	require.NoError(t, err)

	require.NotNil(t, o.BootROMPath)
	assert.Equal(t, filepath.Join(dir, "boot.bin"), *o.BootROMPath)
	require.NotNil(t, o.Scale)
	assert.Equal(t, 3, *o.Scale)
}

func TestFromEnvReadsPrefixedVariables(t *testing.T) {
	t.Setenv("DMGCORE_BACKEND", "headless")
	t.Setenv("DMGCORE_SCALE", "5")
	t.Setenv("DMGCORE_STRICT_HEADER", "true")

	o := FromEnv()

	require.NotNil(t, o.Backend)
	assert.Equal(t, "headless", *o.Backend)
	require.NotNil(t, o.Scale)
	assert.Equal(t, 5, *o.Scale)
	require.NotNil(t, o.StrictHeader)
	assert.True(t, *o.StrictHeader)
}

func TestFromEnvIgnoresUnsetVariables(t *testing.T) {
	o := FromEnv()
	assert.Nil(t, o.Backend)
	assert.Nil(t, o.Scale)
}

func TestCascadeOrderMatchesPriority(t *testing.T) {
	cli := Options{Scale: intPtr(1)}
	env := Options{Scale: intPtr(2), Backend: stringPtr("sdl2")}
	file := Options{Backend: stringPtr("terminal"), LogLevel: stringPtr("debug")}

	merged := cli.Merge(env).Merge(file).Merge(Default())

	assert.Equal(t, 1, *merged.Scale, "cli wins over env")
	assert.Equal(t, "sdl2", *merged.Backend, "env wins over file")
	assert.Equal(t, "debug", *merged.LogLevel, "file wins over default")
	assert.False(t, *merged.StrictHeader, "default fills in anything nobody else set")
}
