package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cedar.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"policies: policies.cedar\nentities: entities.json\nschema: schema.json\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "policies.cedar", cfg.Policies)
		assert.Equal(t, "entities.json", cfg.Entities)
		assert.Equal(t, "schema.json", cfg.Schema)
	})

	t.Run("explicit file missing is an error", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing default is not an error", func(t *testing.T) {
		chdir(t, t.TempDir())
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("default is picked up from the working directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile),
			[]byte("policies: p.cedar\n"), 0o600))
		chdir(t, dir)

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "p.cedar", cfg.Policies)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cedar.yaml")
		require.NoError(t, os.WriteFile(path, []byte("policies: [\n"), 0o600))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "cedar.yaml")
	})
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "flag.cedar", resolvePath("flag.cedar", "config.cedar"))
	assert.Equal(t, "config.cedar", resolvePath("", "config.cedar"))
	assert.Equal(t, "", resolvePath("", ""))
}

// chdir switches the working directory for one test and restores it
// afterwards, so these tests cannot run in parallel.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}
