package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linotype.toml")
	require.NoError(t, os.WriteFile(path, []byte("tab_stop_width = 4\nwrap_mode = \"char\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.TabStopWidth)
	require.Equal(t, "char", cfg.WrapMode)
	require.Equal(t, Default().QuantumUnits, cfg.QuantumUnits)
}
