package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("process", pflag.ContinueOnError)
	fs.String("paper", "A4", "")
	fs.String("glob", "*.xml", "")
	fs.Bool("recursive", false, "")
	fs.Bool("name-by-key", true, "")
	fs.String("excel", "", "")
	fs.Bool("no-excel", false, "")
	fs.Bool("verbose", false, "")
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "danfe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "A4", cfg.Geometry().Name)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, `
paper: 80mm
glob: "NFCe*.xml"
recursive: true
excel:
  path: out/itens.csv
logger:
  level: warn
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path, newFlags())
		require.NoError(t, err)
		assert.Equal(t, "80mm", cfg.Paper)
		assert.Equal(t, "NFCe*.xml", cfg.Glob)
		assert.True(t, cfg.Recursive)
		assert.True(t, cfg.NameByKey)
		assert.Equal(t, "out/itens.csv", cfg.Excel.Path)
		assert.Equal(t, "warn", cfg.Logger.Level)
		assert.Equal(t, "console", cfg.Logger.Format)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("DANFE_PAPER", "a4")
		t.Setenv("DANFE_LOGGER_LEVEL", "error")

		cfg, err := Load(path, newFlags())
		require.NoError(t, err)
		assert.Equal(t, "A4", cfg.Paper)
		assert.Equal(t, "error", cfg.Logger.Level)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("DANFE_PAPER", "a4")

		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"--paper", "80", "--no-excel", "--verbose"}))

		cfg, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "80mm", cfg.Paper)
		assert.False(t, cfg.Excel.Enabled)
		assert.Equal(t, "debug", cfg.Logger.Level)
	})
}

func TestLoadExcelFlagEnablesExport(t *testing.T) {
	path := writeFile(t, "excel:\n  enabled: false\n")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--excel", "itens.xlsx"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.True(t, cfg.Excel.Enabled)
	assert.Equal(t, "itens.xlsx", cfg.Excel.Path)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"paper":  "paper: letter\n",
		"glob":   "glob: \"[\"\n",
		"format": "logger:\n  format: xml\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body), nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "danfe.yaml")

	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false))
	require.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "custom.yaml", ResolvePath("custom.yaml", true))

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	assert.Equal(t, "", ResolvePath(DefaultPath, false))
	require.NoError(t, os.WriteFile(DefaultPath, []byte("paper: A4\n"), 0o644))
	assert.Equal(t, DefaultPath, ResolvePath(DefaultPath, false))
}
