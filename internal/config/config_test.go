package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, int64(50<<20), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 200, cfg.Raster.DPI)
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagesift.toml")
	content := `
addr = ":9100"
upload_dir = "/var/lib/pagesift/uploads"

[ocr]
languages = ["kor", "eng"]
dpi = 300

[raster]
dpi = 150

[limits]
max_upload_bytes = 1048576
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, "/var/lib/pagesift/uploads", cfg.UploadDir)
	assert.Equal(t, []string{"kor", "eng"}, cfg.OCR.Languages)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 150, cfg.Raster.DPI)
	assert.Equal(t, int64(1048576), cfg.Limits.MaxUploadBytes)
	// Untouched fields keep defaults.
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PAGESIFT_ADDR", ":7777")
	t.Setenv("PAGESIFT_OCR_LANGUAGES", "kor, jpn")
	t.Setenv("PAGESIFT_MAX_UPLOAD_BYTES", "2048")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Addr)
	assert.Equal(t, []string{"kor", "jpn"}, cfg.OCR.Languages)
	assert.Equal(t, int64(2048), cfg.Limits.MaxUploadBytes)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("PAGESIFT_MAX_UPLOAD_BYTES", "-1")
	_, err := Load("")
	assert.Error(t, err)
}

func TestEnsureDirsAndDatabasePath(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.DataDir = filepath.Join(base, "data")
	cfg.UploadDir = filepath.Join(base, "uploads")

	require.NoError(t, cfg.EnsureDirs())
	for _, dir := range []string{cfg.DataDir, cfg.UploadDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(cfg.DataDir, "history.db"), cfg.DatabasePath())
}
