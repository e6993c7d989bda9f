package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, -1, cfg.Extract.MaxLength)
	assert.Equal(t, "UTF-8", cfg.Extract.Encoding)
	assert.False(t, cfg.Extract.XMLOutput)
	assert.True(t, cfg.Extract.ExtractEmbedded)
	assert.Equal(t, "AUTO", cfg.Extract.PdfOcrStrategy)

	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, 300, cfg.OCR.Density)
	assert.Equal(t, 120, cfg.OCR.TimeoutSeconds)

	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	content := `
jvm:
  classpath: /opt/tika/libs
extract:
  max_length: 5000
  xml_output: true
ocr:
  language: eng+chi_sim
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "extractous.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/tika/libs", cfg.JVM.Classpath)
	assert.Equal(t, 5000, cfg.Extract.MaxLength)
	assert.True(t, cfg.Extract.XMLOutput)
	assert.Equal(t, "eng+chi_sim", cfg.OCR.Language)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 未在文件里出现的项保持默认值
	assert.Equal(t, "UTF-8", cfg.Extract.Encoding)
	assert.Equal(t, 300, cfg.OCR.Density)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("EXTRACTOUS_OCR_LANGUAGE", "deu")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "deu", cfg.OCR.Language)
}
