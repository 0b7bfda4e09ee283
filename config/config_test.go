package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/cbindgen/generator"
)

var envKeys = []string{
	"CBINDGEN_RECORDS",
	"CBINDGEN_DEDUPE",
	"CBINDGEN_OPAQUE_THRESHOLD",
	"CBINDGEN_LOG_LEVEL",
	"CBINDGEN_LOG_FORMAT",
}

// isolate runs the test in an empty directory with none of the cbindgen
// variables set. Values set later, including by a .env file, are undone on
// cleanup.
func isolate(t *testing.T) string {
	t.Helper()

	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, int64(generator.DefaultOpaqueThreshold), cfg.OpaqueThreshold)
}

func TestLoadDefaultFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), "records = true\nopaque.threshold = 16\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Records)
	assert.Equal(t, int64(16), cfg.OpaqueThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.properties")
	writeFile(t, path, "# bindings\nlog.level = debug\nlog.format = json\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.Records)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.properties"))
	assert.Error(t, err)
}

func TestLoadUnknownKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.properties")
	writeFile(t, path, "record = true\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown key "record"`)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.properties")
	writeFile(t, path, "records = false\nopaque.threshold = 16\nlog.level = warn\n")

	t.Setenv("CBINDGEN_RECORDS", "true")
	t.Setenv("CBINDGEN_OPAQUE_THRESHOLD", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Records)
	assert.Equal(t, int64(4), cfg.OpaqueThreshold)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), "log.format = text\n")
	writeFile(t, filepath.Join(dir, ".env"), "CBINDGEN_LOG_FORMAT=json\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"log level", "log.level = loud\n"},
		{"log format", "log.format = xml\n"},
		{"negative threshold", "opaque.threshold = -1\n"},
		{"threshold not a number", "opaque.threshold = abc\n"},
		{"records not a bool", "records = maybe\n"},
		{"dedupe not a bool", "dedupe = sometimes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "cfg.properties")
			writeFile(t, path, tt.content)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CBINDGEN_OPAQUE_THRESHOLD", "lots"},
		{"CBINDGEN_RECORDS", "maybe"},
		{"CBINDGEN_DEDUPE", "2x"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadMalformedDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "CBINDGEN-RECORDS=true\n")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadZeroThreshold(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.properties")
	writeFile(t, path, "opaque.threshold = 0\ndedupe = true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.OpaqueThreshold)
	assert.True(t, cfg.Dedupe)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "WARN"
	assert.NoError(t, cfg.Validate())

	cfg.OpaqueThreshold = -1
	assert.Error(t, cfg.Validate())
}

func TestGeneratorOptions(t *testing.T) {
	cfg := Config{Records: true, OpaqueThreshold: 32, Dedupe: true, LogLevel: "info", LogFormat: "text"}
	assert.Equal(t, generator.Options{Records: true, OpaqueThreshold: 32, Dedupe: true}, cfg.GeneratorOptions())
}
