package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readGolden(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunSample(t *testing.T) {
	var stdout, stderr bytes.Buffer
	status := run([]string{"testdata/sample.h"}, &stdout, &stderr)

	require.Equal(t, 0, status, stderr.String())
	assert.Equal(t, readGolden(t, "testdata/sample.scm"), stdout.String())

	diags := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	assert.Equal(t, []string{
		"Cannot translate the function calc_printf: Variadic function",
		"Cannot translate the function calc_origin: Type error",
		"Cannot translate the function calc_move: Type error",
		"Cannot translate the function calc_precise: Type error",
	}, diags)
}

func TestRunRecords(t *testing.T) {
	var stdout, stderr bytes.Buffer
	status := run([]string{"--records", "testdata/sample.h"}, &stdout, &stderr)

	require.Equal(t, 0, status, stderr.String())
	assert.Equal(t, readGolden(t, "testdata/sample_records.scm"), stdout.String())
}

func TestRunParseFailureIsolated(t *testing.T) {
	var stdout, stderr bytes.Buffer
	status := run([]string{"testdata/sample.h", "testdata/broken.h", "testdata/sample.h"}, &stdout, &stderr)

	assert.Equal(t, 1, status)

	// The broken file contributes nothing, not even the declaration that
	// parsed before the error.
	golden := readGolden(t, "testdata/sample.scm")
	assert.Equal(t, golden+golden, stdout.String())
	assert.NotContains(t, stdout.String(), "(define ok")
	assert.Contains(t, stderr.String(), "broken.h:2")
}

func TestRunDeterministic(t *testing.T) {
	var first, second, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-r", "testdata/sample.h"}, &first, &stderr))
	require.Equal(t, 0, run([]string{"-r", "testdata/sample.h"}, &second, &stderr))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "FILE")

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "--records")
}

func TestRunMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	status := run([]string{"-c", "testdata/missing.properties", "testdata/sample.h"}, &stdout, &stderr)

	assert.Equal(t, 1, status)
	assert.Empty(t, stdout.String())
}

func TestRunDedupe(t *testing.T) {
	var stdout, stderr bytes.Buffer
	status := run([]string{"--dedupe", "testdata/sample.h"}, &stdout, &stderr)

	require.Equal(t, 0, status, stderr.String())
	assert.Equal(t, 1, strings.Count(stdout.String(), "(define calc-free\n"))

	stdout.Reset()
	require.Equal(t, 0, run([]string{"testdata/sample.h"}, &stdout, &stderr))
	assert.Equal(t, 2, strings.Count(stdout.String(), "(define calc-free\n"))
}

func TestRunOpaqueThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.h")
	require.NoError(t, os.WriteFile(path, []byte("struct tiny { char c; };\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-r", path}, &stdout, &stderr))
	assert.Empty(t, stdout.String())

	require.Equal(t, 0, run([]string{"-r", "--opaque-threshold", "0", path}, &stdout, &stderr))
	assert.Equal(t, "(define-foreign-record-type (tiny \"tiny\")\n  (char tiny-c tiny-c-set!))\n", stdout.String())
}
