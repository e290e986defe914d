package compress

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestCompress_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "full_backup_20250314_092653.sql")
	content := strings.Repeat("INSERT INTO t VALUES (1);\n", 1000)
	require.NoError(t, os.WriteFile(input, []byte(content), 0o600))

	outputPath, err := New(testLogger()).Compress(input)

	require.NoError(t, err)
	assert.Equal(t, input+Extension, outputPath)

	// Original is gone
	_, statErr := os.Stat(input)
	assert.True(t, os.IsNotExist(statErr))

	// Compressed content decodes back to the original
	compressed, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(content))

	decoder, err := zstd.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	defer decoder.Close()

	decompressed, err := io.ReadAll(decoder)
	require.NoError(t, err)
	assert.Equal(t, content, string(decompressed))
}

func TestCompress_MissingInput(t *testing.T) {
	_, err := New(testLogger()).Compress(filepath.Join(t.TempDir(), "nope.sql"))
	assert.Error(t, err)
}

func TestCompress_FailureLeavesNoPartialArtifact(t *testing.T) {
	// A directory opens fine but cannot be read as a stream, forcing
	// the copy to fail mid-compression.
	dir := t.TempDir()
	input := filepath.Join(dir, "full_backup_20250314_092653.sql")
	require.NoError(t, os.Mkdir(input, 0o750))

	_, err := New(testLogger()).Compress(input)

	require.Error(t, err)
	_, statErr := os.Stat(input + Extension)
	assert.True(t, os.IsNotExist(statErr))
}
