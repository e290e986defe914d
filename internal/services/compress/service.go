// Package compress shrinks backup artifacts with zstd.
package compress

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

// Extension is appended to compressed artifact names.
const Extension = ".zst"

// Service defines the interface for artifact compression.
type Service interface {
	Compress(inputPath string) (string, error)
}

// Impl implements the compress Service using zstd.
type Impl struct {
	logger zerolog.Logger
}

// New creates a new compress service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{logger: logger}
}

// Compress writes inputPath compressed to inputPath+".zst" and removes
// the original on success. It returns the compressed path.
func (s *Impl) Compress(inputPath string) (string, error) {
	outputPath := inputPath + Extension

	in, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer out.Close()

	writer, err := zstd.NewWriter(out)
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}

	if _, err := io.Copy(writer, in); err != nil {
		writer.Close()
		// Leave no truncated artifact behind
		_ = os.Remove(outputPath)
		return "", fmt.Errorf("compressing %s: %w", inputPath, err)
	}
	if err := writer.Close(); err != nil {
		_ = os.Remove(outputPath)
		return "", fmt.Errorf("flushing %s: %w", outputPath, err)
	}

	if err := os.Remove(inputPath); err != nil {
		return "", fmt.Errorf("removing original %s: %w", inputPath, err)
	}

	s.logger.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Msg("artifact compressed")

	return outputPath, nil
}
