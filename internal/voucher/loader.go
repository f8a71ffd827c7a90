package voucher

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped voucher files from the
// local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based voucher loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "voucher-loader").Logger(),
	}
}

// Load reads a gzipped voucher file and returns a Set. The file is expected
// to contain one voucher code per line.
func (l *fileLoader) Load(ctx context.Context, path string) (Set, error) {
	l.logger.Info().Str("file", path).Msg("loading voucher file")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open voucher file %s: %w", path, err)
	}
	defer file.Close()

	set, err := readCodes(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read voucher file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("codes_loaded", set.Size()).
		Msg("voucher file loaded")

	return set, nil
}

// readCodes decompresses and scans a gzipped voucher stream into a set.
// Shared by the file and S3 loaders.
func readCodes(ctx context.Context, r io.Reader) (Set, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	set := NewMapSet(1024).(*mapSet)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineCount := 0
	for scanner.Scan() {
		// Check context cancellation periodically
		if lineCount%100_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			set.Add(line)
			lineCount++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning voucher codes: %w", err)
	}

	return set, nil
}
