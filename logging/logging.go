// Package logging sets up the process-wide logger. The terminal belongs to
// the board, so log output always goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init points the global zerolog logger at path. With debug set, debug
// events are kept; otherwise only info and above. An empty path disables
// logging. The returned closer releases the file.
func Init(path string, debug bool) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if path == "" {
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(f).Level(level).With().Timestamp().Logger()
	return f, nil
}
