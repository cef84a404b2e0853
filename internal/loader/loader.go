// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Loader handles loading ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads a ROM image from disk and validates its size before any
// machine state is touched.
func (l *Loader) Load(path string) ([]byte, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".ch8" {
		l.logger.Warn("Unusual ROM file extension, expected .ch8",
			log.String("file", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("ROM file %s is empty", path)
	}
	if len(data) > chip8.MaxROMSize {
		return nil, fmt.Errorf("ROM file %s is too large: %d bytes do not fit the %d byte program area",
			path, len(data), chip8.MaxROMSize)
	}

	l.logger.Debug("Loaded ROM file",
		log.String("file", path),
		log.Int("size", len(data)))

	return data, nil
}
