package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestLoad(t *testing.T) {
	t.Run("load ROM file", func(t *testing.T) {
		tmpFile := createTempFile(t, "pong.ch8", []byte{0x12, 0x34, 0x56, 0x78})

		loader := New(log.NewTestLogger(t))
		data, err := loader.Load(tmpFile)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, data)
	})

	t.Run("load ROM with unusual extension", func(t *testing.T) {
		tmpFile := createTempFile(t, "pong.bin", []byte{0x00, 0xE0})

		loader := New(log.NewTestLogger(t))
		data, err := loader.Load(tmpFile)
		assert.NoError(t, err)
		assert.Len(t, data, 2)
	})

	t.Run("load ROM filling the program area", func(t *testing.T) {
		tmpFile := createTempFile(t, "full.ch8", make([]byte, chip8.MaxROMSize))

		loader := New(log.NewTestLogger(t))
		data, err := loader.Load(tmpFile)
		assert.NoError(t, err)
		assert.Len(t, data, chip8.MaxROMSize)
	})

	t.Run("error on oversized ROM", func(t *testing.T) {
		tmpFile := createTempFile(t, "big.ch8", make([]byte, chip8.MaxROMSize+1))

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("error on empty ROM", func(t *testing.T) {
		tmpFile := createTempFile(t, "empty.ch8", nil)

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("error on non-existent file", func(t *testing.T) {
		loader := New(log.NewTestLogger(t))
		_, err := loader.Load("/nonexistent/file.ch8")
		assert.Error(t, err)
	})
}

func createTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}
