package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const fileExt = ".zst"

// File stores each key as a zstd compressed file in a single directory.
// Writes go to a temp file first and are renamed into place, so a reader
// never sees a partial value.
type File struct {
	dir string

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu sync.RWMutex
}

// NewFile creates the directory if needed and returns a store rooted there.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &File{dir: dir, encoder: enc, decoder: dec}, nil
}

// Dir returns the directory holding the store files.
func (f *File) Dir() string { return f.dir }

// Path returns the file that backs key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

// Get reads and decompresses the value stored under key.
func (f *File) Get(key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	value, err := f.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", key, err)
	}
	return value, nil
}

// Put compresses value and atomically replaces the file for key.
func (f *File) Put(key string, value []byte) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	compressed := f.encoder.EncodeAll(value, nil)

	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, f.Path(key)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key. Missing keys are ignored.
func (f *File) Delete(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close releases the compression resources.
func (f *File) Close() error {
	f.decoder.Close()
	return f.encoder.Close()
}
