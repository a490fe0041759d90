package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileGateway stores each key as a zstd-compressed file in one directory.
// Writes go through a temp file and rename so a crash never leaves a torn
// payload behind.
type FileGateway struct {
	dir        string
	compressor CompressorInterface
	mu         sync.Mutex
}

func NewFileGateway(dir string, compressor CompressorInterface) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileGateway{dir: dir, compressor: compressor}, nil
}

func (f *FileGateway) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".dat"), nil
}

func (f *FileGateway) Get(_ context.Context, key string) (string, bool, error) {
	fileName, err := f.path(key)
	if err != nil {
		return "", false, err
	}

	f.mu.Lock()
	data, err := os.ReadFile(fileName)
	f.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return string(decompressed), true, nil
}

func (f *FileGateway) Set(_ context.Context, key string, value string) error {
	fileName, err := f.path(key)
	if err != nil {
		return err
	}

	data, err := f.compressor.Compress([]byte(value))
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileGateway) Remove(_ context.Context, key string) error {
	fileName, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(fileName); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileGateway) Close() error {
	return nil
}

var _ GatewayInterface = (*FileGateway)(nil)
