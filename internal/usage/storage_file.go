package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage keeps the aggregate as a JSON file, written atomically via a
// temp file rename.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load(_ context.Context) (*Stats, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read usage file: %w", err)
	}
	stats := NewStats()
	if err := json.Unmarshal(data, stats); err != nil {
		return nil, fmt.Errorf("parse usage file: %w", err)
	}
	return stats, nil
}

func (f *FileStorage) Save(_ context.Context, stats *Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode usage stats: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create usage directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".usage-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStorage) Close() error { return nil }
