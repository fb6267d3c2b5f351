package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one file per key inside Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, strings.ReplaceAll(key, ":", "_"))
}

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	values, err := encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// the lyrics key marks a complete snapshot, so it is written last
	for _, key := range []string{KeySong, KeySRT, KeyLyrics} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeAtomic(s.path(key), values[key]); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	values := make(map[string][]byte, 3)
	for _, key := range []string{KeyLyrics, KeySong, KeySRT} {
		data, err := os.ReadFile(s.path(key))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Snapshot{}, fmt.Errorf("failed to read %s: %w", key, err)
		}
		values[key] = data
	}
	return decode(values)
}

func (s *FileStore) Clear(ctx context.Context) error {
	for _, key := range []string{KeyLyrics, KeySong, KeySRT} {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kara-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
