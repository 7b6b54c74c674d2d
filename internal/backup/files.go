package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	filePrefix = "deepread-backup-"
	fileLayout = "20060102-150405"
)

// WriteFile exports the library into a timestamped file under dir and
// returns its path.
func (s *Service) WriteFile(ctx context.Context, dir string) (string, error) {
	archive, err := s.Export(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(dir, filePrefix+archive.ExportedAt.UTC().Format(fileLayout)+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := Encode(f, archive); err != nil {
		return "", err
	}
	return path, nil
}

// Encode writes archive as indented JSON.
func Encode(w io.Writer, archive *Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(archive); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Decode reads and validates an archive.
func Decode(r io.Reader) (*Archive, error) {
	var archive Archive
	if err := json.NewDecoder(r).Decode(&archive); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	if err := archive.validate(); err != nil {
		return nil, err
	}
	return &archive, nil
}

// ReadFile decodes the archive at path.
func ReadFile(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Prune deletes all but the newest retain backup files in dir.
func Prune(dir string, retain int) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if retain < 0 || len(names) <= retain {
		return 0, nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	removed := 0
	for _, name := range names[retain:] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}
