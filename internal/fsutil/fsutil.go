// Package fsutil provides the narrow set of file-system operations the run
// lifecycle depends on: directory creation, versioned run directories,
// directory listing, and JSON round-trips.
package fsutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Run directories are created with a zero-padded numeric name so they sort
// naturally in directory listings.
const dirNumberWidth = 4

var (
	highWaterMu sync.Mutex
	highWater   = map[string]int{}
)

// CreateDirectory creates path and any missing parents. Existing directories
// are left untouched.
func CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// CreateIncrementedDirectory creates a new numbered subdirectory under base
// (0001, 0002, ...) and returns its path. The next number is one past the
// highest numbered sibling currently on disk or the highest number this
// process has handed out for base, whichever is larger, so a number is never
// reused within a process even if earlier directories were removed by
// external means.
func CreateIncrementedDirectory(base string) (string, error) {
	key, err := filepath.Abs(base)
	if err != nil {
		key = base
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("reading output directory %s: %w", base, err)
	}

	next := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		n, err := strconv.Atoi(entry.Name())
		if err != nil || n <= 0 {
			continue
		}
		if n > next {
			next = n
		}
	}

	highWaterMu.Lock()
	if mark := highWater[key]; mark > next {
		next = mark
	}
	for {
		next++
		dir := filepath.Join(base, fmt.Sprintf("%0*d", dirNumberWidth, next))
		err := os.Mkdir(dir, 0o755)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			highWaterMu.Unlock()
			return "", fmt.Errorf("creating run directory %s: %w", dir, err)
		}
		highWater[key] = next
		highWaterMu.Unlock()
		return dir, nil
	}
}

// CollectFiles returns the full paths of the regular files directly under
// dir, in the order the directory listing reports them.
func CollectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// ReadJSON deserializes the JSON file at path into a value of type T.
func ReadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

// WriteJSON serializes v as indented JSON to path, replacing any existing
// file.
func WriteJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
