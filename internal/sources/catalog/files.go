package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
)

// File is one parsed entry file.
type File struct {
	Name    string // base name, identical across locale directories
	Path    string
	ModTime time.Time
	Entry   *domain.Entry
}

// FileName is the deterministic name for a new entry file.
func FileName(e *domain.Entry) string {
	if slug := domain.Slug(e.Name); slug != "" {
		return e.ID + "_" + slug + ".json"
	}
	return e.ID + ".json"
}

// readEntry parses one entry file.
func readEntry(path string) (*domain.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry file: %w", err)
	}

	var e domain.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse entry file: %w", err)
	}
	if strings.TrimSpace(e.ID) == "" {
		return nil, fmt.Errorf("entry file has no entryId")
	}
	return &e, nil
}

// scanDir parses every *.json file in dir in lexical order. Files that
// cannot be parsed are returned in skipped, not as an error.
func scanDir(dir string) (files []File, skipped map[string]error, err error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	skipped = make(map[string]error)
	files = make([]File, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") || strings.HasPrefix(de.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, de.Name())
		entry, perr := readEntry(path)
		if perr != nil {
			skipped[de.Name()] = perr
			continue
		}

		var mod time.Time
		if info, ierr := de.Info(); ierr == nil {
			mod = info.ModTime()
		}
		files = append(files, File{Name: de.Name(), Path: path, ModTime: mod, Entry: entry})
	}
	return files, skipped, nil
}
