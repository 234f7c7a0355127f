package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/utils"
)

// Writer persists entry files. An entry keeps the same file name in
// every locale directory.
type Writer struct {
	loader *Loader
	logger logger.Logger
	mu     sync.Mutex
}

func NewWriter(loader *Loader, log logger.Logger) *Writer {
	return &Writer{loader: loader, logger: log}
}

// Save writes e as locale's copy and returns the file path. The file
// name is looked up in the default directory, so prefer SaveAs when the
// caller already holds it.
func (w *Writer) Save(locale domain.Locale, e *domain.Entry) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name, err := w.fileNameFor(e)
	if err != nil {
		return "", err
	}
	return w.write(locale, name, e)
}

// SaveAs writes e to the file called name in locale's directory.
func (w *Writer) SaveAs(locale domain.Locale, name string, e *domain.Entry) (string, error) {
	if e.ID == "" {
		return "", fmt.Errorf("entry has no id")
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q for entry %s", name, e.ID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.write(locale, name, e)
}

func (w *Writer) write(locale domain.Locale, name string, e *domain.Entry) (string, error) {
	dir := w.loader.Dir(locale)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", locale, err)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal entry %s: %w", e.ID, err)
	}

	path := filepath.Join(dir, name)
	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save entry %s: %w", e.ID, err)
	}

	w.logger.Debug("entry saved",
		logger.String("entry_id", e.ID),
		logger.String("locale", string(locale)),
		logger.String("file", name))
	return path, nil
}

// DeleteFile removes the file called name from every locale directory.
func (w *Writer) DeleteFile(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.removeName(name)
}

func (w *Writer) removeName(name string) error {
	var errs []error
	for _, l := range domain.AllLocales() {
		if err := utils.RemoveIfExists(filepath.Join(w.loader.Dir(l), name)); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s/%s: %w", l, name, err))
		}
	}
	return errors.Join(errs...)
}

// fileNameFor reuses the default-locale file that already holds e.ID,
// or derives a new name.
func (w *Writer) fileNameFor(e *domain.Entry) (string, error) {
	if e.ID == "" {
		return "", fmt.Errorf("entry has no id")
	}

	files, _, err := scanDir(w.loader.Dir(domain.DefaultLocale))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to scan catalog: %w", err)
	}
	for _, f := range files {
		if f.Entry.ID == e.ID {
			return f.Name, nil
		}
	}
	return FileName(e), nil
}
