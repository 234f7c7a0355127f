package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

// Loader reads the entry files of the catalog data directory. Default
// locale files live at the root, other locales in subdirectories.
type Loader struct {
	dataDir string
	logger  logger.Logger
}

func NewLoader(dataDir string, log logger.Logger) *Loader {
	return &Loader{
		dataDir: dataDir,
		logger:  log,
	}
}

// Dir returns the directory holding locale's files.
func (l *Loader) Dir(locale domain.Locale) string {
	if locale.IsDefault() {
		return l.dataDir
	}
	return filepath.Join(l.dataDir, string(locale))
}

// Files returns the parsed files of one locale directory, without
// default-locale fallback.
func (l *Loader) Files(locale domain.Locale) ([]File, error) {
	files, skipped, err := scanDir(l.Dir(locale))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s entries: %w", locale, err)
	}
	l.logSkipped(locale, skipped)
	return files, nil
}

// LoadAll returns the entry set for locale in default-directory file
// order. Entries without a locale copy fall back to the default copy and
// a missing locale directory falls back entirely.
func (l *Loader) LoadAll(locale domain.Locale) ([]*domain.Entry, error) {
	base, err := l.Files(domain.DefaultLocale)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		l.logger.Warn("catalog directory missing, starting empty",
			logger.String("dir", l.dataDir))
		base = nil
	}

	if locale.IsDefault() {
		return entriesOf(base), nil
	}

	localized, skipped, err := scanDir(l.Dir(locale))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("locale directory missing, serving default locale",
				logger.String("locale", string(locale)),
				logger.String("dir", l.Dir(locale)))
			return entriesOf(base), nil
		}
		return nil, fmt.Errorf("failed to read %s entries: %w", locale, err)
	}
	l.logSkipped(locale, skipped)

	byName := make(map[string]*domain.Entry, len(localized))
	for _, f := range localized {
		byName[f.Name] = f.Entry
	}

	out := make([]*domain.Entry, 0, len(base))
	missing := 0
	for _, f := range base {
		loc, ok := byName[f.Name]
		if !ok {
			missing++
			out = append(out, f.Entry)
			continue
		}
		// Locale files only own their text; everything else follows the
		// default copy.
		loc.Localize(f.Entry)
		out = append(out, loc)
	}

	if missing > 0 {
		l.logger.Debug("entries without a locale copy",
			logger.String("locale", string(locale)),
			logger.Int("count", missing))
	}
	return out, nil
}

func (l *Loader) logSkipped(locale domain.Locale, skipped map[string]error) {
	for name, err := range skipped {
		l.logger.Warn("skipping malformed entry file",
			logger.String("locale", string(locale)),
			logger.String("file", name),
			logger.Error(err))
	}
}

func entriesOf(files []File) []*domain.Entry {
	out := make([]*domain.Entry, len(files))
	for i, f := range files {
		out[i] = f.Entry
	}
	return out
}
