package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/github"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	source "github.com/MrSnakeDoc/mcphub/internal/sources/catalog"
)

// DedupeReport lists the file names kept and removed by Dedupe.
type DedupeReport struct {
	Kept    []string `json:"kept"`
	Removed []string `json:"removed"`
}

// Dedupe keeps one entry per normalized source URL, the one whose file
// was modified last, and deletes the rest with their locale copies.
func (s *Service) Dedupe(ctx context.Context) (DedupeReport, error) {
	var report DedupeReport

	files, err := s.baseFiles()
	if err != nil {
		return report, err
	}

	groups := make(map[string][]source.File)
	order := make([]string, 0, len(files))
	for _, f := range files {
		key := f.Entry.SourceKey()
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	var errs []error
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		keep := 0
		for i, f := range group {
			if f.ModTime.After(group[keep].ModTime) {
				keep = i
			}
		}
		report.Kept = append(report.Kept, group[keep].Name)

		for i, f := range group {
			if i == keep {
				continue
			}
			if err := s.writer.DeleteFile(f.Name); err != nil {
				errs = append(errs, err)
				continue
			}
			s.enricher.Invalidate(ctx, f.Entry.ID)
			report.Removed = append(report.Removed, f.Name)
			s.logger.Info("duplicate removed",
				logger.String("file", f.Name),
				logger.String("kept", group[keep].Name),
				logger.String("source", key))
		}
	}

	if len(report.Removed) > 0 {
		s.refreshAll(ctx)
	}
	return report, errors.Join(errs...)
}

// RefreshMetadata re-fetches repository metadata for every hosted entry
// and writes changes to all its locale copies. It returns the number of
// entries updated.
func (s *Service) RefreshMetadata(ctx context.Context) (int, error) {
	files, err := s.baseFiles()
	if err != nil {
		return 0, err
	}
	copies, err := s.localeCopies()
	if err != nil {
		return 0, err
	}

	updated := 0
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if !github.IsHostingURL(f.Entry.SourceURL) {
			continue
		}

		md := s.metadata.FetchMetadata(ctx, f.Entry.SourceURL)
		if md == nil {
			continue
		}
		if !applyRepoInfo(f.Entry, md) {
			continue
		}
		if err := s.persist(ctx, f, copies); err != nil {
			errs = append(errs, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		s.refreshAll(ctx)
	}
	return updated, errors.Join(errs...)
}

// Recategorize re-classifies entries. With onlyInvalid set, entries that
// already carry a valid category are left alone.
func (s *Service) Recategorize(ctx context.Context, onlyInvalid bool) (int, error) {
	files, err := s.baseFiles()
	if err != nil {
		return 0, err
	}
	copies, err := s.localeCopies()
	if err != nil {
		return 0, err
	}

	changed := 0
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		if onlyInvalid && f.Entry.Category.Valid() {
			continue
		}

		category := s.classifier.Classify(ctx, f.Entry.Name, f.Entry.Description)
		if category == f.Entry.Category {
			continue
		}
		s.logger.Info("entry recategorized",
			logger.String("entry_id", f.Entry.ID),
			logger.String("from", string(f.Entry.Category)),
			logger.String("to", string(category)))

		f.Entry.Category = category
		if err := s.persist(ctx, f, copies); err != nil {
			errs = append(errs, err)
			continue
		}
		changed++
	}

	if changed > 0 {
		s.refreshAll(ctx)
	}
	return changed, errors.Join(errs...)
}

// Localize writes e's translated copy for every non-default locale and
// refreshes those listings. Existing copies are kept unless overwrite
// is set.
func (s *Service) Localize(ctx context.Context, e *domain.Entry, overwrite bool) (int, error) {
	var existing map[domain.Locale]map[string]*domain.Entry
	if !overwrite {
		var err error
		if existing, err = s.localeCopies(); err != nil {
			return 0, err
		}
	}

	written, err := s.localize(ctx, "", e, existing)
	for _, l := range written {
		if _, rerr := s.records.ForceRefresh(ctx, l); rerr != nil {
			s.logger.Warn("listing refresh after localize failed",
				logger.String("locale", string(l)), logger.Error(rerr))
		}
	}
	if len(written) > 0 {
		s.enricher.Invalidate(ctx, e.ID)
	}
	return len(written), err
}

// LocalizeAll produces missing locale copies for the whole catalog and
// returns how many files were written.
func (s *Service) LocalizeAll(ctx context.Context, overwrite bool) (int, error) {
	files, err := s.baseFiles()
	if err != nil {
		return 0, err
	}
	var existing map[domain.Locale]map[string]*domain.Entry
	if !overwrite {
		if existing, err = s.localeCopies(); err != nil {
			return 0, err
		}
	}

	total := 0
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		written, err := s.localize(ctx, f.Name, f.Entry, existing)
		if err != nil {
			errs = append(errs, err)
		}
		if len(written) > 0 {
			s.enricher.Invalidate(ctx, f.Entry.ID)
		}
		total += len(written)
	}

	if total > 0 {
		s.refreshAll(ctx)
	}
	return total, errors.Join(errs...)
}

// localize translates e into each locale without a copy in existing, or
// into every locale when existing is nil. An empty name is resolved by
// the writer.
func (s *Service) localize(ctx context.Context, name string, e *domain.Entry, existing map[domain.Locale]map[string]*domain.Entry) ([]domain.Locale, error) {
	var written []domain.Locale
	var errs []error
	for _, l := range domain.TranslatedLocales() {
		if existing != nil {
			if _, ok := findByID(existing[l], e.ID); ok {
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}

		loc := s.localizer.LocalizeEntry(ctx, e, l)
		// A cancelled translation falls back to the source text.
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if _, err := s.save(l, name, loc); err != nil {
			errs = append(errs, fmt.Errorf("failed to save %s copy of %s: %w", l, e.ID, err))
			continue
		}
		written = append(written, l)
	}
	return written, errors.Join(errs...)
}

// persist saves the default copy of f and re-derives the non-text fields
// of each existing locale copy from it.
func (s *Service) persist(ctx context.Context, f source.File, copies map[domain.Locale]map[string]*domain.Entry) error {
	if _, err := s.writer.SaveAs(domain.DefaultLocale, f.Name, f.Entry); err != nil {
		return err
	}

	var errs []error
	for _, l := range domain.TranslatedLocales() {
		loc, ok := copies[l][f.Name]
		if !ok {
			continue
		}
		loc.Localize(f.Entry)
		if _, err := s.writer.SaveAs(l, f.Name, loc); err != nil {
			errs = append(errs, err)
		}
	}
	s.enricher.Invalidate(ctx, f.Entry.ID)
	return errors.Join(errs...)
}

func (s *Service) save(locale domain.Locale, name string, e *domain.Entry) (string, error) {
	if name == "" {
		return s.writer.Save(locale, e)
	}
	return s.writer.SaveAs(locale, name, e)
}

func (s *Service) baseFiles() ([]source.File, error) {
	files, err := s.files.Files(domain.DefaultLocale)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}

// localeCopies maps each translated locale to its entries by file name.
// A missing locale directory yields an empty map.
func (s *Service) localeCopies() (map[domain.Locale]map[string]*domain.Entry, error) {
	out := make(map[domain.Locale]map[string]*domain.Entry)
	for _, l := range domain.TranslatedLocales() {
		byName := make(map[string]*domain.Entry)
		files, err := s.files.Files(l)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for _, f := range files {
			byName[f.Name] = f.Entry
		}
		out[l] = byName
	}
	return out, nil
}

func (s *Service) refreshAll(ctx context.Context) {
	for _, l := range domain.AllLocales() {
		if _, err := s.records.ForceRefresh(ctx, l); err != nil {
			s.logger.Warn("listing refresh failed",
				logger.String("locale", string(l)), logger.Error(err))
		}
	}
}

func findByID(byName map[string]*domain.Entry, id string) (*domain.Entry, bool) {
	for _, e := range byName {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// applyRepoInfo merges md onto e, also taking the owner as author and
// the latest commit time as updatedAt. It reports whether e changed.
func applyRepoInfo(e *domain.Entry, md *domain.RepoMetadata) bool {
	before := e.Clone()
	e.ApplyMetadata(md)
	if md.OwnerName != "" {
		e.Author = md.OwnerName
	}
	if md.LatestCommitTime != "" {
		e.UpdatedAt = md.LatestCommitTime
	}
	return !reflect.DeepEqual(before, e)
}
