package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/github"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

// DefaultIconRef is the icon assigned to submitted entries.
const DefaultIconRef = "server"

// Submit creates a catalog entry from a repository URL.
//
// It returns *domain.RejectedError when the URL or its README is
// unusable and *domain.ConflictError when the source is already listed.
// Submissions of the same source are serialized, so at most one wins.
func (s *Service) Submit(ctx context.Context, sourceURL string) (*domain.Entry, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	coords, ok := github.ResolveRepo(sourceURL)
	if !ok {
		return nil, domain.Rejected("must be a GitHub repository URL")
	}

	unlock := s.submits.Lock(domain.NormalizeSourceURL(sourceURL))
	defer unlock()

	entries, err := s.records.GetOrRefresh(ctx, domain.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if existing, found := domain.FindBySource(entries, sourceURL); found {
		return nil, &domain.ConflictError{ExistingID: existing.ID, SourceURL: existing.SourceURL}
	}

	doc := s.docs.FetchDocument(ctx, sourceURL)
	if strings.TrimSpace(doc) == "" {
		return nil, domain.Rejected("could not retrieve README from %s", sourceURL)
	}

	info := s.extractor.Process(ctx, doc, domain.DefaultLocale)
	if info.IsEmpty() {
		return nil, domain.Rejected("nothing usable could be extracted from the README")
	}
	name := strings.TrimSpace(info.Name)
	description := domain.CleanDescription(info.Description)
	if name == "" || description == "" {
		return nil, domain.Rejected("could not extract a name and description from the README")
	}

	now := domain.FormatTime(s.now())
	e := &domain.Entry{
		ID:                  uuid.NewString(),
		SourceID:            domain.SourceIDFromURL(sourceURL),
		Name:                name,
		Author:              coords.Owner,
		Description:         description,
		Category:            s.classifier.Classify(ctx, name, description),
		Tags:                []string{},
		IconRef:             DefaultIconRef,
		CreatedAt:           now,
		UpdatedAt:           now,
		SourceURL:           sourceURL,
		InstallInstructions: info.InstallInstructions,
		UsageInstructions:   info.UsageInstructions,
		Features:            info.Features,
		Prerequisites:       info.Prerequisites,
	}

	path, err := s.writer.Save(domain.DefaultLocale, e)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}
	if _, err := s.records.ForceRefresh(ctx, domain.DefaultLocale); err != nil {
		s.logger.Warn("listing refresh after submit failed", logger.Error(err))
	}

	s.logger.Info("server submitted",
		logger.String("entry_id", e.ID),
		logger.String("source_url", sourceURL),
		logger.String("repo", coords.Owner+"/"+coords.Repo),
		logger.String("category", string(e.Category)),
		logger.String("file", path))

	if s.queue != nil && !s.queue.Enqueue(e.Clone()) {
		s.logger.Warn("localization queue full, run the localize command to backfill",
			logger.String("entry_id", e.ID))
	}
	return e, nil
}
