package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/github"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

// DefaultMaxDocumentBytes caps a fetched document.
const DefaultMaxDocumentBytes int64 = 2 << 20

type FetcherOptions struct {
	RawURL    string // raw-content base for hosting URLs
	MaxBytes  int64
	Timeout   time.Duration
	UserAgent string
}

// Fetcher downloads the document describing an entry: the README for a
// hosting URL, the URL itself otherwise.
type Fetcher struct {
	http      *http.Client
	rawURL    string
	maxBytes  int64
	userAgent string
	logger    logger.Logger
}

func NewFetcher(opts FetcherOptions, log logger.Logger) *Fetcher {
	if opts.RawURL == "" {
		opts.RawURL = github.DefaultRawURL
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxDocumentBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Fetcher{
		http:      &http.Client{Timeout: opts.Timeout},
		rawURL:    opts.RawURL,
		maxBytes:  opts.MaxBytes,
		userAgent: opts.UserAgent,
		logger:    log,
	}
}

// DocumentURL returns the URL FetchDocument would read.
func (f *Fetcher) DocumentURL(sourceURL string) string {
	if u, ok := github.RawReadmeURL(f.rawURL, sourceURL); ok {
		return u
	}
	return sourceURL
}

// FetchDocument returns the document text, or "" on any failure.
func (f *Fetcher) FetchDocument(ctx context.Context, sourceURL string) string {
	if sourceURL == "" {
		return ""
	}
	target := f.DocumentURL(sourceURL)

	body, err := f.get(ctx, target)
	if err != nil {
		f.logger.Warn("document fetch failed",
			logger.String("source_url", sourceURL),
			logger.String("document_url", target),
			logger.Error(err))
		return ""
	}
	return body
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}
