package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"

	acceptHeader = "application/vnd.github.v3+json"
	maxAPIBody   = 1 << 20
)

type Options struct {
	APIURL    string
	Token     string        // optional, raises the rate limit
	Timeout   time.Duration // per request
	CacheTTL  time.Duration // metadata memoization, 0 disables
	UserAgent string
}

// Client reads repository metadata from the GitHub REST API.
type Client struct {
	http      *http.Client
	apiURL    string
	token     string
	userAgent string
	cache     *gocache.Cache
	logger    logger.Logger
	metrics   *metrics.Metrics
}

func NewClient(opts Options, log logger.Logger, m *metrics.Metrics) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	c := &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		apiURL:    strings.TrimRight(opts.APIURL, "/"),
		token:     opts.Token,
		userAgent: opts.UserAgent,
		logger:    log,
		metrics:   m,
	}
	if opts.CacheTTL > 0 {
		c.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return c
}

// FetchMetadata returns stars, forks, license, owner and latest commit
// for sourceURL. Any failure yields nil.
func (c *Client) FetchMetadata(ctx context.Context, sourceURL string) *domain.RepoMetadata {
	coords, ok := ResolveRepo(sourceURL)
	if !ok {
		return nil
	}

	cacheKey := strings.ToLower(coords.Owner + "/" + coords.Repo)
	if c.cache != nil {
		if v, found := c.cache.Get(cacheKey); found {
			md := v.(domain.RepoMetadata)
			return &md
		}
	}

	repoURL := fmt.Sprintf("%s/repos/%s/%s", c.apiURL, coords.Owner, coords.Repo)

	repoBody, err := c.getJSON(ctx, repoURL)
	if err != nil {
		c.logger.Warn("github metadata fetch failed",
			logger.String("repo", cacheKey),
			logger.Error(err))
		return nil
	}

	commitsBody, err := c.getJSON(ctx, repoURL+"/commits?per_page=1")
	if err != nil {
		c.logger.Warn("github commits fetch failed",
			logger.String("repo", cacheKey),
			logger.Error(err))
		return nil
	}

	md := parseMetadata(coords, repoBody, commitsBody)
	if c.cache != nil {
		c.cache.Set(cacheKey, md, gocache.DefaultExpiration)
	}
	return &md
}

func parseMetadata(coords Coordinates, repoBody, commitsBody []byte) domain.RepoMetadata {
	repo := gjson.ParseBytes(repoBody)
	commits := gjson.ParseBytes(commitsBody)

	md := domain.RepoMetadata{
		Owner:            coords.Owner,
		Repo:             coords.Repo,
		Stars:            int(repo.Get("stargazers_count").Int()),
		Forks:            int(repo.Get("forks_count").Int()),
		OwnerName:        repo.Get("owner.login").String(),
		LatestCommitID:   commits.Get("0.sha").String(),
		LatestCommitTime: commits.Get("0.commit.committer.date").String(),
	}
	if md.OwnerName == "" {
		md.OwnerName = coords.Owner
	}
	if spdx := repo.Get("license.spdx_id"); spdx.Exists() && spdx.Type == gjson.String && spdx.String() != "" {
		s := spdx.String()
		md.License = &s
	}
	return md
}

func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.GitHubRequest(0, err)
		return nil, fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.GitHubRequest(resp.StatusCode, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON from %s", url)
	}
	return body, nil
}
