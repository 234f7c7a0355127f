package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoJSON = `{
  "stargazers_count": 1234,
  "forks_count": 56,
  "owner": {"login": "modelcontextprotocol"},
  "license": {"spdx_id": "MIT"}
}`

const commitsJSON = `[{"sha": "abc123", "commit": {"committer": {"date": "2025-01-02T03:04:05Z"}}}]`

func newFakeAPI(t *testing.T, repoStatus int, repoBody string, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/modelcontextprotocol/servers", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, acceptHeader, r.Header.Get("Accept"))
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		w.WriteHeader(repoStatus)
		_, _ = w.Write([]byte(repoBody))
	})
	mux.HandleFunc("/repos/modelcontextprotocol/servers/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(commitsJSON))
	})
	return httptest.NewServer(mux)
}

func newTestClient(apiURL string, ttl time.Duration) *Client {
	return NewClient(Options{APIURL: apiURL, Token: "secret", CacheTTL: ttl}, logger.NewNop(), nil)
}

func TestFetchMetadata(t *testing.T) {
	srv := newFakeAPI(t, http.StatusOK, repoJSON, nil)
	defer srv.Close()

	c := newTestClient(srv.URL, 0)
	md := c.FetchMetadata(context.Background(), "https://github.com/modelcontextprotocol/servers/tree/main/src/memory")
	require.NotNil(t, md)

	assert.Equal(t, 1234, md.Stars)
	assert.Equal(t, 56, md.Forks)
	assert.Equal(t, "modelcontextprotocol", md.OwnerName)
	require.NotNil(t, md.License)
	assert.Equal(t, "MIT", *md.License)
	assert.Equal(t, "abc123", md.LatestCommitID)
	assert.Equal(t, "2025-01-02T03:04:05Z", md.LatestCommitTime)
}

func TestFetchMetadataNullLicenseAndOwnerFallback(t *testing.T) {
	srv := newFakeAPI(t, http.StatusOK, `{"stargazers_count": 3, "forks_count": 0, "license": null}`, nil)
	defer srv.Close()

	md := newTestClient(srv.URL, 0).FetchMetadata(context.Background(), "https://github.com/modelcontextprotocol/servers")
	require.NotNil(t, md)
	assert.Nil(t, md.License)
	assert.Equal(t, "modelcontextprotocol", md.OwnerName)
	assert.Equal(t, 3, md.Stars)
}

func TestFetchMetadataFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusForbidden, `{"message":"API rate limit exceeded"}`},
		{"unauthorized", http.StatusUnauthorized, `{"message":"Bad credentials"}`},
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`},
		{"garbage", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeAPI(t, tt.status, tt.body, nil)
			defer srv.Close()

			md := newTestClient(srv.URL, 0).FetchMetadata(context.Background(), "https://github.com/modelcontextprotocol/servers")
			assert.Nil(t, md)
		})
	}
}

func TestFetchMetadataUnsupportedURL(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", 0)
	assert.Nil(t, c.FetchMetadata(context.Background(), "https://gitlab.com/user/repo"))
}

func TestFetchMetadataNetworkError(t *testing.T) {
	srv := newFakeAPI(t, http.StatusOK, repoJSON, nil)
	url := srv.URL
	srv.Close()

	assert.Nil(t, newTestClient(url, 0).FetchMetadata(context.Background(), "https://github.com/modelcontextprotocol/servers"))
}

func TestFetchMetadataMemoized(t *testing.T) {
	var hits int32
	srv := newFakeAPI(t, http.StatusOK, repoJSON, &hits)
	defer srv.Close()

	c := newTestClient(srv.URL, time.Minute)
	for i := 0; i < 3; i++ {
		require.NotNil(t, c.FetchMetadata(context.Background(), "https://github.com/modelcontextprotocol/servers/"))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchMetadataFailureNotMemoized(t *testing.T) {
	var hits int32
	srv := newFakeAPI(t, http.StatusForbidden, `{}`, &hits)
	defer srv.Close()

	c := newTestClient(srv.URL, time.Minute)
	assert.Nil(t, c.FetchMetadata(context.Background(), "https://github.com/modelcontextprotocol/servers"))
	assert.Nil(t, c.FetchMetadata(context.Background(), "https://github.com/modelcontextprotocol/servers"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
