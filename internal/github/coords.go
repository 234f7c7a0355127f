package github

import (
	"net/url"
	"strings"
)

// DefaultBranch is assumed when a URL names no branch.
const DefaultBranch = "main"

// Coordinates locate a repository, and optionally a branch and path
// inside it.
type Coordinates struct {
	Owner  string
	Repo   string
	Ref    string // "tree", "blob" or ""
	Branch string
	Path   string
}

// ResolveRepo parses a github.com URL into owner/repo. Trailing
// sub-paths (tree, blob, issues, pull...) collapse to the repository but
// a tree/blob branch and path are kept for README derivation.
func ResolveRepo(sourceURL string) (Coordinates, bool) {
	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil {
		return Coordinates{}, false
	}

	switch strings.ToLower(u.Scheme) {
	case "https", "http":
	default:
		return Coordinates{}, false
	}

	switch strings.ToLower(u.Hostname()) {
	case "github.com", "www.github.com":
	default:
		return Coordinates{}, false
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 {
		return Coordinates{}, false
	}

	c := Coordinates{
		Owner: segments[0],
		Repo:  strings.TrimSuffix(segments[1], ".git"),
	}
	if c.Owner == "" || c.Repo == "" {
		return Coordinates{}, false
	}

	if len(segments) >= 4 && (segments[2] == "tree" || segments[2] == "blob") {
		c.Ref = segments[2]
		c.Branch = segments[3]
		c.Path = strings.Join(segments[4:], "/")
	}
	return c, true
}

// IsHostingURL reports whether sourceURL resolves to a repository.
func IsHostingURL(sourceURL string) bool {
	_, ok := ResolveRepo(sourceURL)
	return ok
}

// ReadmeURL derives the raw-content URL of the README this reference
// points at. A blob reference is the raw file itself.
func (c Coordinates) ReadmeURL(rawBase string) string {
	branch := c.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	base := strings.TrimRight(rawBase, "/") + "/" + c.Owner + "/" + c.Repo + "/refs/heads/" + branch + "/"

	switch {
	case c.Ref == "blob" && c.Path != "":
		return base + c.Path
	case c.Path != "":
		return base + c.Path + "/README.md"
	default:
		return base + "README.md"
	}
}

// RawReadmeURL resolves sourceURL and returns its README raw URL.
func RawReadmeURL(rawBase, sourceURL string) (string, bool) {
	c, ok := ResolveRepo(sourceURL)
	if !ok {
		return "", false
	}
	return c.ReadmeURL(rawBase), true
}

func splitPath(p string) []string {
	raw := strings.Split(strings.Trim(p, "/"), "/")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
