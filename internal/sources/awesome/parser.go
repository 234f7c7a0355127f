// Package awesome extracts server listings from curated markdown lists
// such as the modelcontextprotocol/servers README.
package awesome

import (
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	DefaultBaseRepo = "https://github.com/modelcontextprotocol/servers"
	DefaultBranch   = "main"
)

// Kind is the list section a listing was found under.
type Kind string

const (
	KindReference   Kind = "Reference Server"
	KindOfficial    Kind = "Official Integration"
	KindCommunity   Kind = "Community Server"
	KindFramework   Kind = "Framework"
	KindResource    Kind = "Resource"
	KindUnknown     Kind = "Unknown"
	sectionNotFound Kind = ""
)

// IsServer reports whether listings of this kind are MCP servers.
func (k Kind) IsServer() bool {
	return k == KindReference || k == KindOfficial || k == KindCommunity
}

// Listing is one repository link found in a list item.
type Listing struct {
	URL         string `json:"githubUrl"`
	Name        string `json:"name,omitempty"`
	Kind        Kind   `json:"type"`
	Description string `json:"description,omitempty"`
}

// Options resolve relative links of the reference section.
type Options struct {
	BaseRepo string
	Branch   string
}

func (o Options) withDefaults() Options {
	if o.BaseRepo == "" {
		o.BaseRepo = DefaultBaseRepo
	}
	if o.Branch == "" {
		o.Branch = DefaultBranch
	}
	o.BaseRepo = strings.TrimRight(o.BaseRepo, "/")
	return o
}

var md = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// Parse returns the GitHub listings of every list item in document
// order, deduplicated on the normalized URL.
func Parse(src []byte, opts Options) []Listing {
	opts = opts.withDefaults()
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		out     []Listing
		seen    = map[string]struct{}{}
		topKind = KindUnknown
		kind    = KindUnknown
	)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			k := sectionKind(plainText(node, src))
			switch {
			case node.Level <= 1:
				topKind, kind = KindUnknown, KindUnknown
			case node.Level == 2:
				topKind = orDefault(k, KindUnknown)
				kind = topKind
			default:
				kind = orDefault(k, topKind)
			}
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			l, ok := listingFrom(node, src, kind, opts)
			if !ok {
				return ast.WalkContinue, nil
			}
			if _, dup := seen[l.URL]; dup {
				return ast.WalkContinue, nil
			}
			seen[l.URL] = struct{}{}
			out = append(out, l)
		}
		return ast.WalkContinue, nil
	})
	return out
}

func orDefault(k, def Kind) Kind {
	if k == sectionNotFound {
		return def
	}
	return k
}

func sectionKind(heading string) Kind {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "reference servers"):
		return KindReference
	case strings.Contains(h, "official integrations"):
		return KindOfficial
	case strings.Contains(h, "community servers"):
		return KindCommunity
	case strings.Contains(h, "frameworks"):
		return KindFramework
	case strings.Contains(h, "resources"):
		return KindResource
	}
	return sectionNotFound
}

// listingFrom reads the first link of an item's leading text block. The
// link text is the name; whatever follows it is the description.
func listingFrom(item *ast.ListItem, src []byte, kind Kind, opts Options) (Listing, bool) {
	block := item.FirstChild()
	if block == nil {
		return Listing{}, false
	}
	if _, ok := block.(*ast.Paragraph); !ok {
		if _, ok := block.(*ast.TextBlock); !ok {
			return Listing{}, false
		}
	}

	var (
		l     Listing
		found bool
		after strings.Builder
	)
	_ = ast.Walk(block, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if found {
			if entering {
				appendText(&after, n, src)
			}
			return ast.WalkContinue, nil
		}
		if !entering {
			return ast.WalkContinue, nil
		}

		var dest, name string
		switch link := n.(type) {
		case *ast.Link:
			dest = string(link.Destination)
			name = plainText(link, src)
		case *ast.AutoLink:
			dest = string(link.URL(src))
		default:
			return ast.WalkContinue, nil
		}

		u, ok := resolve(dest, kind, opts)
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		if name == "" {
			name = repoName(u)
		}
		l = Listing{URL: u, Name: strings.TrimSpace(name), Kind: kind}
		found = true
		return ast.WalkSkipChildren, nil
	})
	if !found {
		return Listing{}, false
	}

	l.Description = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(after.String()), "-–—:"))
	return l, true
}

func resolve(dest string, kind Kind, opts Options) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "mailto:") {
		return "", false
	}
	if !strings.Contains(dest, "://") {
		// Reference servers link into the list's own repository.
		if kind != KindReference {
			return "", false
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(dest, "./"), "/")
		dest = opts.BaseRepo + "/tree/" + opts.Branch + "/" + rel
	}
	return NormalizeURL(dest)
}

var (
	repoPathRE = regexp.MustCompile(`^https://github\.com/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+(/(tree|blob)/[^/]+/.+)?$`)
	repoRootRE = regexp.MustCompile(`^https://github\.com/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+`)
)

// NormalizeURL canonicalizes a GitHub link. Tree and blob paths are kept;
// any other sub-page (issues, pulls, commits) collapses to the
// repository root. Non-GitHub URLs are rejected.
func NormalizeURL(raw string) (string, bool) {
	u := strings.TrimSpace(raw)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	for _, prefix := range []string{"http://www.github.com/", "https://www.github.com/", "http://github.com/"} {
		if strings.HasPrefix(u, prefix) {
			u = "https://github.com/" + strings.TrimPrefix(u, prefix)
			break
		}
	}

	if repoPathRE.MatchString(u) && !strings.HasSuffix(u, ".git") {
		return u, true
	}
	root := repoRootRE.FindString(u)
	if root == "" {
		return "", false
	}
	return strings.TrimSuffix(root, ".git"), true
}

func repoName(u string) string {
	return u[strings.LastIndex(u, "/")+1:]
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			appendText(&b, c, src)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func appendText(b *strings.Builder, n ast.Node, src []byte) {
	switch t := n.(type) {
	case *ast.Text:
		b.Write(t.Segment.Value(src))
		if t.SoftLineBreak() || t.HardLineBreak() {
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(t.Value)
	case *ast.AutoLink:
		b.Write(t.Label(src))
	}
}

// Metadata summarizes a crawl, mirroring the list's output format.
type Metadata struct {
	TotalServers  int          `json:"totalServers"`
	ExtractedAt   string       `json:"extractedAt"`
	SourceURL     string       `json:"sourceUrl"`
	BaseRepoURL   string       `json:"baseRepoUrl"`
	DefaultBranch string       `json:"defaultBranch"`
	TypeCounts    map[Kind]int `json:"typeCounts"`
}

type Result struct {
	Metadata Metadata  `json:"metadata"`
	Servers  []Listing `json:"servers"`
}

// NewResult wraps listings with crawl metadata.
func NewResult(listings []Listing, sourceURL string, opts Options, now time.Time) Result {
	opts = opts.withDefaults()
	counts := make(map[Kind]int)
	for _, l := range listings {
		counts[l.Kind]++
	}
	if listings == nil {
		listings = []Listing{}
	}
	return Result{
		Metadata: Metadata{
			TotalServers:  len(listings),
			ExtractedAt:   now.UTC().Format(time.RFC3339),
			SourceURL:     sourceURL,
			BaseRepoURL:   opts.BaseRepo,
			DefaultBranch: opts.Branch,
			TypeCounts:    counts,
		},
		Servers: listings,
	}
}

// Servers keeps only listings of server kinds.
func Servers(listings []Listing) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if l.Kind.IsServer() {
			out = append(out, l)
		}
	}
	return out
}
