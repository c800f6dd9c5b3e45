// Package loader reads post sources from a directory and normalizes them into
// blog.Post records ordered newest first.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/saabsa/site-builder/internal/blog"
	"github.com/saabsa/site-builder/internal/frontmatter"
	"github.com/saabsa/site-builder/internal/metrics"
)

// IndexFileName is the generated listing index. It lives next to the sources
// and must never be read back as a post.
const IndexFileName = "posts.json"

// ErrDuplicateSlug is returned when two sources resolve to the same slug.
var ErrDuplicateSlug = errors.New("duplicate post slug")

// Load outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

// Loader turns source files into posts.
type Loader struct {
	converter blog.MarkdownConverter
	logger    *zap.Logger
}

// New creates a Loader. A nil logger is replaced by a no-op logger.
func New(converter blog.MarkdownConverter, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{converter: converter, logger: logger}
}

// jsonSource mirrors the fields read from a .json post.
type jsonSource struct {
	Title            string `json:"title"`
	PublishCategory  string `json:"publishCategory"`
	Category         string `json:"category"`
	Excerpt          string `json:"excerpt"`
	Slug             string `json:"slug"`
	BodyHTML         string `json:"bodyHtml"`
	ImageKeyword     string `json:"imageKeyword"`
	FeaturedImageURL string `json:"featuredImageUrl"`
}

// Load scans dir (non-recursively) and returns its posts sorted by date,
// newest first. A source that fails to parse is logged and left out. Failing
// to list the directory, or two posts sharing a slug, fails the whole load.
func (l *Loader) Load(ctx context.Context, dir string) ([]blog.Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read posts dir %s: %w", dir, err)
	}

	posts := make([]blog.Post, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load posts: %w", err)
		}
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		format, ok := SourceFormat(name)
		if !ok {
			continue
		}

		post, err := l.loadFile(filepath.Join(dir, name), name, format)
		if err != nil {
			outcome := outcomeError
			if errors.Is(err, frontmatter.ErrNoFrontMatter) {
				outcome = outcomeSkipped
			}
			metrics.ObservePostLoaded(string(format), outcome)
			l.logger.Warn("skipping post source", zap.String("file", name), zap.Error(err))
			continue
		}
		metrics.ObservePostLoaded(string(format), outcomeOK)
		posts = append(posts, post)
	}

	if err := checkSlugs(posts); err != nil {
		return nil, err
	}
	blog.SortNewestFirst(posts)
	return posts, nil
}

// SourceFormat reports how a file name would be loaded. The generated index
// and files without a .md or .json extension are not sources.
func SourceFormat(name string) (blog.SourceFormat, bool) {
	if name == IndexFileName {
		return "", false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		return blog.FormatMarkdown, true
	case ".json":
		return blog.FormatJSON, true
	default:
		return "", false
	}
}

// IsSource reports whether a change to name can alter the loaded posts.
func IsSource(name string) bool {
	_, ok := SourceFormat(name)
	return ok
}

func (l *Loader) loadFile(path, name string, format blog.SourceFormat) (blog.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return blog.Post{}, fmt.Errorf("read %s: %w", name, err)
	}
	if format == blog.FormatJSON {
		return parseJSON(raw, name)
	}
	return l.parseMarkdown(raw, name)
}

func (l *Loader) parseMarkdown(raw []byte, name string) (blog.Post, error) {
	meta, body, err := frontmatter.Parse(raw)
	if err != nil {
		return blog.Post{}, err
	}
	bodyHTML, err := l.converter.Convert(body)
	if err != nil {
		return blog.Post{}, err
	}
	return blog.Post{
		Title:        withDefault(meta["title"], blog.DefaultTitle),
		Date:         meta["date"],
		Category:     withDefault(meta["category"], blog.DefaultCategory),
		Excerpt:      meta["excerpt"],
		Slug:         withDefault(meta["slug"], blog.SlugFromFilename(name, blog.FormatMarkdown)),
		BodyHTML:     bodyHTML,
		ImageKeyword: meta["imageKeyword"],
		ImageURL:     meta["featuredImageUrl"],
		SourceFile:   name,
		Format:       blog.FormatMarkdown,
	}, nil
}

func parseJSON(raw []byte, name string) (blog.Post, error) {
	var src jsonSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return blog.Post{}, fmt.Errorf("decode %s: %w", name, err)
	}
	category := withDefault(src.PublishCategory, src.Category)
	return blog.Post{
		Title:        withDefault(src.Title, blog.DefaultTitle),
		Date:         blog.DateFromFilename(name),
		Category:     withDefault(category, blog.DefaultCategory),
		Excerpt:      src.Excerpt,
		Slug:         withDefault(src.Slug, blog.SlugFromFilename(name, blog.FormatJSON)),
		BodyHTML:     src.BodyHTML,
		ImageKeyword: src.ImageKeyword,
		ImageURL:     src.FeaturedImageURL,
		SourceFile:   name,
		Format:       blog.FormatJSON,
	}, nil
}

func checkSlugs(posts []blog.Post) error {
	seen := make(map[string]string, len(posts))
	for _, p := range posts {
		if prev, ok := seen[p.Slug]; ok {
			return fmt.Errorf("%w: %q is used by %s and %s", ErrDuplicateSlug, p.Slug, prev, p.SourceFile)
		}
		seen[p.Slug] = p.SourceFile
	}
	return nil
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
