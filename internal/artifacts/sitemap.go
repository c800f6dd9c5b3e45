package artifacts

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/saabsa/site-builder/internal/blog"
)

// SitemapPath is where the sitemap is written, relative to the site root.
const SitemapPath = "sitemap.xml"

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Per-post sitemap hints.
const (
	PostPriority   = "0.7"
	PostChangeFreq = "monthly"
)

// StaticPage is a fixed top-level page listed ahead of the posts.
type StaticPage struct {
	Path       string `mapstructure:"path"`
	Priority   string `mapstructure:"priority"`
	ChangeFreq string `mapstructure:"changefreq"`
}

// DefaultStaticPages lists the home, services and blog listing pages.
func DefaultStaticPages() []StaticPage {
	return []StaticPage{
		{Path: "/", Priority: "1.0", ChangeFreq: "weekly"},
		{Path: "/services.html", Priority: "0.9", ChangeFreq: "monthly"},
		{Path: "/blog.html", Priority: "0.8", ChangeFreq: "weekly"},
	}
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	Priority   string `xml:"priority"`
	ChangeFreq string `xml:"changefreq"`
}

// SitemapBuilder renders sitemap.xml. "Today" comes from the clock so builds
// are reproducible in tests.
type SitemapBuilder struct {
	baseURL string
	pages   []StaticPage
	clock   blog.Clock
}

// NewSitemapBuilder creates a builder. A nil pages slice selects DefaultStaticPages.
func NewSitemapBuilder(baseURL string, pages []StaticPage, clock blog.Clock) *SitemapBuilder {
	if pages == nil {
		pages = DefaultStaticPages()
	}
	return &SitemapBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
		pages:   pages,
		clock:   clock,
	}
}

// Build encodes the static pages followed by one entry per post.
func (b *SitemapBuilder) Build(posts []blog.Post) ([]byte, error) {
	today := b.clock.Now().UTC().Format(blog.DateLayout)

	set := urlSet{XMLNS: sitemapNamespace, URLs: make([]sitemapURL, 0, len(b.pages)+len(posts))}
	for _, page := range b.pages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        b.baseURL + page.Path,
			LastMod:    today,
			Priority:   page.Priority,
			ChangeFreq: page.ChangeFreq,
		})
	}
	for _, p := range posts {
		lastmod := p.Date
		if lastmod == "" {
			lastmod = today
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        b.baseURL + "/blog/" + p.Slug + ".html",
			LastMod:    lastmod,
			Priority:   PostPriority,
			ChangeFreq: PostChangeFreq,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
