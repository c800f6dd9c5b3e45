package blog

import (
	"time"
)

// Default field values applied when a source omits them.
const (
	DefaultTitle    = "Untitled"
	DefaultCategory = "General"
)

// SourceFormat identifies how a post source was parsed.
type SourceFormat string

// Supported source formats.
const (
	FormatMarkdown SourceFormat = "markdown"
	FormatJSON     SourceFormat = "json"
)

// Post is the canonical in-memory record for one blog post. It is rebuilt on
// every run and never persisted beyond the generated artifacts.
type Post struct {
	Title           string
	Date            string
	Category        string
	Excerpt         string
	Slug            string
	BodyHTML        string
	ImageKeyword    string
	ImageURL        string
	ImageMedium     string
	Photographer    string
	PhotographerURL string
	PexelsURL       string
	SourceFile      string
	Format          SourceFormat
}

// Description returns the excerpt, falling back to the title.
func (p Post) Description() string {
	if p.Excerpt != "" {
		return p.Excerpt
	}
	return p.Title
}

// ListingImage returns the best image for the listing page: the medium
// variant, then the primary image, then an empty string.
func (p Post) ListingImage() string {
	if p.ImageMedium != "" {
		return p.ImageMedium
	}
	return p.ImageURL
}

// HasAttribution reports whether the image came from the photo search.
func (p Post) HasAttribution() bool {
	return p.Photographer != ""
}

// Photo is a single image-search hit.
type Photo struct {
	URL             string
	Medium          string
	Photographer    string
	PhotographerURL string
	PageURL         string
}

// LookupOutcome distinguishes why an image lookup did or did not attach a photo.
type LookupOutcome string

// Image lookup outcomes.
const (
	LookupFound    LookupOutcome = "found"
	LookupNotFound LookupOutcome = "not_found"
	LookupFailed   LookupOutcome = "failed"
	LookupSkipped  LookupOutcome = "skipped"
)

// IndexEntry is the stripped-down descriptor written to the listing index.
type IndexEntry struct {
	Title           string  `json:"title"`
	Date            *string `json:"date"`
	Category        string  `json:"category"`
	Excerpt         string  `json:"excerpt"`
	Slug            string  `json:"slug"`
	ImageURL        string  `json:"imageUrl"`
	Photographer    string  `json:"photographer"`
	PhotographerURL string  `json:"photographerUrl"`
	PexelsURL       string  `json:"pexelsUrl"`
}

// Index is the document consumed by the blog listing page.
type Index struct {
	Posts []IndexEntry `json:"posts"`
}

// BuildResult summarizes one completed build.
type BuildResult struct {
	BuildID  string
	Posts    []Post
	Objects  []string
	Started  time.Time
	Finished time.Time
}

// BuildEvent is published after a build finishes writing its artifacts.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	SiteURL     string    `json:"site_url"`
	PostURLs    []string  `json:"post_urls"`
	CompletedAt time.Time `json:"completed_at"`
}
