// Package artifacts builds the site-wide files derived from the full post
// collection: the listing index and the sitemap.
package artifacts

import (
	"encoding/json"
	"fmt"

	"github.com/saabsa/site-builder/internal/blog"
)

// IndexPath is where the listing index is written, relative to the site root.
const IndexPath = "_posts/posts.json"

// NewIndex strips posts down to listing descriptors, keeping their order.
func NewIndex(posts []blog.Post) blog.Index {
	entries := make([]blog.IndexEntry, 0, len(posts))
	for _, p := range posts {
		var date *string
		if p.Date != "" {
			d := p.Date
			date = &d
		}
		entries = append(entries, blog.IndexEntry{
			Title:           p.Title,
			Date:            date,
			Category:        p.Category,
			Excerpt:         p.Excerpt,
			Slug:            p.Slug,
			ImageURL:        p.ListingImage(),
			Photographer:    p.Photographer,
			PhotographerURL: p.PhotographerURL,
			PexelsURL:       p.PexelsURL,
		})
	}
	return blog.Index{Posts: entries}
}

// EncodeIndex renders the index as two-space indented JSON with a trailing newline.
func EncodeIndex(posts []blog.Post) ([]byte, error) {
	out, err := json.MarshalIndent(NewIndex(posts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	return append(out, '\n'), nil
}
