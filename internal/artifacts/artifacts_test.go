package artifacts

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saabsa/site-builder/internal/blog"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func samplePosts() []blog.Post {
	return []blog.Post{
		{Title: "B", Date: "2024-03-01", Category: "News", Slug: "b", ImageURL: "https://img/large.jpg", ImageMedium: "https://img/medium.jpg",
			Photographer: "Ana", PhotographerURL: "https://pexels/@ana", PexelsURL: "https://pexels/photo/1"},
		{Title: "A", Date: "2024-01-01", Category: "General", Slug: "a", ImageURL: "https://cdn/manual.jpg"},
		{Title: "Undated", Category: "General", Slug: "undated"},
	}
}

func TestNewIndexPreservesOrderAndPicksImage(t *testing.T) {
	idx := NewIndex(samplePosts())
	require.Len(t, idx.Posts, 3)

	assert.Equal(t, []string{"b", "a", "undated"}, []string{idx.Posts[0].Slug, idx.Posts[1].Slug, idx.Posts[2].Slug})
	assert.Equal(t, "https://img/medium.jpg", idx.Posts[0].ImageURL)
	assert.Equal(t, "https://cdn/manual.jpg", idx.Posts[1].ImageURL)
	assert.Equal(t, "", idx.Posts[2].ImageURL)
	assert.Equal(t, "Ana", idx.Posts[0].Photographer)
	assert.Equal(t, "", idx.Posts[1].Photographer)
	require.NotNil(t, idx.Posts[0].Date)
	assert.Equal(t, "2024-03-01", *idx.Posts[0].Date)
	assert.Nil(t, idx.Posts[2].Date)
}

func TestEncodeIndexFormat(t *testing.T) {
	out, err := EncodeIndex(samplePosts())
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "{\n  \"posts\": [\n    {\n      \"title\": \"B\","))
	assert.True(t, strings.HasSuffix(s, "}\n"))
	assert.Contains(t, s, `"date": null`)
	assert.Contains(t, s, `"pexelsUrl": ""`)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded["posts"], 3)
	keys := []string{"title", "date", "category", "excerpt", "slug", "imageUrl", "photographer", "photographerUrl", "pexelsUrl"}
	for _, k := range keys {
		assert.Contains(t, decoded["posts"][1], k)
	}
}

func TestEncodeIndexEmpty(t *testing.T) {
	out, err := EncodeIndex(nil)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"posts\": []\n}\n", string(out))
}

func TestSitemapBuild(t *testing.T) {
	clock := fixedClock{t: time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)}
	out, err := NewSitemapBuilder("https://www.example.com/", nil, clock).Build(samplePosts())
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, xml.Header))
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	var parsed urlSet
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Len(t, parsed.URLs, 6)

	assert.Equal(t, sitemapURL{Loc: "https://www.example.com/", LastMod: "2024-06-15", Priority: "1.0", ChangeFreq: "weekly"}, parsed.URLs[0])
	assert.Equal(t, sitemapURL{Loc: "https://www.example.com/services.html", LastMod: "2024-06-15", Priority: "0.9", ChangeFreq: "monthly"}, parsed.URLs[1])
	assert.Equal(t, sitemapURL{Loc: "https://www.example.com/blog.html", LastMod: "2024-06-15", Priority: "0.8", ChangeFreq: "weekly"}, parsed.URLs[2])
	assert.Equal(t, sitemapURL{Loc: "https://www.example.com/blog/b.html", LastMod: "2024-03-01", Priority: "0.7", ChangeFreq: "monthly"}, parsed.URLs[3])
	assert.Equal(t, sitemapURL{Loc: "https://www.example.com/blog/a.html", LastMod: "2024-01-01", Priority: "0.7", ChangeFreq: "monthly"}, parsed.URLs[4])
	assert.Equal(t, "2024-06-15", parsed.URLs[5].LastMod)
}

func TestSitemapCustomStaticPages(t *testing.T) {
	clock := fixedClock{t: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	pages := []StaticPage{{Path: "/about.html", Priority: "0.5", ChangeFreq: "yearly"}}
	out, err := NewSitemapBuilder("https://x.test", pages, clock).Build(nil)
	require.NoError(t, err)

	var parsed urlSet
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Len(t, parsed.URLs, 1)
	assert.Equal(t, "https://x.test/about.html", parsed.URLs[0].Loc)
}
