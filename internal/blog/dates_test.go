package blog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	epoch := time.Unix(0, 0).UTC()
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ParseDate("2024-03-01"))
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), ParseDate("2024-03-01T10:30:00Z"))
	assert.Equal(t, epoch, ParseDate(""))
	assert.Equal(t, epoch, ParseDate("next tuesday"))
}

func TestLongDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "March 1, 2024", LongDate("2024-03-01"))
	assert.Equal(t, "", LongDate(""))
	assert.Equal(t, "soon", LongDate("soon"))
}

func TestSortNewestFirst(t *testing.T) {
	t.Parallel()

	posts := []Post{
		{Slug: "undated"},
		{Slug: "a", Date: "2024-01-01"},
		{Slug: "b", Date: "2024-03-01"},
		{Slug: "garbage", Date: "not-a-date"},
		{Slug: "c", Date: "2023-12-31"},
	}
	SortNewestFirst(posts)

	got := make([]string, 0, len(posts))
	for _, p := range posts {
		got = append(got, p.Slug)
	}
	require.Equal(t, []string{"b", "a", "c"}, got[:3])
	assert.ElementsMatch(t, []string{"undated", "garbage"}, got[3:])
}

func TestSlugFromFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		format SourceFormat
		want   string
	}{
		{"2024-01-05-hello-world.md", FormatMarkdown, "hello-world"},
		{"2024-01-05_hello-world.md", FormatMarkdown, "2024-01-05_hello-world"},
		{"plain.md", FormatMarkdown, "plain"},
		{"2024-01-05_launch.json", FormatJSON, "launch"},
		{"2024-01-05-launch.json", FormatJSON, "launch"},
		{"launch.json", FormatJSON, "launch"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SlugFromFilename(tc.name, tc.format), tc.name)
	}
}

func TestDateFromFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01-05", DateFromFilename("2024-01-05_launch.json"))
	assert.Equal(t, "2024-01-05", DateFromFilename("2024-01-05-launch.json"))
	assert.Equal(t, "", DateFromFilename("20240105-launch.json"))
	assert.Equal(t, "", DateFromFilename("2024-01-05.json"))
}

func TestPostHelpers(t *testing.T) {
	t.Parallel()

	p := Post{Title: "Title"}
	assert.Equal(t, "Title", p.Description())
	assert.Equal(t, "", p.ListingImage())
	assert.False(t, p.HasAttribution())

	p.Excerpt = "Summary"
	p.ImageURL = "https://img/large.jpg"
	assert.Equal(t, "Summary", p.Description())
	assert.Equal(t, "https://img/large.jpg", p.ListingImage())

	p.ImageMedium = "https://img/medium.jpg"
	p.Photographer = "Ana"
	assert.Equal(t, "https://img/medium.jpg", p.ListingImage())
	assert.True(t, p.HasAttribution())
}
