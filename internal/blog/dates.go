package blog

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// DateLayout is the ISO date layout used in sources, sitemaps, and indexes.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate parses a post date. Missing or unparseable dates resolve to the
// Unix epoch so they sort after every dated post.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Unix(0, 0).UTC()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Unix(0, 0).UTC()
}

// LongDate formats an ISO date as "January 2, 2006". Unparseable input is
// returned unchanged.
func LongDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format("January 2, 2006")
}

// SortNewestFirst orders posts by date descending. The sort is stable, so
// posts sharing a date keep their relative load order.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return ParseDate(posts[i].Date).After(ParseDate(posts[j].Date))
	})
}

var (
	markdownDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)
	jsonDatePrefix     = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[_-]`)
)

// DateFromFilename extracts a leading YYYY-MM-DD date followed by "_" or "-".
func DateFromFilename(name string) string {
	m := jsonDatePrefix.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// SlugFromFilename strips the extension and any leading date prefix. Markdown
// sources only recognize a "-" separator after the date; JSON sources accept
// "_" or "-".
func SlugFromFilename(name string, format SourceFormat) string {
	base := name
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	if format == FormatJSON {
		return jsonDatePrefix.ReplaceAllString(base, "")
	}
	return markdownDatePrefix.ReplaceAllString(base, "")
}
