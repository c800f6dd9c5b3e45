// Package frontmatter extracts the flat key/value header that precedes a
// Markdown post body.
//
// The header is delimited by "---" lines. Each line inside it is either
// `key: "quoted value"` (with \" unescaped) or `key: unquoted value`. There is
// no nesting, no lists, and no type coercion: every value is a string.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
)

// Delimiter opens and closes the metadata block.
const Delimiter = "---"

// ErrNoFrontMatter is returned when the opening or closing delimiter is missing.
var ErrNoFrontMatter = errors.New("no front matter found")

var (
	// header is the only accepted shape: the opening delimiter at byte 0 and
	// a closing delimiter line that ends in a newline.
	header       = regexp.MustCompile(`(?s)^---\r?\n.*?\r?\n---\r?\n`)
	quotedLine   = regexp.MustCompile(`^(\w+):\s*"(.*)"\s*$`)
	unquotedLine = regexp.MustCompile(`^(\w+):\s*(.+?)\s*$`)
)

var format = frontmatter.NewFormat(Delimiter, Delimiter, unmarshalLines)

// Parse splits source into its metadata and the remaining body. A source
// without a complete delimited header is rejected with ErrNoFrontMatter, as
// is one whose first line is not exactly "---" or whose closing "---" is the
// last byte of the file.
func Parse(source []byte) (map[string]string, []byte, error) {
	if !header.Match(source) {
		return nil, nil, ErrNoFrontMatter
	}
	meta := map[string]string{}
	body, err := frontmatter.MustParse(bytes.NewReader(source), &meta, format)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, nil, ErrNoFrontMatter
		}
		return nil, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return meta, body, nil
}

// ParseLines applies the header grammar to an already extracted block.
func ParseLines(block string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if m := quotedLine.FindStringSubmatch(line); m != nil {
			out[m[1]] = strings.ReplaceAll(m[2], `\"`, `"`)
			continue
		}
		if m := unquotedLine.FindStringSubmatch(line); m != nil && m[2] != "" {
			out[m[1]] = m[2]
		}
	}
	return out
}

func unmarshalLines(data []byte, v any) error {
	dst, ok := v.(*map[string]string)
	if !ok {
		return fmt.Errorf("front matter target must be *map[string]string, got %T", v)
	}
	if *dst == nil {
		*dst = map[string]string{}
	}
	for k, val := range ParseLines(string(data)) {
		(*dst)[k] = val
	}
	return nil
}
