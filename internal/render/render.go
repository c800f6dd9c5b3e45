// Package render turns a post into a complete, self-contained HTML page.
//
// Rendering is a pure function of the post and the site settings: it reads no
// clock and no files after construction, so the same input always yields the
// same bytes.
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/saabsa/site-builder/internal/blog"
)

//go:embed templates/post.html.tmpl
var postTemplate string

// Site holds the constants shared by every page.
type Site struct {
	BaseURL          string
	Name             string
	DefaultImagePath string
	LogoPath         string
	MeasurementID    string
	Locale           string
	Language         string
	CopyrightYear    int
}

// Renderer executes the page template.
type Renderer struct {
	site Site
	tmpl *template.Template
}

type pageData struct {
	Site        Site
	Post        blog.Post
	URL         string
	Image       string
	Description string
	LongDate    string
	JSONLD      string
}

// New parses the embedded template.
func New(site Site) (*Renderer, error) {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	tmpl, err := template.New("post").Funcs(template.FuncMap{
		"escapeHTML": EscapeHTML,
		"escapeAttr": EscapeAttr,
	}).Parse(postTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse post template: %w", err)
	}
	return &Renderer{site: site, tmpl: tmpl}, nil
}

// PostURL is the canonical URL of a post page.
func PostURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/blog/" + slug + ".html"
}

// PagePath is the output path of a post page relative to the site root.
func PagePath(slug string) string {
	return "blog/" + slug + ".html"
}

// Render produces the HTML document for post.
func (r *Renderer) Render(post blog.Post) (string, error) {
	data := pageData{
		Site:        r.site,
		Post:        post,
		URL:         PostURL(r.site.BaseURL, post.Slug),
		Image:       post.ImageURL,
		Description: post.Description(),
		LongDate:    blog.LongDate(post.Date),
	}
	if data.Image == "" {
		data.Image = r.site.BaseURL + r.site.DefaultImagePath
	}

	ld, err := structuredData(r.site, post, data.URL, data.Image, data.Description)
	if err != nil {
		return "", err
	}
	data.JSONLD = ld

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", post.Slug, err)
	}
	return buf.String(), nil
}

type ldThing struct {
	Type string   `json:"@type"`
	Name string   `json:"name,omitempty"`
	URL  string   `json:"url,omitempty"`
	ID   string   `json:"@id,omitempty"`
	Logo *ldThing `json:"logo,omitempty"`
}

type ldPosting struct {
	Context          string  `json:"@context"`
	Type             string  `json:"@type"`
	Headline         string  `json:"headline"`
	Description      string  `json:"description"`
	Image            string  `json:"image"`
	DatePublished    *string `json:"datePublished,omitempty"`
	DateModified     *string `json:"dateModified,omitempty"`
	Author           ldThing `json:"author"`
	Publisher        ldThing `json:"publisher"`
	MainEntityOfPage ldThing `json:"mainEntityOfPage"`
	URL              string  `json:"url"`
	ArticleSection   string  `json:"articleSection"`
	InLanguage       string  `json:"inLanguage"`
}

func structuredData(site Site, post blog.Post, pageURL, image, description string) (string, error) {
	var date *string
	if post.Date != "" {
		date = &post.Date
	}
	section := post.Category
	if section == "" {
		section = blog.DefaultCategory
	}
	org := ldThing{Type: "Organization", Name: site.Name, URL: site.BaseURL}
	publisher := org
	publisher.Logo = &ldThing{Type: "ImageObject", URL: site.BaseURL + site.LogoPath}

	out, err := json.Marshal(ldPosting{
		Context:          "https://schema.org",
		Type:             "BlogPosting",
		Headline:         post.Title,
		Description:      description,
		Image:            image,
		DatePublished:    date,
		DateModified:     date,
		Author:           org,
		Publisher:        publisher,
		MainEntityOfPage: ldThing{Type: "WebPage", ID: pageURL},
		URL:              pageURL,
		ArticleSection:   section,
		InLanguage:       site.Language,
	})
	if err != nil {
		return "", fmt.Errorf("encode structured data: %w", err)
	}
	return string(out), nil
}
