// Package pipeline runs a full site build: load, enrich, render, then write
// pages, the listing index and the sitemap to the output sink.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saabsa/site-builder/internal/artifacts"
	"github.com/saabsa/site-builder/internal/blog"
	"github.com/saabsa/site-builder/internal/metrics"
	"github.com/saabsa/site-builder/internal/render"
)

// EventTopic labels the message published after a successful build.
const EventTopic = "blog.build.completed"

// Content types for written artifacts.
const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeXML  = "application/xml; charset=utf-8"
)

// PostLoader reads the post collection.
type PostLoader interface {
	Load(ctx context.Context, dir string) ([]blog.Post, error)
}

// PostEnricher attaches images to posts in place.
type PostEnricher interface {
	Enrich(ctx context.Context, posts []blog.Post) error
}

// PageRenderer renders one post page.
type PageRenderer interface {
	Render(post blog.Post) (string, error)
}

// SitemapBuilder renders the sitemap for the collection.
type SitemapBuilder interface {
	Build(posts []blog.Post) ([]byte, error)
}

// Options are the per-site settings of a build.
type Options struct {
	PostsDir       string
	SiteURL        string
	PushgatewayURL string
	MetricsJob     string
}

// Deps are the collaborators of a build. Enricher and Publisher are optional.
type Deps struct {
	Loader    PostLoader
	Enricher  PostEnricher
	Renderer  PageRenderer
	Sitemap   SitemapBuilder
	Store     blog.BlobStore
	Publisher blog.Publisher
	Clock     blog.Clock
	IDs       blog.IDGenerator
	Logger    *zap.Logger
}

// Pipeline runs builds. Builds are not safe to run concurrently against the
// same sink; callers serialize them.
type Pipeline struct {
	opts Options
	deps Deps
}

// New validates deps and returns a Pipeline.
func New(opts Options, deps Deps) (*Pipeline, error) {
	switch {
	case deps.Loader == nil:
		return nil, fmt.Errorf("pipeline: loader is required")
	case deps.Renderer == nil:
		return nil, fmt.Errorf("pipeline: renderer is required")
	case deps.Sitemap == nil:
		return nil, fmt.Errorf("pipeline: sitemap builder is required")
	case deps.Store == nil:
		return nil, fmt.Errorf("pipeline: blob store is required")
	case deps.Clock == nil:
		return nil, fmt.Errorf("pipeline: clock is required")
	case deps.IDs == nil:
		return nil, fmt.Errorf("pipeline: id generator is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Pipeline{opts: opts, deps: deps}, nil
}

// Build runs one build. Any render or write failure aborts it; artifacts
// already written stay in place.
func (p *Pipeline) Build(ctx context.Context) (blog.BuildResult, error) {
	buildID, err := p.deps.IDs.NewID()
	if err != nil {
		return blog.BuildResult{}, fmt.Errorf("build id: %w", err)
	}
	result := blog.BuildResult{BuildID: buildID, Started: p.deps.Clock.Now()}
	log := p.deps.Logger.With(zap.String("build_id", buildID))
	start := time.Now()

	posts, err := p.deps.Loader.Load(ctx, p.opts.PostsDir)
	if err != nil {
		return result, fmt.Errorf("load posts: %w", err)
	}
	log.Info("posts loaded", zap.Int("count", len(posts)), zap.String("dir", p.opts.PostsDir))

	if p.deps.Enricher != nil {
		if err := p.deps.Enricher.Enrich(ctx, posts); err != nil {
			return result, fmt.Errorf("enrich posts: %w", err)
		}
	}
	result.Posts = posts

	for _, post := range posts {
		html, err := p.deps.Renderer.Render(post)
		if err != nil {
			return result, fmt.Errorf("render %s: %w", post.Slug, err)
		}
		uri, err := p.put(ctx, render.PagePath(post.Slug), contentTypeHTML, []byte(html))
		if err != nil {
			return result, err
		}
		metrics.IncPagesWritten()
		result.Objects = append(result.Objects, uri)
		log.Info("page written", zap.String("slug", post.Slug), zap.String("uri", uri))
	}

	index, err := artifacts.EncodeIndex(posts)
	if err != nil {
		return result, err
	}
	uri, err := p.put(ctx, artifacts.IndexPath, contentTypeJSON, index)
	if err != nil {
		return result, err
	}
	result.Objects = append(result.Objects, uri)
	log.Info("index written", zap.String("uri", uri), zap.Int("entries", len(posts)))

	sitemap, err := p.deps.Sitemap.Build(posts)
	if err != nil {
		return result, err
	}
	uri, err = p.put(ctx, artifacts.SitemapPath, contentTypeXML, sitemap)
	if err != nil {
		return result, err
	}
	result.Objects = append(result.Objects, uri)
	log.Info("sitemap written", zap.String("uri", uri))

	result.Finished = p.deps.Clock.Now()
	metrics.ObserveBuildDuration(time.Since(start))

	p.publishEvent(ctx, log, result)
	p.pushMetrics(ctx, log)
	return result, nil
}

func (p *Pipeline) put(ctx context.Context, path, contentType string, data []byte) (string, error) {
	uri, err := p.deps.Store.PutObject(ctx, path, contentType, data)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return uri, nil
}

func (p *Pipeline) publishEvent(ctx context.Context, log *zap.Logger, result blog.BuildResult) {
	if p.deps.Publisher == nil {
		return
	}
	urls := make([]string, 0, len(result.Posts))
	for _, post := range result.Posts {
		urls = append(urls, render.PostURL(p.opts.SiteURL, post.Slug))
	}
	event := blog.BuildEvent{
		BuildID:     result.BuildID,
		SiteURL:     p.opts.SiteURL,
		PostURLs:    urls,
		CompletedAt: result.Finished,
	}
	id, err := p.deps.Publisher.Publish(ctx, EventTopic, event)
	if err != nil {
		log.Warn("build event publish failed", zap.Error(err))
		return
	}
	log.Info("build event published", zap.String("message_id", id))
}

func (p *Pipeline) pushMetrics(ctx context.Context, log *zap.Logger) {
	if p.opts.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, p.opts.PushgatewayURL, p.opts.MetricsJob); err != nil {
		log.Warn("metrics push failed", zap.Error(err))
		return
	}
	log.Debug("metrics pushed", zap.String("gateway", p.opts.PushgatewayURL))
}
