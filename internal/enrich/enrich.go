// Package enrich attaches stock photos to posts that ask for one.
package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/saabsa/site-builder/internal/blog"
	"github.com/saabsa/site-builder/internal/metrics"
)

// LimiterKey is the rate limit bucket shared by every image lookup.
const LimiterKey = "pexels"

// Enricher looks up one photo per eligible post, strictly one at a time.
type Enricher struct {
	searcher blog.ImageSearcher
	limiter  blog.Limiter
	logger   *zap.Logger
}

// New creates an Enricher. A nil searcher disables enrichment entirely.
func New(searcher blog.ImageSearcher, limiter blog.Limiter, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{searcher: searcher, limiter: limiter, logger: logger}
}

// Enabled reports whether lookups will be attempted.
func (e *Enricher) Enabled() bool {
	return e.searcher != nil
}

// Enrich updates posts in place. Lookup failures leave the post unchanged;
// only context cancellation is returned.
func (e *Enricher) Enrich(ctx context.Context, posts []blog.Post) error {
	if !e.Enabled() {
		e.logger.Info("image search not configured, skipping image enrichment")
		return nil
	}
	for i := range posts {
		outcome, err := e.enrichOne(ctx, &posts[i])
		if err != nil {
			return err
		}
		if outcome != blog.LookupSkipped {
			metrics.ObserveImageLookup(string(outcome))
		}
	}
	return nil
}

func (e *Enricher) enrichOne(ctx context.Context, post *blog.Post) (blog.LookupOutcome, error) {
	log := e.logger.With(zap.String("slug", post.Slug))
	if post.ImageURL != "" {
		log.Debug("post already has an image")
		return blog.LookupSkipped, nil
	}
	if post.ImageKeyword == "" {
		log.Debug("post has no image keyword")
		return blog.LookupSkipped, nil
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, LimiterKey); err != nil {
			return blog.LookupFailed, fmt.Errorf("enrich %s: %w", post.Slug, err)
		}
	}

	photo, err := e.searcher.Search(ctx, post.ImageKeyword)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return blog.LookupFailed, fmt.Errorf("enrich %s: %w", post.Slug, ctxErr)
		}
		log.Warn("image lookup failed", zap.String("keyword", post.ImageKeyword), zap.Error(err))
		return blog.LookupFailed, nil
	}
	if photo == nil {
		log.Info("no image found", zap.String("keyword", post.ImageKeyword))
		return blog.LookupNotFound, nil
	}

	post.ImageURL = photo.URL
	post.ImageMedium = photo.Medium
	post.Photographer = photo.Photographer
	post.PhotographerURL = photo.PhotographerURL
	post.PexelsURL = photo.PageURL
	log.Info("image attached",
		zap.String("keyword", post.ImageKeyword),
		zap.String("photographer", photo.Photographer),
	)
	return blog.LookupFound, nil
}
