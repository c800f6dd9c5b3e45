// Package app holds the long-lived services of one blogctl invocation, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/saabsa/site-builder/internal/artifacts"
	"github.com/saabsa/site-builder/internal/blog"
	"github.com/saabsa/site-builder/internal/config"
	"github.com/saabsa/site-builder/internal/enrich"
	"github.com/saabsa/site-builder/internal/id/uuid"
	"github.com/saabsa/site-builder/internal/indexing"
	"github.com/saabsa/site-builder/internal/loader"
	"github.com/saabsa/site-builder/internal/markdown"
	"github.com/saabsa/site-builder/internal/pexels"
	"github.com/saabsa/site-builder/internal/pipeline"
	"github.com/saabsa/site-builder/internal/policy/ratelimit"
	"github.com/saabsa/site-builder/internal/preview"
	pubsubpublisher "github.com/saabsa/site-builder/internal/publisher/pubsub"
	"github.com/saabsa/site-builder/internal/render"
	"github.com/saabsa/site-builder/internal/storage/gcs"
	"github.com/saabsa/site-builder/internal/storage/local"
	"github.com/saabsa/site-builder/internal/storage/memory"
)

// App holds the shared services. Build components are created on first use so
// that commands which never build (notify) never open storage or Pub/Sub.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	clock  blog.Clock

	mu       sync.Mutex
	pipeline *pipeline.Pipeline
	store    blog.BlobStore
	closers  []func() error
}

// New creates an App around an already loaded configuration.
func New(cfg config.Config, logger *zap.Logger, clock blog.Clock) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{cfg: cfg, logger: logger, clock: clock}
}

// Config returns the configuration the App was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store returns the output sink, or nil before the first Pipeline call.
func (a *App) Store() blog.BlobStore {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store
}

// Pipeline wires the build components on first call and returns the cached
// pipeline afterwards.
func (a *App) Pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pipeline != nil {
		return a.pipeline, nil
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var publisher blog.Publisher
	if a.cfg.PubSubEnabled() {
		a.logger.Info("Connecting to GCP Pub/Sub", zap.String("topic", a.cfg.PubSub.TopicName))
		pub, err := pubsubpublisher.Open(ctx, pubsubpublisher.Config{
			ProjectID: a.cfg.PubSub.ProjectID,
			TopicID:   a.cfg.PubSub.TopicName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize publisher: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		publisher = pub
	}

	var searcher blog.ImageSearcher
	if a.cfg.PexelsEnabled() {
		searcher = pexels.New(pexels.Config{
			APIKey:  a.cfg.Pexels.APIKey,
			BaseURL: a.cfg.Pexels.BaseURL,
			Timeout: a.cfg.PexelsTimeout(),
		})
	} else {
		a.logger.Info("No Pexels API key configured; image enrichment disabled")
	}
	limiter := ratelimit.New(ratelimit.Config{Interval: a.cfg.PexelsDelay()})

	renderer, err := render.New(a.cfg.RenderSite(a.clock.Now().Year()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	p, err := pipeline.New(pipeline.Options{
		PostsDir:       a.cfg.Paths.PostsDir,
		SiteURL:        a.cfg.Site.BaseURL,
		PushgatewayURL: a.cfg.Metrics.PushgatewayURL,
		MetricsJob:     a.cfg.Metrics.Job,
	}, pipeline.Deps{
		Loader:    loader.New(markdown.New(), a.logger.Named("loader")),
		Enricher:  enrich.New(searcher, limiter, a.logger.Named("enrich")),
		Renderer:  renderer,
		Sitemap:   artifacts.NewSitemapBuilder(a.cfg.Site.BaseURL, a.cfg.Site.StaticPages, a.clock),
		Store:     store,
		Publisher: publisher,
		Clock:     a.clock,
		IDs:       uuid.New(),
		Logger:    a.logger.Named("build"),
	})
	if err != nil {
		return nil, err
	}

	a.store = store
	a.pipeline = p
	return p, nil
}

func (a *App) openStore(ctx context.Context) (blog.BlobStore, error) {
	switch a.cfg.Storage.Provider {
	case config.StorageGCS:
		a.logger.Info("Using GCS storage provider", zap.String("bucket", a.cfg.Storage.GCSBucket))
		store, client, err := gcs.Open(ctx, gcs.Config{
			Bucket:       a.cfg.Storage.GCSBucket,
			Prefix:       a.cfg.Storage.Prefix,
			CacheControl: a.cfg.Storage.CacheControl,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return store, nil
	case config.StorageMemory:
		a.logger.Info("Using in-memory storage provider. Artifacts will be discarded.")
		return memory.NewBlobStore(), nil
	case config.StorageLocal, "":
		a.logger.Info("Using local storage provider", zap.String("dir", a.cfg.Paths.OutputRoot))
		return local.New(local.Config{BaseDir: a.cfg.Paths.OutputRoot})
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", a.cfg.Storage.Provider)
	}
}

// Notifier builds an indexing notifier from the configured credential.
// Status lines go to out.
func (a *App) Notifier(out io.Writer) (*indexing.Notifier, error) {
	creds, err := indexing.ParseCredentials(a.cfg.Indexing.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	return indexing.New(creds, indexing.Config{
		TokenURL:   a.cfg.Indexing.TokenURL,
		PublishURL: a.cfg.Indexing.PublishURL,
		Timeout:    a.cfg.IndexingTimeout(),
	}, a.clock, a.logger.Named("indexing"), out), nil
}

// PreviewServer returns a server for the local output root. A non-zero port
// overrides the configured one.
func (a *App) PreviewServer(port int) *preview.Server {
	if port == 0 {
		port = a.cfg.Preview.Port
	}
	return preview.NewServer(preview.Config{
		Port:          port,
		Root:          a.cfg.Paths.OutputRoot,
		AdminPassword: a.cfg.Preview.AdminPassword,
	}, a.logger.Named("preview"))
}

// Watcher returns a watcher on the posts directory that rebuilds through the
// pipeline.
func (a *App) Watcher(ctx context.Context) (*preview.Watcher, error) {
	p, err := a.Pipeline(ctx)
	if err != nil {
		return nil, err
	}
	rebuild := func(ctx context.Context) error {
		_, err := p.Build(ctx)
		return err
	}
	return preview.NewWatcher(a.cfg.Paths.PostsDir, a.cfg.PreviewDebounce(), loader.IsSource, rebuild, a.logger.Named("watch")), nil
}

// Close releases clients opened by Pipeline. It is safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger.Debug("Shutting down application services")
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Error closing service", zap.Error(err))
		}
	}
	a.closers = nil
}
