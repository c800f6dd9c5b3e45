// Package config loads and validates site builder configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/saabsa/site-builder/internal/artifacts"
	"github.com/saabsa/site-builder/internal/render"
)

// EnvPrefix prefixes every environment override, e.g. BLOG_SITE_BASE_URL.
const EnvPrefix = "BLOG"

// Secrets are also read from their conventional unprefixed variables.
const (
	PexelsKeyEnv   = "PEXELS_API_KEY"
	IndexingKeyEnv = "GOOGLE_INDEXING_KEY"
)

// Storage providers.
const (
	StorageLocal  = "local"
	StorageGCS    = "gcs"
	StorageMemory = "memory"
)

// Config captures every knob loaded via Viper. It is built once per process
// and passed down explicitly.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Pexels   PexelsConfig   `mapstructure:"pexels"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Indexing IndexingConfig `mapstructure:"indexing"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SiteConfig holds the constants rendered into every page and the sitemap.
type SiteConfig struct {
	BaseURL       string                 `mapstructure:"base_url"`
	Name          string                 `mapstructure:"name"`
	DefaultImage  string                 `mapstructure:"default_image"`
	Logo          string                 `mapstructure:"logo"`
	MeasurementID string                 `mapstructure:"measurement_id"`
	Locale        string                 `mapstructure:"locale"`
	Language      string                 `mapstructure:"language"`
	StaticPages   []artifacts.StaticPage `mapstructure:"static_pages"`
}

// PathsConfig locates sources and the local site root.
type PathsConfig struct {
	PostsDir   string `mapstructure:"posts_dir"`
	OutputRoot string `mapstructure:"output_root"`
}

// PexelsConfig configures optional image enrichment.
type PexelsConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	DelayMs        int    `mapstructure:"delay_ms"`
}

// StorageConfig selects where artifacts are written.
type StorageConfig struct {
	Provider     string `mapstructure:"provider"`
	GCSBucket    string `mapstructure:"gcs_bucket"`
	Prefix       string `mapstructure:"prefix"`
	CacheControl string `mapstructure:"cache_control"`
}

// PubSubConfig holds metadata for build event notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// MetricsConfig controls the Pushgateway push after a build.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// IndexingConfig configures the search indexing notifier. TokenURL, when set,
// overrides the token_uri carried by the credential.
type IndexingConfig struct {
	CredentialsJSON string `mapstructure:"credentials_json"`
	TokenURL        string `mapstructure:"token_url"`
	PublishURL      string `mapstructure:"publish_url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Port          int    `mapstructure:"port"`
	AdminPassword string `mapstructure:"admin_password"`
	DebounceMs    int    `mapstructure:"debounce_ms"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindSecrets(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://www.saabsa.com")
	v.SetDefault("site.name", "Saabsa Solutions")
	v.SetDefault("site.default_image", "/og-image.png")
	v.SetDefault("site.logo", "/patientreeLogo.png")
	v.SetDefault("site.measurement_id", "G-1PXBREVK1K")
	v.SetDefault("site.locale", "en_US")
	v.SetDefault("site.language", "en-US")
	pages := make([]map[string]any, 0, 3)
	for _, p := range artifacts.DefaultStaticPages() {
		pages = append(pages, map[string]any{"path": p.Path, "priority": p.Priority, "changefreq": p.ChangeFreq})
	}
	v.SetDefault("site.static_pages", pages)
	v.SetDefault("paths.posts_dir", "_posts")
	v.SetDefault("paths.output_root", ".")
	v.SetDefault("pexels.base_url", "https://api.pexels.com")
	v.SetDefault("pexels.timeout_seconds", 10)
	v.SetDefault("pexels.delay_ms", 200)
	v.SetDefault("storage.provider", StorageLocal)
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.cache_control", "")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "blog_build")
	v.SetDefault("indexing.token_url", "")
	v.SetDefault("indexing.publish_url", "https://indexing.googleapis.com/v3/urlNotifications:publish")
	v.SetDefault("indexing.timeout_seconds", 30)
	v.SetDefault("preview.port", 8080)
	v.SetDefault("preview.debounce_ms", 500)
	v.SetDefault("preview.admin_password", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// bindSecrets lets the two credentials come from their conventional variable
// names as well as the prefixed ones. The prefixed variable wins.
func bindSecrets(v *viper.Viper) error {
	if err := v.BindEnv("pexels.api_key", EnvPrefix+"_PEXELS_API_KEY", PexelsKeyEnv); err != nil {
		return fmt.Errorf("bind %s: %w", PexelsKeyEnv, err)
	}
	if err := v.BindEnv("indexing.credentials_json", EnvPrefix+"_INDEXING_CREDENTIALS_JSON", IndexingKeyEnv); err != nil {
		return fmt.Errorf("bind %s: %w", IndexingKeyEnv, err)
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL, got %q", c.Site.BaseURL)
	}
	if strings.TrimSpace(c.Site.Name) == "" {
		return fmt.Errorf("site.name must be set")
	}
	if strings.TrimSpace(c.Paths.PostsDir) == "" {
		return fmt.Errorf("paths.posts_dir must be set")
	}
	if c.Pexels.DelayMs < 0 {
		return fmt.Errorf("pexels.delay_ms must be >= 0")
	}
	if c.Pexels.TimeoutSeconds <= 0 {
		return fmt.Errorf("pexels.timeout_seconds must be > 0")
	}
	switch c.Storage.Provider {
	case StorageLocal:
		if strings.TrimSpace(c.Paths.OutputRoot) == "" {
			return fmt.Errorf("paths.output_root must be set for local storage")
		}
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is %q", StorageGCS)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.provider must be one of local, gcs, memory; got %q", c.Storage.Provider)
	}
	if (c.PubSub.ProjectID == "") != (c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set together")
	}
	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		return fmt.Errorf("metrics.job must be set when metrics.pushgateway_url is set")
	}
	if c.Indexing.TimeoutSeconds <= 0 {
		return fmt.Errorf("indexing.timeout_seconds must be > 0")
	}
	if c.Preview.Port <= 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview.port must be between 1 and 65535")
	}
	if c.Preview.DebounceMs < 0 {
		return fmt.Errorf("preview.debounce_ms must be >= 0")
	}
	return nil
}

// RenderSite converts the site section into renderer settings.
func (c Config) RenderSite(copyrightYear int) render.Site {
	return render.Site{
		BaseURL:          c.Site.BaseURL,
		Name:             c.Site.Name,
		DefaultImagePath: c.Site.DefaultImage,
		LogoPath:         c.Site.Logo,
		MeasurementID:    c.Site.MeasurementID,
		Locale:           c.Site.Locale,
		Language:         c.Site.Language,
		CopyrightYear:    copyrightYear,
	}
}

// PexelsEnabled reports whether image enrichment has a key to work with.
func (c Config) PexelsEnabled() bool {
	return strings.TrimSpace(c.Pexels.APIKey) != ""
}

// PexelsDelay is the minimum spacing between image lookups.
func (c Config) PexelsDelay() time.Duration {
	return time.Duration(c.Pexels.DelayMs) * time.Millisecond
}

// PexelsTimeout bounds a single image lookup.
func (c Config) PexelsTimeout() time.Duration {
	return time.Duration(c.Pexels.TimeoutSeconds) * time.Second
}

// IndexingTimeout bounds each indexing HTTP call.
func (c Config) IndexingTimeout() time.Duration {
	return time.Duration(c.Indexing.TimeoutSeconds) * time.Second
}

// PreviewDebounce is how long the watcher waits for writes to settle.
func (c Config) PreviewDebounce() time.Duration {
	return time.Duration(c.Preview.DebounceMs) * time.Millisecond
}

// PubSubEnabled reports whether build events should be published.
func (c Config) PubSubEnabled() bool {
	return c.PubSub.ProjectID != "" && c.PubSub.TopicName != ""
}
