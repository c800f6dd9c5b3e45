package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saabsa/site-builder/internal/artifacts"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(PexelsKeyEnv, "")
	t.Setenv(IndexingKeyEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://www.saabsa.com", cfg.Site.BaseURL)
	assert.Equal(t, "Saabsa Solutions", cfg.Site.Name)
	assert.Equal(t, "/og-image.png", cfg.Site.DefaultImage)
	assert.Equal(t, artifacts.DefaultStaticPages(), cfg.Site.StaticPages)
	assert.Equal(t, "_posts", cfg.Paths.PostsDir)
	assert.Equal(t, ".", cfg.Paths.OutputRoot)
	assert.Equal(t, StorageLocal, cfg.Storage.Provider)
	assert.Equal(t, 200*time.Millisecond, cfg.PexelsDelay())
	assert.Equal(t, 10*time.Second, cfg.PexelsTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.PreviewDebounce())
	assert.Equal(t, 8080, cfg.Preview.Port)
	assert.Equal(t, "https://indexing.googleapis.com/v3/urlNotifications:publish", cfg.Indexing.PublishURL)
	assert.False(t, cfg.PexelsEnabled())
	assert.False(t, cfg.PubSubEnabled())
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Setenv(PexelsKeyEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
site:
  base_url: https://blog.example.com
  name: Example
  static_pages:
    - path: /
      priority: "1.0"
      changefreq: daily
paths:
  posts_dir: content/posts
  output_root: public
pexels:
  delay_ms: 50
storage:
  provider: gcs
  gcs_bucket: site-bucket
  prefix: www
pubsub:
  project_id: proj
  topic_name: builds
metrics:
  pushgateway_url: http://pushgateway:9091
preview:
  port: 9000
  admin_password: hunter2
logging:
  development: false
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example.com", cfg.Site.BaseURL)
	assert.Equal(t, []artifacts.StaticPage{{Path: "/", Priority: "1.0", ChangeFreq: "daily"}}, cfg.Site.StaticPages)
	assert.Equal(t, "content/posts", cfg.Paths.PostsDir)
	assert.Equal(t, 50*time.Millisecond, cfg.PexelsDelay())
	assert.Equal(t, StorageGCS, cfg.Storage.Provider)
	assert.Equal(t, "site-bucket", cfg.Storage.GCSBucket)
	assert.True(t, cfg.PubSubEnabled())
	assert.Equal(t, "blog_build", cfg.Metrics.Job)
	assert.Equal(t, 9000, cfg.Preview.Port)
	assert.Equal(t, "hunter2", cfg.Preview.AdminPassword)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, "warn", cfg.Logging.Level)

	site := cfg.RenderSite(2025)
	assert.Equal(t, "Example", site.Name)
	assert.Equal(t, 2025, site.CopyrightYear)
}

func TestLoadSecretsFromEnvironment(t *testing.T) {
	t.Setenv(PexelsKeyEnv, "pexels-key")
	t.Setenv(IndexingKeyEnv, `{"client_email":"a@b"}`)
	t.Setenv("BLOG_PUBSUB_PROJECT_ID", "env-proj")
	t.Setenv("BLOG_PUBSUB_TOPIC_NAME", "env-topic")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pexels-key", cfg.Pexels.APIKey)
	assert.True(t, cfg.PexelsEnabled())
	assert.Equal(t, `{"client_email":"a@b"}`, cfg.Indexing.CredentialsJSON)
	assert.Equal(t, "env-proj", cfg.PubSub.ProjectID)
	assert.Equal(t, "env-topic", cfg.PubSub.TopicName)
}

func TestPrefixedSecretWins(t *testing.T) {
	t.Setenv(PexelsKeyEnv, "plain")
	t.Setenv("BLOG_PEXELS_API_KEY", "prefixed")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Pexels.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv(PexelsKeyEnv, "")
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative base url", func(c *Config) { c.Site.BaseURL = "/blog" }, "site.base_url"},
		{"empty name", func(c *Config) { c.Site.Name = " " }, "site.name"},
		{"empty posts dir", func(c *Config) { c.Paths.PostsDir = "" }, "paths.posts_dir"},
		{"negative delay", func(c *Config) { c.Pexels.DelayMs = -1 }, "pexels.delay_ms"},
		{"unknown storage", func(c *Config) { c.Storage.Provider = "s3" }, "storage.provider"},
		{"gcs without bucket", func(c *Config) { c.Storage.Provider = StorageGCS }, "storage.gcs_bucket"},
		{"half pubsub", func(c *Config) { c.PubSub.ProjectID = "p" }, "pubsub"},
		{"bad port", func(c *Config) { c.Preview.Port = 70000 }, "preview.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}
