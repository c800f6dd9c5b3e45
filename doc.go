// Command blogctl builds the company blog and keeps search engines informed.
//
// Architecture overview:
//   - Sources: internal/loader reads Markdown (front matter plus body) and JSON post files from
//     paths.posts_dir, derives slugs and dates from file names, rejects duplicate slugs and sorts
//     the collection newest first.
//   - Enrichment: when a Pexels key is configured, internal/enrich looks up one landscape photo per
//     post keyword, strictly one request at a time through the keyed rate limiter.
//   - Output: internal/render produces one HTML page per post; internal/artifacts produces the
//     listing index and sitemap. Everything is written through a BlobStore (local directory, GCS
//     bucket or memory) by internal/pipeline, which then optionally publishes a build event to
//     Pub/Sub and pushes metrics to a Pushgateway.
//   - Indexing: internal/indexing signs a service-account assertion, exchanges it for a token and
//     publishes a single URL notification. It shares no state with the build.
//   - Preview: internal/preview serves the output root with caching disabled, gates /admin/ behind
//     a shared password and rebuilds on source changes.
//
// Quick checklist:
//   - Configure env vars: PEXELS_API_KEY, GOOGLE_INDEXING_KEY, and BLOG_* overrides of any config key
//     (BLOG_SITE_BASE_URL, BLOG_STORAGE_PROVIDER, BLOG_PUBSUB_TOPIC_NAME, ...).
//   - Build: go run . build (or go run . --config blog.yaml build).
//   - Notify: go run . notify https://www.example.com/blog/post.html URL_UPDATED
//   - Preview: go run . serve --watch --port 8080
package main
