package blog

import (
	"context"
	"time"
)

// BlobStore writes generated artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes build events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// ImageSearcher looks up a single photo for a keyword. A nil photo with a nil
// error means the search ran and found nothing.
type ImageSearcher interface {
	Search(ctx context.Context, keyword string) (*Photo, error)
}

// Limiter spaces out calls against an external rate limit.
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// MarkdownConverter renders a Markdown body into an HTML fragment.
type MarkdownConverter interface {
	Convert(source []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces build IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
