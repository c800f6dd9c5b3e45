package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saabsa/site-builder/internal/blog"
)

// Default endpoints.
const (
	DefaultTokenURL   = "https://oauth2.googleapis.com/token"
	DefaultPublishURL = "https://indexing.googleapis.com/v3/urlNotifications:publish"
)

// Notification types accepted by the publish endpoint.
const (
	URLUpdated = "URL_UPDATED"
	URLDeleted = "URL_DELETED"
)

const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// ErrInvalidType is returned for a notification type other than URLUpdated or URLDeleted.
var ErrInvalidType = errors.New("invalid notification type")

// Config controls a Notifier.
type Config struct {
	// TokenURL overrides the credential's token_uri.
	TokenURL   string
	PublishURL string
	Timeout    time.Duration
}

// Notifier performs the assertion, token exchange and publish calls.
type Notifier struct {
	creds      Credentials
	tokenURL   string
	publishURL string
	http       *http.Client
	clock      blog.Clock
	logger     *zap.Logger
	out        io.Writer
}

// Result reports the publish response.
type Result struct {
	Status int
	Body   string
}

// New creates a Notifier. Status lines are written to out when it is non-nil.
func New(creds Credentials, cfg Config, clock blog.Clock, logger *zap.Logger, out io.Writer) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = creds.TokenURI
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	publishURL := cfg.PublishURL
	if publishURL == "" {
		publishURL = DefaultPublishURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Notifier{
		creds:      creds,
		tokenURL:   tokenURL,
		publishURL: publishURL,
		http:       &http.Client{Timeout: timeout},
		clock:      clock,
		logger:     logger,
		out:        out,
	}
}

// ValidateType normalizes an empty type to URLUpdated and rejects anything else
// outside the two supported values.
func ValidateType(t string) (string, error) {
	switch t {
	case "":
		return URLUpdated, nil
	case URLUpdated, URLDeleted:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidType, t, URLUpdated, URLDeleted)
	}
}

// Notify announces one URL. Every failure is returned; nothing is retried.
func (n *Notifier) Notify(ctx context.Context, pageURL, notificationType string) (Result, error) {
	notificationType, err := ValidateType(notificationType)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(pageURL) == "" {
		return Result{}, fmt.Errorf("url is required")
	}

	assertion, err := SignAssertion(n.creds, n.tokenURL, n.clock.Now())
	if err != nil {
		return Result{}, err
	}
	token, err := n.exchange(ctx, assertion)
	if err != nil {
		return Result{}, err
	}
	return n.publish(ctx, token, pageURL, notificationType)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (n *Notifier) exchange(ctx context.Context, assertion string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := n.do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	var decoded tokenResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("token exchange failed (status %d): decode response: %w: %s", status, err, body)
	}
	if decoded.AccessToken == "" {
		return "", fmt.Errorf("token exchange failed (status %d): %s", status, body)
	}
	n.logger.Debug("access token obtained", zap.Int("status", status))
	return decoded.AccessToken, nil
}

func (n *Notifier) publish(ctx context.Context, token, pageURL, notificationType string) (Result, error) {
	payload, err := json.Marshal(map[string]string{"url": pageURL, "type": notificationType})
	if err != nil {
		return Result{}, fmt.Errorf("encode publish request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.publishURL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	status, body, err := n.do(req)
	if err != nil {
		return Result{}, fmt.Errorf("publish: %w", err)
	}
	if n.out != nil {
		_, _ = fmt.Fprintf(n.out, "[%d] %s → %s\n", status, pageURL, notificationType)
	}
	n.logger.Info("indexing notification sent",
		zap.Int("status", status),
		zap.String("url", pageURL),
		zap.String("type", notificationType),
	)
	result := Result{Status: status, Body: string(body)}
	if status < 200 || status > 299 {
		return result, fmt.Errorf("publish failed (status %d): %s", status, body)
	}
	return result, nil
}

func (n *Notifier) do(req *http.Request) (int, []byte, error) {
	resp, err := n.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
