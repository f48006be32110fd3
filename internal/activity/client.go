// Package activity reads a GitHub user's public event feed.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"
	// MaxEvents is the number of events kept from the feed.
	MaxEvents = 5

	createdAtLayout = "2006-01-02T15:04:05Z"
	userAgent       = "devdash"
	maxBodyBytes    = 8 << 20
)

// Event is a single entry from the feed.
type Event struct {
	Type      string    `json:"type"`
	RepoName  string    `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayType returns the event type without its trailing "Event",
// e.g. "PushEvent" becomes "Push".
func (e Event) DisplayType() string {
	return strings.TrimSuffix(e.Type, "Event")
}

type rawEvent struct {
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt string `json:"created_at"`
}

// Client fetches public events. Failures never reach the caller; they are
// logged and reported as an empty feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limit      int
	logger     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimit sets how many events are kept. Values outside 1..MaxEvents are ignored.
func WithLimit(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= MaxEvents {
			c.limit = n
		}
	}
}

// NewClient creates a feed client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		limit:      MaxEvents,
		logger:     logging.NewLogger("devdash-activity"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns up to the configured limit of the user's most recent public
// events in the order the API returns them. It returns an empty slice on
// any failure, and when username is empty.
func (c *Client) Fetch(ctx context.Context, username string) []Event {
	if username == "" {
		return []Event{}
	}
	events, err := c.fetch(ctx, username)
	if err != nil {
		c.logger.WithError(err).WithField("user", username).Debug("Activity feed unavailable")
		return []Event{}
	}
	return events
}

func (c *Client) fetch(ctx context.Context, username string) ([]Event, error) {
	endpoint := fmt.Sprintf("%s/users/%s/events/public", c.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return parseEvents(body, c.limit)
}

func parseEvents(body []byte, limit int) ([]Event, error) {
	var raw []rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}

	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		createdAt, err := time.Parse(createdAtLayout, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", r.CreatedAt, err)
		}
		events = append(events, Event{
			Type:      r.Type,
			RepoName:  r.Repo.Name,
			CreatedAt: createdAt,
		})
	}
	return events, nil
}
