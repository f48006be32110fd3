package activity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsJSON(n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf(
			`{"id":"%d","type":"PushEvent","repo":{"id":%d,"name":"octo/repo-%d"},"created_at":"2024-03-0%dT10:00:00Z"}`,
			i, i, i, 9-i%9))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestFetchReturnsAtMostFiveInOrder(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 30} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/octocat/events/public", r.URL.Path)
				assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
				assert.NotEmpty(t, r.Header.Get("User-Agent"))
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, eventsJSON(n))
			}))
			defer srv.Close()

			c := NewClient(WithBaseURL(srv.URL))
			events := c.Fetch(context.Background(), "octocat")

			want := n
			if want > MaxEvents {
				want = MaxEvents
			}
			require.Len(t, events, want)
			for i, e := range events {
				assert.Equal(t, fmt.Sprintf("octo/repo-%d", i), e.RepoName)
				assert.Equal(t, "PushEvent", e.Type)
				assert.Equal(t, "Push", e.DisplayType())
			}
		})
	}
}

func TestFetchParsesCreatedAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"type":"WatchEvent","repo":{"name":"a/b"},"created_at":"2024-01-02T03:04:05Z"}]`)
	}))
	defer srv.Close()

	events := NewClient(WithBaseURL(srv.URL)).Fetch(context.Background(), "someone")
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), events[0].CreatedAt)
	assert.Equal(t, "Watch", events[0].DisplayType())
}

func TestFetchFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"type":`)
		}},
		{"object instead of array", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"message":"hi"}`)
		}},
		{"bad timestamp", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"type":"PushEvent","repo":{"name":"a/b"},"created_at":"yesterday"}]`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			events := NewClient(WithBaseURL(srv.URL)).Fetch(context.Background(), "octocat")
			assert.NotNil(t, events)
			assert.Empty(t, events)
		})
	}
}

func TestFetchTimeoutYieldsEmpty(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	events := NewClient(WithBaseURL(srv.URL)).Fetch(ctx, "octocat")
	assert.Empty(t, events)
}

func TestFetchUnreachableYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	events := NewClient(WithBaseURL(base)).Fetch(context.Background(), "octocat")
	assert.Empty(t, events)
}

func TestFetchEmptyUsernameSkipsRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	events := NewClient(WithBaseURL(srv.URL)).Fetch(context.Background(), "")
	assert.Empty(t, events)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestWithLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, eventsJSON(8))
	}))
	defer srv.Close()

	assert.Len(t, NewClient(WithBaseURL(srv.URL), WithLimit(2)).Fetch(context.Background(), "u"), 2)
	assert.Len(t, NewClient(WithBaseURL(srv.URL), WithLimit(50)).Fetch(context.Background(), "u"), MaxEvents)
}

func TestFetchRefetchesEveryCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL + "/"))
	c.Fetch(context.Background(), "u")
	c.Fetch(context.Background(), "u")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
