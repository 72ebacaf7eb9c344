package review

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/fetchcache"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

func reviewConfig(baseURL string) *contract.Config {
	return &contract.Config{
		Loc:             time.UTC,
		Since:           time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Until:           time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		UseReview:       true,
		ReviewUser:      "dev",
		ReviewPassword:  "app-password",
		ReviewWorkspace: "acme",
		ReviewRepos:     []string{"backend"},
		ReviewBaseURL:   baseURL,
	}
}

func sliceRange() fetchcache.Range {
	return fetchcache.Range{
		Since: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

// TestClientSearchPagination verifies the first request carries the merged
// query and the next-page URL is followed as the cursor.
func TestClientSearchPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "dev", user)
		assert.Equal(t, "app-password", pass)

		if r.URL.Path == "/repositories/acme/backend/pullrequests" {
			q := r.URL.Query().Get("q")
			assert.Contains(t, q, `state="MERGED"`)
			assert.Contains(t, q, "updated_on >= 2026-08-01T00:00:00Z")
			assert.Contains(t, q, "updated_on < 2026-08-15T00:00:00Z")
			fmt.Fprintf(w, `{"values":[{"id":1,"title":"Add cache layer","state":"MERGED","updated_on":"2026-08-03T19:30:00+00:00"}],"next":"%s/page2"}`, server.URL)
			return
		}
		assert.Equal(t, "/page2", r.URL.Path)
		fmt.Fprint(w, `{"values":[{"id":2,"title":"Fix pagination","state":"MERGED","updated_on":"2026-08-05T21:00:00+00:00"}]}`)
	}))
	defer server.Close()

	client := NewClient(reviewConfig(server.URL))
	page, err := client.Search(context.Background(), "acme/backend", sliceRange(), "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "acme/backend#1", page.Records[0].ID)
	assert.Equal(t, schema.ReviewSource, page.Records[0].Source)
	assert.Equal(t, "PR merged: Add cache layer", page.Records[0].Label)
	assert.Equal(t, time.Date(2026, 8, 3, 19, 30, 0, 0, time.UTC), page.Records[0].Timestamp)
	require.NotEmpty(t, page.NextCursor)

	page, err = client.Search(context.Background(), "acme/backend", sliceRange(), page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "acme/backend#2", page.Records[0].ID)
	assert.Empty(t, page.NextCursor)
}

// TestClientSearchRateLimited verifies a 429 surfaces as a RateLimitError
// carrying the Retry-After wait.
func TestClientSearchRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(reviewConfig(server.URL))
	_, err := client.Search(context.Background(), "acme/backend", sliceRange(), "")
	var rlErr *fetchcache.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 17*time.Second, rlErr.Wait)
}

// TestClientSearchServerError verifies non-200 responses become plain errors
// with the status in the message.
func TestClientSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no access", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(reviewConfig(server.URL))
	_, err := client.Search(context.Background(), "acme/backend", sliceRange(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

// TestCollectThroughCache verifies Collect goes through the fetch cache: the
// second run with the same range serves from the store without hitting the
// API again.
func TestCollectThroughCache(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, `{"values":[{"id":1,"title":"Add cache layer","state":"MERGED","updated_on":"2026-08-03T19:30:00+00:00"}]}`)
	}))
	defer server.Close()

	fetchcache.SetStore(fetchcache.NewMemoryStore())
	defer fetchcache.SetStore(nil)

	cfg := reviewConfig(server.URL)
	src := NewSource()

	records, err := src.Collect(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, hits)

	records, err = src.Collect(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, hits)
}

// TestCollectUnconfigured verifies the source yields nothing without review
// settings.
func TestCollectUnconfigured(t *testing.T) {
	records, err := NewSource().Collect(context.Background(), &contract.Config{})
	require.NoError(t, err)
	assert.Nil(t, records)
}

// TestRetryAfterFallback verifies a missing or junk header falls back to a
// minute.
func TestRetryAfterFallback(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, time.Minute, retryAfter(resp))

	resp.Header.Set("Retry-After", "soon")
	assert.Equal(t, time.Minute, retryAfter(resp))
}
