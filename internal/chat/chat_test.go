package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/fetchcache"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

func chatConfig(baseURL string) *contract.Config {
	return &contract.Config{
		Loc:         time.UTC,
		Since:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Until:       time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		UseChat:     true,
		ChatToken:   "xoxp-test",
		ChatUserIDs: []string{"U123"},
		ChatBaseURL: baseURL,
	}
}

func sliceRange() fetchcache.Range {
	return fetchcache.Range{
		Since: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

// ts returns the Slack timestamp string for a UTC time.
func ts(t time.Time) string {
	return fmt.Sprintf("%d.000200", t.Unix())
}

// TestClientSearchPagination verifies the query operators, the bearer token
// and the page-number cursor across a two page result.
func TestClientSearchPagination(t *testing.T) {
	evening := time.Date(2026, 8, 3, 20, 30, 0, 0, time.UTC)
	later := time.Date(2026, 8, 4, 22, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.messages", r.URL.Path)
		assert.Equal(t, "Bearer xoxp-test", r.Header.Get("Authorization"))

		query := r.URL.Query().Get("query")
		assert.Contains(t, query, "from:<@U123>")
		assert.Contains(t, query, "after:2026-07-31")
		assert.Contains(t, query, "before:2026-08-15")

		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprintf(w, `{"ok":true,"messages":{"matches":[{"ts":"%s","text":"deploying the fix now","channel":{"name":"eng-backend"}}],"paging":{"page":1,"pages":2}}}`, ts(evening))
		default:
			fmt.Fprintf(w, `{"ok":true,"messages":{"matches":[{"ts":"%s","text":"done","channel":{"name":""}}],"paging":{"page":2,"pages":2}}}`, ts(later))
		}
	}))
	defer server.Close()

	client := NewClient(chatConfig(server.URL))
	page, err := client.Search(context.Background(), "U123", sliceRange(), "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "U123/"+ts(evening), page.Records[0].ID)
	assert.Equal(t, schema.ChatSource, page.Records[0].Source)
	assert.Equal(t, "eng-backend", page.Records[0].Origin)
	assert.Equal(t, "deploying the fix now", page.Records[0].Label)
	assert.Equal(t, "2", page.NextCursor)

	page, err = client.Search(context.Background(), "U123", sliceRange(), page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "dm", page.Records[0].Origin)
	assert.Empty(t, page.NextCursor)
}

// TestClientSearchRangeFilter verifies messages outside the slice, pulled in
// by the one-day query widening, are dropped.
func TestClientSearchRangeFilter(t *testing.T) {
	tooEarly := time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC)
	inside := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"ok":true,"messages":{"matches":[{"ts":"%s","text":"before midnight"},{"ts":"%s","text":"after midnight"}],"paging":{"page":1,"pages":1}}}`,
			ts(tooEarly), ts(inside))
	}))
	defer server.Close()

	client := NewClient(chatConfig(server.URL))
	page, err := client.Search(context.Background(), "U123", sliceRange(), "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "after midnight", page.Records[0].Label)
}

// TestClientSearchRateLimited verifies both the HTTP 429 and the in-body
// "ratelimited" error surface as RateLimitError.
func TestClientSearchRateLimited(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    time.Duration
	}{
		{
			name: "http 429",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: 30 * time.Second,
		},
		{
			name: "ok false ratelimited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"ok":false,"error":"ratelimited"}`)
			},
			want: time.Minute,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewClient(chatConfig(server.URL))
			_, err := client.Search(context.Background(), "U123", sliceRange(), "")
			var rlErr *fetchcache.RateLimitError
			require.ErrorAs(t, err, &rlErr)
			assert.Equal(t, tc.want, rlErr.Wait)
		})
	}
}

// TestClientSearchAPIError verifies other in-body errors become plain errors.
func TestClientSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error":"invalid_auth"}`)
	}))
	defer server.Close()

	client := NewClient(chatConfig(server.URL))
	_, err := client.Search(context.Background(), "U123", sliceRange(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
}

// TestParseSlackTS verifies second and fractional parsing.
func TestParseSlackTS(t *testing.T) {
	got, err := parseSlackTS("1714581632.000200")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1714581632, 200000).UTC(), got.UTC())

	got, err = parseSlackTS("1714581632")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1714581632, 0).UTC(), got.UTC())

	_, err = parseSlackTS("not-a-ts")
	assert.Error(t, err)
}

// TestSnippet verifies whitespace folding and rune-safe truncation.
func TestSnippet(t *testing.T) {
	assert.Equal(t, "multi line message", snippet("multi\n  line\tmessage"))

	long := strings.Repeat("héllo ", 20)
	out := snippet(long)
	assert.Len(t, []rune(out), snippetLen+3)
	assert.True(t, strings.HasSuffix(out, "..."))
}

// TestCollectUnconfigured verifies the source yields nothing without chat
// settings.
func TestCollectUnconfigured(t *testing.T) {
	records, err := NewSource().Collect(context.Background(), &contract.Config{UseChat: true})
	require.NoError(t, err)
	assert.Nil(t, records)
}
