// Package chat collects message evidence from a Slack style search API.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/fetchcache"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// DefaultBaseURL targets the Slack Web API.
const DefaultBaseURL = "https://slack.com/api"

// snippetLen bounds how much message text lands in evidence details.
const snippetLen = 60

// Source fetches messages sent by the configured user IDs. Each user ID is
// one cache origin.
type Source struct{}

var _ contract.EvidenceSource = &Source{} // Compile-time check

// NewSource creates a chat source.
func NewSource() *Source {
	return &Source{}
}

// Name implements the EvidenceSource interface.
func (s *Source) Name() schema.Source {
	return schema.ChatSource
}

// Collect implements the EvidenceSource interface.
func (s *Source) Collect(ctx context.Context, cfg *contract.Config) ([]schema.EvidenceRecord, error) {
	if !cfg.UseChat || cfg.ChatToken == "" || len(cfg.ChatUserIDs) == 0 {
		return nil, nil
	}
	store := fetchcache.GetStore()
	if store == nil {
		store = fetchcache.NewMemoryStore()
	}
	client := NewClient(cfg)
	fetcher := fetchcache.NewFetcher(store, client, fetchcache.FetchConfig{
		Workers:      cfg.Workers,
		SliceDays:    cfg.SliceDays,
		MaxAttempts:  cfg.MaxAttempts,
		ForceRefresh: cfg.ForceRefresh,
	})

	result, err := fetcher.FetchAll(ctx, cfg.ChatUserIDs, cfg.Since, cfg.Until)
	if err != nil {
		return nil, err
	}
	for _, origin := range result.Incomplete {
		contract.LogWarn(fmt.Sprintf("Chat history for %s is incomplete for the requested range", origin), nil)
	}
	return result.Records, nil
}

// Client implements fetchcache.PageClient against the message search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pageSize   int
	loc        *time.Location
}

var _ fetchcache.PageClient = &Client{} // Compile-time check

// NewClient builds an API client from the run configuration.
func NewClient(cfg *contract.Config) *Client {
	baseURL := cfg.ChatBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      cfg.ChatToken,
		pageSize:   schema.DefaultPageSize,
		loc:        cfg.Loc,
	}
}

// searchResponse mirrors the fields we need from the API payload.
type searchResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages struct {
		Matches []struct {
			TS      string `json:"ts"`
			Text    string `json:"text"`
			Channel struct {
				Name string `json:"name"`
			} `json:"channel"`
		} `json:"matches"`
		Paging struct {
			Page  int `json:"page"`
			Pages int `json:"pages"`
		} `json:"paging"`
	} `json:"messages"`
}

// Search fetches one page of messages sent by origin (a user ID) within the
// slice range. The cursor is the next page number.
func (c *Client) Search(ctx context.Context, origin string, r fetchcache.Range, cursor string) (fetchcache.Page, error) {
	page := 1
	if cursor != "" {
		p, err := strconv.Atoi(cursor)
		if err != nil {
			return fetchcache.Page{}, fmt.Errorf("bad page cursor %q: %w", cursor, err)
		}
		page = p
	}

	// The search operators take civil dates and exclude the named day, so
	// widen by one day on each side and rely on the range filter.
	query := fmt.Sprintf("from:<@%s> after:%s before:%s",
		origin,
		r.Since.AddDate(0, 0, -1).Format(contract.DateFormat),
		r.Until.Format(contract.DateFormat))

	params := url.Values{}
	params.Set("query", query)
	params.Set("count", strconv.Itoa(c.pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("sort", "timestamp")
	params.Set("sort_dir", "asc")

	target := c.baseURL + "/search.messages?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fetchcache.Page{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fetchcache.Page{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fetchcache.Page{}, &fetchcache.RateLimitError{Wait: retryAfter(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fetchcache.Page{}, fmt.Errorf("chat API returned %d for %s: %s", resp.StatusCode, origin, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fetchcache.Page{}, fmt.Errorf("decoding chat API response for %s: %w", origin, err)
	}
	if !sr.OK {
		if sr.Error == "ratelimited" {
			return fetchcache.Page{}, &fetchcache.RateLimitError{Wait: retryAfter(resp)}
		}
		return fetchcache.Page{}, fmt.Errorf("chat API error for %s: %s", origin, sr.Error)
	}

	var records []schema.EvidenceRecord
	for _, m := range sr.Messages.Matches {
		ts, err := parseSlackTS(m.TS)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Dropping message with unparseable ts %q", m.TS), err)
			continue
		}
		when := ts.In(c.loc)
		if when.Before(r.Since) || !when.Before(r.Until) {
			continue // outside the slice after the one-day widening
		}
		records = append(records, schema.EvidenceRecord{
			ID:        origin + "/" + m.TS,
			Source:    schema.ChatSource,
			Origin:    channelName(m.Channel.Name),
			Label:     snippet(m.Text),
			Timestamp: when,
		})
	}

	next := ""
	if sr.Messages.Paging.Pages > sr.Messages.Paging.Page {
		next = strconv.Itoa(sr.Messages.Paging.Page + 1)
	}
	return fetchcache.Page{Records: records, NextCursor: next}, nil
}

// parseSlackTS converts a "1714581632.000200" timestamp into a time.Time.
func parseSlackTS(ts string) (time.Time, error) {
	secStr, fracStr, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	var nsec int64
	if fracStr != "" {
		frac, err := strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		for i := len(fracStr); i < 9; i++ {
			frac *= 10
		}
		nsec = frac
	}
	return time.Unix(sec, nsec), nil
}

func channelName(name string) string {
	if name == "" {
		return "dm"
	}
	return name
}

// snippet compresses message text to a single short line.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > snippetLen {
		return string(runes[:snippetLen]) + "..."
	}
	return text
}

// retryAfter parses the Retry-After header, falling back to a minute when
// the remote does not say.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Minute
}
