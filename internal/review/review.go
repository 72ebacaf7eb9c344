// Package review collects merged pull request evidence from a Bitbucket
// style review API.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/fetchcache"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// DefaultBaseURL targets the Bitbucket Cloud v2 API.
const DefaultBaseURL = "https://api.bitbucket.org/2.0"

const pageLen = 50

// Source fetches merged pull requests for the configured repositories.
// Each workspace/repo pair is one cache origin, so already-covered ranges
// are served from the fetch cache instead of the API.
type Source struct{}

var _ contract.EvidenceSource = &Source{} // Compile-time check

// NewSource creates a review source.
func NewSource() *Source {
	return &Source{}
}

// Name implements the EvidenceSource interface.
func (s *Source) Name() schema.Source {
	return schema.ReviewSource
}

// Collect implements the EvidenceSource interface.
func (s *Source) Collect(ctx context.Context, cfg *contract.Config) ([]schema.EvidenceRecord, error) {
	if !cfg.UseReview || len(cfg.ReviewRepos) == 0 {
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

	origins := make([]string, 0, len(cfg.ReviewRepos))
	for _, repo := range cfg.ReviewRepos {
		origins = append(origins, cfg.ReviewWorkspace+"/"+repo)
	}
	result, err := fetcher.FetchAll(ctx, origins, cfg.Since, cfg.Until)
	if err != nil {
		return nil, err
	}
	for _, origin := range result.Incomplete {
		contract.LogWarn(fmt.Sprintf("Review history for %s is incomplete for the requested range", origin), nil)
	}
	return result.Records, nil
}

// Client implements fetchcache.PageClient against the pull request API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	user       string
	password   string
	loc        *time.Location
}

var _ fetchcache.PageClient = &Client{} // Compile-time check

// NewClient builds an API client from the run configuration.
func NewClient(cfg *contract.Config) *Client {
	baseURL := cfg.ReviewBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		user:       cfg.ReviewUser,
		password:   cfg.ReviewPassword,
		loc:        cfg.Loc,
	}
}

// pullRequest mirrors the fields we need from the API payload.
type pullRequest struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	State     string `json:"state"`
	UpdatedOn string `json:"updated_on"`
}

type pullRequestPage struct {
	Values []pullRequest `json:"values"`
	Next   string        `json:"next"`
}

// Search fetches one page of merged pull requests for origin (a
// "workspace/repo" slug) within the slice range. The cursor is the API's own
// next-page URL.
func (c *Client) Search(ctx context.Context, origin string, r fetchcache.Range, cursor string) (fetchcache.Page, error) {
	target := cursor
	if target == "" {
		q := fmt.Sprintf(`state="MERGED" AND updated_on >= %s AND updated_on < %s`,
			r.Since.UTC().Format(time.RFC3339), r.Until.UTC().Format(time.RFC3339))
		target = fmt.Sprintf("%s/repositories/%s/pullrequests?q=%s&pagelen=%d&sort=updated_on",
			c.baseURL, origin, url.QueryEscape(q), pageLen)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fetchcache.Page{}, err
	}
	req.SetBasicAuth(c.user, c.password)
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
		return fetchcache.Page{}, fmt.Errorf("review API returned %d for %s: %s", resp.StatusCode, origin, string(body))
	}

	var page pullRequestPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return fetchcache.Page{}, fmt.Errorf("decoding review API response for %s: %w", origin, err)
	}

	var records []schema.EvidenceRecord
	for _, pr := range page.Values {
		ts, err := time.Parse(time.RFC3339, pr.UpdatedOn)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Dropping pull request %s#%d with unparseable date %q", origin, pr.ID, pr.UpdatedOn), err)
			continue
		}
		records = append(records, schema.EvidenceRecord{
			ID:        origin + "#" + strconv.Itoa(pr.ID),
			Source:    schema.ReviewSource,
			Origin:    origin,
			Label:     "PR merged: " + pr.Title,
			Timestamp: ts.In(c.loc),
		})
	}
	return fetchcache.Page{Records: records, NextCursor: page.Next}, nil
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
