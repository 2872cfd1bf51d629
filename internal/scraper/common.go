// Package scraper collects job postings from Kenyan job boards and feeds
// them into a running grid node through its public ingestion API. Each
// board has its own scraper; they share the worker pool, the skill
// extractor and the Job/Sink contract below.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job is one scraped posting, normalized across boards.
type Job struct {
	ID           string
	Source       string
	Title        string
	Company      string
	Location     string
	Description  string
	URL          string
	PostedAt     *time.Time
	Requirements []Requirement
}

// Requirement is one taxonomy skill a posting asks for.
type Requirement struct {
	Skill    string
	MinTrust float64
}

// Sink receives normalized jobs. The daemon backs it with the grid API
// client; tests use an in-memory fake.
type Sink interface {
	SubmitJob(ctx context.Context, job Job) error
}

// stableJobID derives a deterministic node key from the posting URL so a
// rescrape updates the same job instead of minting a duplicate.
func stableJobID(jobURL string) string {
	u := strings.TrimSpace(jobURL)
	if u == "" {
		return ""
	}
	return "job-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(u)).String()
}

// jobPostingLD is the schema.org JobPosting blob most boards embed in a
// ld+json script tag. Only the fields the grid cares about are decoded.
type jobPostingLD struct {
	Type               string `json:"@type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	DatePosted         string `json:"datePosted"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	JobLocation struct {
		Address struct {
			AddressLocality string `json:"addressLocality"`
			AddressRegion   string `json:"addressRegion"`
		} `json:"address"`
	} `json:"jobLocation"`
}

// parseJobPostingLD accepts a single JobPosting object or an array of
// typed objects, which is how some boards bundle their structured data.
func parseJobPostingLD(raw string) (jobPostingLD, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return jobPostingLD{}, false
	}

	var ld jobPostingLD
	if err := json.Unmarshal([]byte(raw), &ld); err == nil && isJobPosting(ld) {
		return ld, true
	}

	var many []jobPostingLD
	if err := json.Unmarshal([]byte(raw), &many); err == nil {
		for _, cand := range many {
			if isJobPosting(cand) {
				return cand, true
			}
		}
	}
	return jobPostingLD{}, false
}

func isJobPosting(ld jobPostingLD) bool {
	return strings.EqualFold(strings.TrimSpace(ld.Type), "JobPosting")
}

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// stripTags flattens the HTML fragments JobPosting descriptions carry
// into plain text for the skill extractor.
func stripTags(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

const maxDescriptionLen = 4000

// clampText bounds scraped descriptions; the store keeps them in memory.
func clampText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDescriptionLen {
		return s
	}
	cut := s[:maxDescriptionLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}

func httpGetWithRetry(ctx context.Context, client *http.Client, url string, attempts int) ([]byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var body []byte
	var lastErr error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range httpHeaders() {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			continue
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("status %d", resp.StatusCode)
				return
			}
			b, err := readAllLimit(resp.Body, 5<<20)
			if err != nil {
				lastErr = err
				return
			}
			lastErr = nil
			body = b
		}()
		if lastErr == nil {
			return body, nil
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return nil, lastErr
}

func readAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: max}
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if lr.N <= 0 {
		return nil, fmt.Errorf("response too large")
	}
	return b, nil
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "WorkforceGridScraper/0.1",
		"Accept-Language": "en-KE,en;q=0.9,sw;q=0.8",
	}
}

func normalizeURL(u string) string {
	return strings.TrimSpace(u)
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

// parseTimeOrNil accepts the timestamp shapes boards actually publish:
// RFC 3339 or a bare date.
func parseTimeOrNil(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if tm, err := time.Parse(layout, s); err == nil {
			tm = tm.UTC()
			return &tm
		}
	}
	return nil
}

func hostFromBaseURL(base, fallback string) string {
	base = strings.TrimSpace(base)
	u, err := url.Parse(base)
	if err != nil {
		return fallback
	}
	host := u.Host
	if host == "" {
		return fallback
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
