package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// GridClient pushes scraped jobs into a running grid node over its
// public API and resolves the taxonomy for the extractor.
type GridClient struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// NewGridClient returns nil when baseURL is empty, matching how callers
// treat an unconfigured grid endpoint.
func NewGridClient(baseURL string, logger *log.Logger) *GridClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GridClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type submitJobRequest struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Company      string                 `json:"company,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Source       string                 `json:"source,omitempty"`
	PostedAt     *time.Time             `json:"posted_at,omitempty"`
	Location     string                 `json:"location,omitempty"`
	Requirements []submitJobRequirement `json:"requirements,omitempty"`
}

type submitJobRequirement struct {
	Skill    string  `json:"skill"`
	MinTrust float64 `json:"min_trust"`
}

type skillListEnvelope struct {
	Status string `json:"status"`
	Data   []struct {
		Name string `json:"name"`
	} `json:"data"`
}

// SubmitJob posts one job through the same validated ingestion path the
// API serves to everyone else.
func (c *GridClient) SubmitJob(ctx context.Context, job Job) error {
	if c == nil || c.client == nil {
		return errors.New("nil grid client")
	}
	endpoint := c.baseURL + "/api/v1/jobs"

	payload := submitJobRequest{
		ID:          job.ID,
		Title:       job.Title,
		Company:     job.Company,
		Description: job.Description,
		Source:      job.Source,
		PostedAt:    job.PostedAt,
		Location:    job.Location,
	}
	for _, r := range job.Requirements {
		payload.Requirements = append(payload.Requirements, submitJobRequirement{Skill: r.Skill, MinTrust: r.MinTrust})
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		bodyStr := strings.TrimSpace(string(rb))
		err := fmt.Errorf("submit job failed: status=%d body=%s", resp.StatusCode, bodyStr)
		c.logger.Printf("[Scrape] SubmitJob error endpoint=%s status=%d body=%q", endpoint, resp.StatusCode, bodyStr)
		return err
	}
	return nil
}

// Skills fetches the taxonomy so the extractor knows what to look for.
func (c *GridClient) Skills(ctx context.Context) ([]string, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("nil grid client")
	}

	body, err := httpGetWithRetry(ctx, c.client, c.baseURL+"/api/v1/skills", 3)
	if err != nil {
		return nil, err
	}

	var env skillListEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(env.Data))
	for _, s := range env.Data {
		if v := strings.TrimSpace(s.Name); v != "" {
			names = append(names, v)
		}
	}
	if len(names) == 0 {
		return nil, errors.New("taxonomy returned no skills")
	}
	return names, nil
}

var _ Sink = (*GridClient)(nil)
