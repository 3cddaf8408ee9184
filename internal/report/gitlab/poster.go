package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/shini4i/helm-deploy/internal/report"
)

const (
	defaultAPIPrefix   = "/api/v4"
	privateTokenHeader = "PRIVATE-TOKEN"
)

// Config describes settings required to post notes to a GitLab Merge Request.
type Config struct {
	BaseURL         string
	Token           string
	ProjectID       string
	MergeRequestIID int
	HTTPClient      *http.Client
	APIPrefix       string
}

// Poster publishes deployment summaries as Merge Request notes.
type Poster struct {
	client   *http.Client
	endpoint string
	token    string
}

var _ report.Poster = (*Poster)(nil)

// NewPoster builds a GitLab Merge Request note poster.
func NewPoster(cfg Config) (*Poster, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gitlab: base URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("gitlab: token is required")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("gitlab: project ID is required")
	}
	if cfg.MergeRequestIID <= 0 {
		return nil, fmt.Errorf("gitlab: merge request IID is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("gitlab: parse base URL: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	apiPrefix := cfg.APIPrefix
	if apiPrefix == "" {
		apiPrefix = defaultAPIPrefix
	}

	// The project path is escaped as a single segment, so RawPath keeps %2F intact.
	endpoint := *base
	endpoint.Path = path.Join(base.Path, apiPrefix, "projects", cfg.ProjectID, "merge_requests", fmt.Sprint(cfg.MergeRequestIID), "notes")
	endpoint.RawPath = path.Join(base.EscapedPath(), apiPrefix, "projects", url.PathEscape(cfg.ProjectID), "merge_requests", fmt.Sprint(cfg.MergeRequestIID), "notes")

	return &Poster{
		client:   client,
		endpoint: endpoint.String(),
		token:    cfg.Token,
	}, nil
}

// Post sends body to the Merge Request notes endpoint.
func (p *Poster) Post(ctx context.Context, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("gitlab: note body is empty")
	}

	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("gitlab: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gitlab: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(privateTokenHeader, p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("gitlab: perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gitlab: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
