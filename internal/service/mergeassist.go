package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/pressmate/media-crm/api/internal/entity"
)

// ErrMergeAssistUnavailable signals that no merged snapshot could be
// obtained. The importer treats it as "fall back to the base variant" and
// never lets it fail an import.
var ErrMergeAssistUnavailable = errors.New("merge assist unavailable")

// MergeAssist produces a merged snapshot from a set of variants. It is a
// soft dependency: implementations may fail freely, the caller always has a
// fallback.
type MergeAssist interface {
	Merge(ctx context.Context, variants []entity.CandidateVariant) (*entity.ContactSnapshot, error)
}

// NoopMergeAssist is the fallback for deployments without a merge service.
type NoopMergeAssist struct{}

// Merge always reports the assist as unavailable.
func (NoopMergeAssist) Merge(context.Context, []entity.CandidateVariant) (*entity.ContactSnapshot, error) {
	return nil, ErrMergeAssistUnavailable
}

// HTTPMergeAssist calls an external merge service over HTTP.
type HTTPMergeAssist struct {
	client  *http.Client
	baseURL string
}

// NewHTTPMergeAssist builds the client, auto-configuring an ID token client
// when none is provided.
func NewHTTPMergeAssist(client *http.Client, baseURL string) *HTTPMergeAssist {
	if baseURL == "" {
		panic("merge assist baseURL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 15 * time.Second}
		} else {
			client = idc
		}
	}
	return &HTTPMergeAssist{client: client, baseURL: baseURL}
}

var _ MergeAssist = (*HTTPMergeAssist)(nil)

// Merge posts the variants to the merge service. Any transport failure or
// non-success response maps to ErrMergeAssistUnavailable.
func (c *HTTPMergeAssist) Merge(ctx context.Context, variants []entity.CandidateVariant) (*entity.ContactSnapshot, error) {
	body, err := json.Marshal(map[string]any{"variants": variants})
	if err != nil {
		return nil, fmt.Errorf("marshal merge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/merge", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create merge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMergeAssistUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrMergeAssistUnavailable, resp.StatusCode)
	}

	var assistResp struct {
		Success    bool                    `json:"success"`
		MergedData *entity.ContactSnapshot `json:"merged_data"`
		Error      string                  `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&assistResp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: decode response: %v", ErrMergeAssistUnavailable, err)
	}
	if !assistResp.Success || assistResp.MergedData == nil {
		if assistResp.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrMergeAssistUnavailable, assistResp.Error)
		}
		return nil, ErrMergeAssistUnavailable
	}
	return assistResp.MergedData, nil
}
