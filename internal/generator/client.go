package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lbradley/daybook/internal/cache"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/ratelimit"
)

const (
	generatePath = "/v1/schedule/generate"
	replanPath   = "/v1/schedule/replan"

	// Generated drafts are memoized briefly so client-side polling does not
	// turn into repeated generator calls for the same date.
	generateCacheTTL = 5 * time.Minute
)

// Client talks to the external content generator over HTTP. The rate
// limiter and response cache are injected so tests can run with a fake
// clock and so separate configurations can coexist.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	bucket  *ratelimit.Bucket
	cache   cache.Store
}

// NewClient creates a generator client. bucket and store may not be nil.
func NewClient(baseURL, token string, bucket *ratelimit.Bucket, store cache.Store) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		bucket:  bucket,
		cache:   store,
	}
}

func (c *Client) GenerateSchedule(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	cacheKey := "generate:" + req.Date
	if cached, ok := c.cache.Get(cacheKey); ok {
		if resp, ok := cached.(GenerateResponse); ok {
			return resp, nil
		}
	}

	if err := c.bucket.Wait(ctx); err != nil {
		return GenerateResponse{}, fmt.Errorf("generator rate limit: %w", err)
	}

	var resp GenerateResponse
	if err := c.post(ctx, generatePath, req, &resp); err != nil {
		return GenerateResponse{}, err
	}

	c.cache.Set(cacheKey, resp, generateCacheTTL)
	return resp, nil
}

func (c *Client) ReplanRemainder(ctx context.Context, req ReplanRequest) ([]models.TimeBlock, error) {
	// Replans are never cached: each one is relative to the current clock
	// and the drift that triggered it.
	if err := c.bucket.Wait(ctx); err != nil {
		return nil, fmt.Errorf("generator rate limit: %w", err)
	}

	var resp struct {
		Blocks []models.TimeBlock `json:"rescheduled_blocks"`
	}
	if err := c.post(ctx, replanPath, req, &resp); err != nil {
		return nil, err
	}
	return resp.Blocks, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("generator returned %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding generator response: %w", err)
	}
	return nil
}
