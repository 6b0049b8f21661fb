package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/sitetrack/internal/repository"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxPages = 200
	maxErrorBody    = 64 * 1024
)

// Config configures the backend REST client.
type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	MaxPages int
}

// Client talks to the project-management REST backend.
type Client struct {
	baseURL  *url.URL
	token    string
	http     *http.Client
	maxPages int
	logger   *slog.Logger
}

// New creates a backend client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url must be absolute: %q", cfg.BaseURL)
	}
	// Endpoint paths are joined onto the base; keep them rooted.
	if base.Path == "" {
		base.Path = "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:  base,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		maxPages: maxPages,
		logger:   logger,
	}, nil
}

// endpoint resolves path and query against the base URL.
func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}

// do performs a request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, method string, target *url.URL, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: %v", repository.ErrUnavailable, method, target.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request", "method", method, "path", target.Path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseAPIError(resp.StatusCode, method, target.Path, data)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", repository.ErrUnavailable, err)
	}
	return data, nil
}

// getObject fetches a single JSON object into out.
func (c *Client) getObject(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.do(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// getList fetches every page of a list endpoint, following "next" links until
// they run out.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	target := c.endpoint(path, query)
	items := []T{}
	visited := make(map[string]struct{})

	for page := 0; target != nil; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("list %s: exceeded %d pages", path, c.maxPages)
		}
		key := target.String()
		if _, ok := visited[key]; ok {
			return nil, fmt.Errorf("list %s: pagination cycle at %s", path, target.Path)
		}
		visited[key] = struct{}{}

		data, err := c.do(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}

		payload := normalizeList(data)
		if payload.Shape == shapeUnrecognized {
			c.logger.Warn("unrecognized list payload, treating as empty", "path", target.Path)
			return items, nil
		}
		for _, raw := range payload.Items {
			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				return nil, fmt.Errorf("decode %s item: %w", path, err)
			}
			items = append(items, item)
		}

		target, err = c.resolveNext(payload.Next)
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// resolveNext resolves a "next" link, which may be absolute or relative.
func (c *Client) resolveNext(next string) (*url.URL, error) {
	next = strings.TrimSpace(next)
	if next == "" {
		return nil, nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return nil, fmt.Errorf("parse next link: %w", err)
	}
	return c.baseURL.ResolveReference(u), nil
}
