// Package provider implements the HTTP client for the Readarr-style server
// that fronts both the external metadata catalog and the local library.
package provider

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

	"shelfarr/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Client talks to the provider API. It implements both
// domain.CatalogRepository and domain.LibraryRepository.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new provider API client.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated request. 5xx responses are retried
// with exponential backoff; everything else settles on the first attempt.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL = reqURL + "?" + query.Encode()
	}

	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var reqBody io.Reader
		if bodyBytes != nil {
			reqBody = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Api-Key", c.apiKey)
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("provider request", "method", method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("provider request failed", "error", err)
			return nil, domain.ErrProviderOffline
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			lastErr = &domain.StatusError{Code: resp.StatusCode, Message: serverMessage(body)}
			c.logger.Warn("provider server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"path", path,
			)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			se := &domain.StatusError{Code: resp.StatusCode, Message: serverMessage(body)}
			c.logger.Debug("provider request rejected", "status", resp.StatusCode, "message", se.Message)
			return nil, se
		}

		return body, nil
	}

	c.logger.Error("provider request failed after retries", "error", lastErr, "path", path)
	return nil, lastErr
}

// serverMessage extracts the provider's error message, falling back to the
// raw body so error notifications are never empty.
func serverMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		return er.Message
	}
	return strings.TrimSpace(string(body))
}

// --- domain.CatalogRepository ---

// GetAuthorBooks returns every catalog entry for an author.
func (c *Client) GetAuthorBooks(ctx context.Context, authorID string) ([]*domain.CatalogEntry, error) {
	path := fmt.Sprintf("/api/v1/author/%s/book", url.PathEscape(authorID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var resources []bookResource
	if err := json.Unmarshal(body, &resources); err != nil {
		return nil, fmt.Errorf("failed to parse author books: %w", err)
	}
	c.logger.Debug("fetched author books", "authorID", authorID, "count", len(resources))
	return toCatalogEntries(resources), nil
}

// GetSeriesBooks returns every catalog entry in a series.
func (c *Client) GetSeriesBooks(ctx context.Context, seriesID string) ([]*domain.CatalogEntry, error) {
	path := fmt.Sprintf("/api/v1/series/%s/book", url.PathEscape(seriesID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var resources []bookResource
	if err := json.Unmarshal(body, &resources); err != nil {
		return nil, fmt.Errorf("failed to parse series books: %w", err)
	}
	c.logger.Debug("fetched series books", "seriesID", seriesID, "count", len(resources))
	return toCatalogEntries(resources), nil
}

// Search returns catalog entries matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]*domain.CatalogEntry, error) {
	q := url.Values{}
	q.Set("term", query)
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v1/search", q, nil)
	if err != nil {
		return nil, err
	}

	var resources []bookResource
	if err := json.Unmarshal(body, &resources); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}
	c.logger.Debug("search complete", "query", query, "count", len(resources))
	return toCatalogEntries(resources), nil
}

// --- domain.LibraryRepository ---

// AddBook creates a library record for a catalog entry.
func (c *Client) AddBook(ctx context.Context, foreignID string, opts domain.AddOptions) (int64, error) {
	payload := addBookRequest{
		ForeignBookID: foreignID,
		Monitored:     opts.MonitoredOrDefault(),
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/v1/book", nil, payload)
	if err != nil {
		if domain.IsConflict(err) {
			return 0, fmt.Errorf("%w: %w", domain.ErrAlreadyInLibrary, err)
		}
		return 0, err
	}

	var resp addBookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse add response: %w", err)
	}
	c.logger.Debug("added book", "foreignID", foreignID, "localID", resp.ID)
	return resp.ID, nil
}

// RemoveBook deletes a library record.
func (c *Client) RemoveBook(ctx context.Context, localID int64) error {
	path := fmt.Sprintf("/api/v1/book/%d", localID)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		if domain.IsNotFound(err) {
			return fmt.Errorf("%w: %w", domain.ErrBookNotFound, err)
		}
		return err
	}
	c.logger.Debug("removed book", "localID", localID)
	return nil
}
