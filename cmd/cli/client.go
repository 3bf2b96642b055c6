package main

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

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// apiError is a non-2xx response from the ledgerlock API.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, strings.TrimSpace(e.Body))
}

// apiClient talks to the ledgerlock HTTP API.
type apiClient struct {
	baseURL         string
	http            *http.Client
	retries         int
	initialInterval time.Duration
}

func newAPIClient(baseURL string, timeout time.Duration, retries int) *apiClient {
	return &apiClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{Timeout: timeout},
		retries:         retries,
		initialInterval: 100 * time.Millisecond,
	}
}

func (c *apiClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, nil, "")
}

// mutate posts body and retries while the API reports a concurrent
// operation on one of the accounts. Every attempt carries the same
// Idempotency-Key.
func (c *apiClient) mutate(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	key := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	var result []byte
	err = backoff.Retry(func() error {
		resp, err := c.send(ctx, http.MethodPost, path, payload, key)
		if err != nil {
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				return err
			}
			return backoff.Permanent(err)
		}
		result = resp
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx))

	return result, err
}

func (c *apiClient) send(ctx context.Context, method, path string, payload []byte, idempotencyKey string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, &apiError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
