// Package e2etest exercises a running litterwatch server over its JSON API.
package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/cleansweep/litterwatch/internal/errors"
)

type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a session-aware HTTP client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar},
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// postJSON sends the payload and decodes the JSON response body.
func (c *Client) postJSON(ctx context.Context, urlPath string, payload any) (int, map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, errors.Wrap(err, "marshal payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+urlPath, bytes.NewReader(body))
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var decoded map[string]any
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "decode response",
			slog.String("path", urlPath))
	}
	return resp.StatusCode, decoded, nil
}

func (c *Client) getJSON(ctx context.Context, urlPath string) (int, map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+urlPath, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var decoded map[string]any
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "decode response",
			slog.String("path", urlPath))
	}
	return resp.StatusCode, decoded, nil
}

func expectStatus(want, got int, body map[string]any) error {
	if want != got {
		return errors.New("unexpected status code",
			slog.Int("want", want), slog.Int("got", got), slog.Any("body", body))
	}
	return nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, username, password, role string) error {
	status, body, err := c.postJSON(ctx, "/api/auth/signup", map[string]any{
		"username": username,
		"password": password,
		"role":     role,
	})
	if err != nil {
		return errors.Wrap(err, "signup")
	}
	return expectStatus(http.StatusCreated, status, body)
}

// Login establishes a session for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	status, body, err := c.postJSON(ctx, "/api/auth/login", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return errors.Wrap(err, "login")
	}
	return expectStatus(http.StatusOK, status, body)
}

// Logout destroys the session.
func (c *Client) Logout(ctx context.Context) error {
	status, body, err := c.postJSON(ctx, "/api/auth/logout", map[string]any{})
	if err != nil {
		return errors.Wrap(err, "logout")
	}
	return expectStatus(http.StatusOK, status, body)
}

// SubmitReport submits a base64-encoded photo and returns the response body,
// which carries either an acceptance or a rejection.
func (c *Client) SubmitReport(ctx context.Context, imageBase64 string, lat, lon float64) (map[string]any, error) {
	status, body, err := c.postJSON(ctx, "/api/report", map[string]any{
		"image": imageBase64,
		"lat":   lat,
		"lon":   lon,
	})
	if err != nil {
		return nil, errors.Wrap(err, "submit report")
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, errors.New("unexpected status code", slog.Int("got", status), slog.Any("body", body))
	}
	return body, nil
}

// PendingReports fetches the reports awaiting cleanup.
func (c *Client) PendingReports(ctx context.Context) (map[string]any, error) {
	status, body, err := c.getJSON(ctx, "/api/reports/pending")
	if err != nil {
		return nil, errors.Wrap(err, "pending reports")
	}
	if err = expectStatus(http.StatusOK, status, body); err != nil {
		return nil, err
	}
	return body, nil
}
