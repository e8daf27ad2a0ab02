package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
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
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
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
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}
}

// stubInference fakes the model-serving HTTP service so that tests control
// what "the detector" sees in each image.
type stubInference struct {
	server *httptest.Server

	mu     sync.Mutex
	status int
	body   any
}

func newStubInference(t *testing.T) *stubInference {
	t.Helper()
	stub := &stubInference{
		status: http.StatusOK,
		body:   map[string]any{"count": 0, "categories": []string{}, "detections": []any{}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", func(w http.ResponseWriter, _ *http.Request) {
		stub.mu.Lock()
		status, body := stub.status, stub.body
		stub.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *stubInference) respond(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// detections builds an inference response from bare labels.
func (s *stubInference) detections(labels ...string) {
	items := make([]map[string]any, 0, len(labels))
	for _, label := range labels {
		items = append(items, map[string]any{
			"bbox":       []float64{0, 0, 50, 50},
			"confidence": 0.9,
			"label":      label,
		})
	}
	s.respond(http.StatusOK, map[string]any{
		"count":      len(labels),
		"categories": labels,
		"detections": items,
	})
}

func testLookupEnv(t *testing.T, inferenceURL string) func(string) (string, bool) {
	t.Helper()
	uploadDir := t.TempDir()
	return func(key string) (string, bool) {
		switch key {
		case "LITTERWATCH_ADDR":
			return "localhost:0", true
		case "LITTERWATCH_PPROF_PORT":
			return ":0", true
		case "LITTERWATCH_SQLITE_URL":
			return ":memory:", true
		case "LITTERWATCH_UPLOAD_DIR":
			return uploadDir, true
		case "LITTERWATCH_INFERENCE_URL":
			return inferenceURL, true
		default:
			return "", false
		}
	}
}

type testServer struct {
	url       string
	client    http.Client
	inference *stubInference
}

// startTestServer starts the application with an in-memory database and a
// stubbed inference service, waits for it to be ready, and returns a client
// with a cookie jar for session handling.
func startTestServer(t *testing.T) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	inference := newStubInference(t)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "Addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	go func() {
		if err := run(ctx, logger, testLookupEnv(t, inference.server.URL)); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{}
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		require.NoError(t, waitForReady(ctx, fmt.Sprintf("%s/api/health", serverURL)))
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		return testServer{
			url:       serverURL,
			client:    http.Client{Jar: jar},
			inference: inference,
		}
	}
}

func (ts *testServer) postJSON(t *testing.T, path string, payload any) (int, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := ts.client.Post(ts.url+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (ts *testServer) getJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := ts.client.Get(ts.url + path)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (ts *testServer) signup(t *testing.T, username, role string) {
	t.Helper()
	status, body := ts.postJSON(t, "/api/auth/signup", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery staple",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, status, "signup response: %v", body)
}

func testImageBase64() string {
	return base64.StdEncoding.EncodeToString([]byte("not a real jpeg but close enough"))
}

// reportsFrom unwraps the reports array of a listing response.
func reportsFrom(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	raw, ok := body["reports"].([]any)
	require.True(t, ok, "missing reports array: %v", body)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		report, ok := item.(map[string]any)
		require.True(t, ok)
		out = append(out, report)
	}
	return out
}
