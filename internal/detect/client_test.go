package detect_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cleansweep/litterwatch/internal/detect"
	"github.com/cleansweep/litterwatch/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInferenceStub(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict":
			require.Equal(t, http.MethodPost, r.Method)
			require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		case "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDetect(t *testing.T) {
	response := `{
		"count": 2,
		"categories": ["plastic_bottle", "litter_pile"],
		"detections": [
			{"bbox": [1.0, 2.0, 3.0, 4.0], "confidence": 0.91, "label": "plastic_bottle"},
			{"bbox": [5.5, 6.5, 7.5, 8.5], "confidence": 0.42, "name": "litter_pile"}
		]
	}`
	server := newInferenceStub(t, http.StatusOK, response)
	client := detect.NewClient(server.URL, testhelpers.NewLogger(io.Discard))

	summary, err := client.Detect(context.Background(), []byte("image bytes"))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, []string{"plastic_bottle", "litter_pile"}, summary.Categories)
	require.Len(t, summary.Detections, 2)
	assert.Equal(t, [4]float64{1, 2, 3, 4}, summary.Detections[0].BBox)
	assert.InDelta(t, 0.91, summary.Detections[0].Confidence, 1e-9)
	assert.Equal(t, "plastic_bottle", summary.Detections[0].Label)
	// The "name" key from older model servers maps to the label.
	assert.Equal(t, "litter_pile", summary.Detections[1].Label)
}

func TestDetectFillsMissingSummaryFields(t *testing.T) {
	response := `{
		"detections": [
			{"bbox": [0, 0, 10, 10], "confidence": 0.5, "label": "plastic_bag"}
		]
	}`
	server := newInferenceStub(t, http.StatusOK, response)
	client := detect.NewClient(server.URL, testhelpers.NewLogger(io.Discard))

	summary, err := client.Detect(context.Background(), []byte("image bytes"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, []string{"plastic_bag"}, summary.Categories)
}

func TestDetectUnprocessableImage(t *testing.T) {
	server := newInferenceStub(t, http.StatusUnprocessableEntity, `{"error":"cannot decode image"}`)
	client := detect.NewClient(server.URL, testhelpers.NewLogger(io.Discard))

	_, err := client.Detect(context.Background(), []byte("not an image"))
	require.ErrorIs(t, err, detect.ErrDetectionFailure)
}

func TestDetectMalformedBoundingBox(t *testing.T) {
	response := `{"detections": [{"bbox": [1, 2], "confidence": 0.9, "label": "plastic_bottle"}]}`
	server := newInferenceStub(t, http.StatusOK, response)
	client := detect.NewClient(server.URL, testhelpers.NewLogger(io.Discard))

	_, err := client.Detect(context.Background(), []byte("image bytes"))
	require.ErrorIs(t, err, detect.ErrDetectionFailure)
}

func TestDetectServerError(t *testing.T) {
	server := newInferenceStub(t, http.StatusInternalServerError, "boom")
	client := detect.NewClient(server.URL, testhelpers.NewLogger(io.Discard))

	_, err := client.Detect(context.Background(), []byte("image bytes"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, detect.ErrDetectionFailure)
}

func TestCheckHealth(t *testing.T) {
	server := newInferenceStub(t, http.StatusOK, "{}")
	client := detect.NewClient(server.URL, testhelpers.NewLogger(io.Discard))

	require.NoError(t, client.CheckHealth(context.Background()))
}
