package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/models"
)

// Client performs inference through an external model-serving HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a detector client for the inference service at baseURL.
//
// No request timeout is set: inference duration is owned by the external
// service and a hung model hangs the request.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// wireDetection is the inference service's representation of one detected
// object. Older model servers emit the label under "name".
type wireDetection struct {
	BBox       []float64 `json:"bbox"`
	Confidence float64   `json:"confidence"`
	Label      string    `json:"label"`
	Name       string    `json:"name"`
}

type wireResponse struct {
	Count      int             `json:"count"`
	Categories []string        `json:"categories"`
	Detections []wireDetection `json:"detections"`
}

// Detect uploads the image to the inference service and normalizes its
// response into a DetectionSummary. Unprocessable images yield
// ErrDetectionFailure.
func (c *Client) Detect(ctx context.Context, image []byte) (models.DetectionSummary, error) {
	var summary models.DetectionSummary

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return summary, errors.Wrap(err, "create form file")
	}
	if _, err = part.Write(image); err != nil {
		return summary, errors.Wrap(err, "write image data")
	}
	if err = writer.Close(); err != nil {
		return summary, errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", body)
	if err != nil {
		return summary, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return summary, errors.Wrap(err, "send inference request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		// The model could not make sense of the image.
		return summary, errors.Wrap(ErrDetectionFailure, "inference rejected image",
			slog.Int("status", resp.StatusCode))
	default:
		return summary, errors.New("unexpected inference status", slog.Int("status", resp.StatusCode))
	}

	var wire wireResponse
	if err = json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return summary, errors.Wrap(ErrDetectionFailure, "decode inference response")
	}

	return normalize(wire)
}

// normalize converts the wire format into portable numeric types and fills in
// fields older model servers leave out.
func normalize(wire wireResponse) (models.DetectionSummary, error) {
	var summary models.DetectionSummary

	summary.Detections = make([]models.Detection, 0, len(wire.Detections))
	for _, d := range wire.Detections {
		label := d.Label
		if label == "" {
			label = d.Name
		}
		if len(d.BBox) != 4 {
			return models.DetectionSummary{}, errors.Wrap(ErrDetectionFailure, "malformed bounding box",
				slog.Int("coords", len(d.BBox)), slog.String("label", label))
		}
		summary.Detections = append(summary.Detections, models.Detection{
			BBox:       [4]float64{d.BBox[0], d.BBox[1], d.BBox[2], d.BBox[3]},
			Confidence: d.Confidence,
			Label:      label,
		})
	}

	summary.Categories = wire.Categories
	if summary.Categories == nil {
		summary.Categories = make([]string, 0, len(summary.Detections))
		for _, d := range summary.Detections {
			summary.Categories = append(summary.Categories, d.Label)
		}
	}

	summary.Count = wire.Count
	if summary.Count == 0 {
		summary.Count = len(summary.Detections)
	}

	return summary, nil
}

// CheckHealth verifies that the inference service is reachable.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "create health request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "reach inference service")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.New("inference service unhealthy", slog.Int("status", resp.StatusCode))
	}
	return nil
}
