// Package detect wraps the externally-trained litter detector. The model runs
// behind an HTTP inference service; this package is the only place that knows
// about its wire format.
package detect

import (
	"context"

	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/models"
)

// ErrDetectionFailure signals that the detector could not process the image,
// for example corrupt data or an unreadable format. Callers must treat the
// submission as unprocessable instead of guessing.
var ErrDetectionFailure = errors.NewSentinel("detection failure")

// Detector scores an image and returns the detected objects.
type Detector interface {
	Detect(ctx context.Context, image []byte) (models.DetectionSummary, error)
}
