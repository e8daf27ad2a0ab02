// Package lifecycle implements the acceptance policy and the state machine
// governing a litter report's progression from submission to verification.
//
// States: active (initial) → completed (cleanup evidence recorded) →
// verified or rejected (terminal, decided by an official).
package lifecycle

import (
	"context"
	"log/slog"

	"github.com/cleansweep/litterwatch/internal/detect"
	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/imagestore"
	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/repositories"
)

var (
	// ErrReportNotFound signals an operation against a nonexistent report.
	ErrReportNotFound = errors.NewSentinel("report not found")
	// ErrForbidden signals a verification attempt by a non-official.
	ErrForbidden = errors.NewSentinel("only officials can verify")
	// ErrInvalidAction signals an unknown verification action.
	ErrInvalidAction = errors.NewSentinel("action must be 'approve' or 'disapprove'")
	// ErrAlreadyFinalized signals a verification of a report whose status is
	// already terminal.
	ErrAlreadyFinalized = errors.NewSentinel("report already finalized")
)

// Rejection reasons carried in the submission result.
const (
	ReasonInsufficientLitter = "insufficient_litter"
	ReasonUnprocessableImage = "unprocessable_image"
)

// Engine coordinates the detector, the image store and the persistence
// gateway. It only ever works with a resolved acting user.
type Engine struct {
	detector detect.Detector
	images   *imagestore.Store
	reports  *repositories.ReportRepository
	logger   *slog.Logger
}

func NewEngine(
	detector detect.Detector,
	images *imagestore.Store,
	reports *repositories.ReportRepository,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		detector: detector,
		images:   images,
		reports:  reports,
		logger:   logger.With("source", "lifecycle.Engine"),
	}
}

// SubmissionResult is the outcome of a report submission. Rejected
// submissions carry the raw counts and leave no persistent record.
type SubmissionResult struct {
	Accepted     bool
	Reason       string
	ReportID     int64
	Count        int
	PlasticCount int
	PileCount    int
	Summary      models.DetectionSummary
}

// Submission is a citizen's photo-based litter report.
type Submission struct {
	Image       []byte
	Lat         float64
	Lon         float64
	Description string
}

// SubmitReport stores the image, scores it with the detector and applies the
// acceptance policy. Accepted submissions persist a LitterReport with status
// active; rejected ones discard the image best-effort and persist nothing.
// A detector failure counts as a rejection, not an error.
func (e *Engine) SubmitReport(
	ctx context.Context,
	actor models.User,
	submission Submission,
) (SubmissionResult, error) {
	imagePath, err := e.images.Save("before", submission.Image)
	if err != nil {
		return SubmissionResult{}, errors.Wrap(err, "save report image")
	}

	summary, err := e.detector.Detect(ctx, submission.Image)
	if err != nil {
		e.images.Remove(ctx, imagePath)
		if errors.Is(err, detect.ErrDetectionFailure) {
			e.logger.LogAttrs(ctx, slog.LevelInfo, "submission unprocessable", errors.SlogError(err))
			return SubmissionResult{Accepted: false, Reason: ReasonUnprocessableImage}, nil
		}
		return SubmissionResult{}, errors.Wrap(err, "detect litter")
	}

	decision := Evaluate(summary)
	result := SubmissionResult{
		Accepted:     decision.Accept,
		Count:        summary.Count,
		PlasticCount: decision.PlasticCount,
		PileCount:    decision.PileCount,
		Summary:      summary,
	}

	if !decision.Accept {
		e.images.Remove(ctx, imagePath)
		result.Reason = ReasonInsufficientLitter
		return result, nil
	}

	report := models.LitterReport{
		UserID:      actor.ID,
		ImagePath:   imagePath,
		Lat:         submission.Lat,
		Lon:         submission.Lon,
		Description: submission.Description,
		Count:       summary.Count,
		Categories:  summary.Categories,
		Detections:  summary.Detections,
	}
	if err = e.reports.Create(ctx, &report); err != nil {
		return SubmissionResult{}, errors.Wrap(err, "persist accepted report")
	}
	result.ReportID = report.ID

	e.logger.LogAttrs(ctx, slog.LevelInfo, "report accepted",
		slog.Int64("report_id", report.ID),
		slog.Int("plastic_count", decision.PlasticCount),
		slog.Int("pile_count", decision.PileCount))
	return result, nil
}

// CleanupSubmission is evidence that a reported site has been cleaned.
type CleanupSubmission struct {
	ReportID    int64
	Image       []byte
	Description string
}

// RecordCleanup stores the after-cleanup image and transitions the report to
// completed. Any existing report id is accepted regardless of its current
// status; a missing report yields ErrReportNotFound and the stored image is
// removed best-effort.
func (e *Engine) RecordCleanup(
	ctx context.Context,
	actor models.User,
	submission CleanupSubmission,
) (models.CleanupReport, error) {
	imagePath, err := e.images.Save("after", submission.Image)
	if err != nil {
		return models.CleanupReport{}, errors.Wrap(err, "save cleanup image")
	}

	cleanup := models.CleanupReport{
		ReportID:    submission.ReportID,
		UserID:      actor.ID,
		ImagePath:   imagePath,
		Description: submission.Description,
	}
	if err = e.reports.AddCleanup(ctx, &cleanup); err != nil {
		e.images.Remove(ctx, imagePath)
		if errors.Is(err, repositories.ErrNotFound) {
			return models.CleanupReport{}, errors.Wrap(ErrReportNotFound, "record cleanup",
				slog.Int64("report_id", submission.ReportID))
		}
		return models.CleanupReport{}, errors.Wrap(err, "record cleanup")
	}
	return cleanup, nil
}

// Verify records an official's decision on a completed cleanup. Approve
// transitions the report to verified and stamps the verifier; disapprove
// transitions it to rejected. Either way exactly one verification audit row
// is appended. Terminal statuses are sticky: re-verifying yields
// ErrAlreadyFinalized without appending anything.
func (e *Engine) Verify(
	ctx context.Context,
	actor models.User,
	reportID int64,
	action models.VerificationAction,
	notes string,
) error {
	if !actor.IsOfficial() {
		return errors.Wrap(ErrForbidden, "verify report", slog.String("username", actor.Username))
	}
	if action != models.ActionApprove && action != models.ActionDisapprove {
		return errors.Wrap(ErrInvalidAction, "verify report", slog.String("action", string(action)))
	}

	err := e.reports.Verify(ctx, reportID, actor.Username, action, notes)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return errors.Wrap(ErrReportNotFound, "verify report", slog.Int64("report_id", reportID))
	case errors.Is(err, repositories.ErrReportFinalized):
		return errors.Wrap(ErrAlreadyFinalized, "verify report", slog.Int64("report_id", reportID))
	default:
		return errors.Wrap(err, "verify report")
	}
}
