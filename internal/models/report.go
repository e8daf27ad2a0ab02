package models

import "time"

type ReportStatus string

const (
	// StatusActive is set when a submitted image passes the acceptance policy.
	StatusActive ReportStatus = "active"
	// StatusCompleted is set when cleanup evidence has been recorded for the report.
	StatusCompleted ReportStatus = "completed"
	// StatusVerified is terminal, set by official approval.
	StatusVerified ReportStatus = "verified"
	// StatusRejected is terminal, set by official disapproval.
	StatusRejected ReportStatus = "rejected"
)

// Detection is a single object found by the detector. The bounding box is
// four corner coordinates in pixels (x1, y1, x2, y2).
type Detection struct {
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
	Label      string     `json:"label"`
}

// DetectionSummary is the full detector output for one image.
type DetectionSummary struct {
	Count      int         `json:"count"`
	Categories []string    `json:"categories"`
	Detections []Detection `json:"detections"`
}

// LitterReport is a citizen-submitted record of observed litter. Reports are
// never deleted, only transitioned between statuses.
type LitterReport struct {
	ID          int64
	UserID      int64
	ImagePath   string
	Lat         float64
	Lon         float64
	Description string
	Count       int
	Categories  []string
	Detections  []Detection
	Status      ReportStatus
	CreatedAt   time.Time
	VerifiedBy  *string
	VerifiedAt  *time.Time
}

// CleanupReport is evidence submitted after a litter report's site has been
// cleaned. A litter report may accumulate any number of cleanup reports.
type CleanupReport struct {
	ID          int64
	ReportID    int64
	UserID      int64
	ImagePath   string
	Description string
	CreatedAt   time.Time
}

type VerificationAction string

const (
	ActionApprove    VerificationAction = "approve"
	ActionDisapprove VerificationAction = "disapprove"
)

// Verification is an append-only audit record of an official's decision on a
// completed cleanup.
type Verification struct {
	ID           int64
	ReportID     int64
	OfficialName string
	Action       VerificationAction
	Notes        string
	CreatedAt    time.Time
}
