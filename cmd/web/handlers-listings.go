package main

import (
	"net/http"
	"time"

	"github.com/cleansweep/litterwatch/internal/models"
)

// recentWindow bounds the recent feed and the analytics activity counter.
const recentWindow = 10 * 24 * time.Hour

type reportResponse struct {
	ID            int64              `json:"id"`
	UserID        int64              `json:"user_id"`
	ImagePath     string             `json:"image_path"`
	Lat           float64            `json:"lat"`
	Lon           float64            `json:"lon"`
	Description   string             `json:"description"`
	Count         int                `json:"count"`
	Categories    []string           `json:"categories"`
	RawDetections []models.Detection `json:"raw_detections"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	VerifiedBy    *string            `json:"verified_by"`
	VerifiedAt    *time.Time         `json:"verified_at"`
}

func toReportResponse(report models.LitterReport) reportResponse {
	return reportResponse{
		ID:            report.ID,
		UserID:        report.UserID,
		ImagePath:     report.ImagePath,
		Lat:           report.Lat,
		Lon:           report.Lon,
		Description:   report.Description,
		Count:         report.Count,
		Categories:    report.Categories,
		RawDetections: report.Detections,
		Status:        string(report.Status),
		CreatedAt:     report.CreatedAt,
		VerifiedBy:    report.VerifiedBy,
		VerifiedAt:    report.VerifiedAt,
	}
}

func (app *application) pendingReports(w http.ResponseWriter, r *http.Request) {
	reports, err := app.reports.ListByStatus(r.Context(), models.StatusActive)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	type pendingResponse struct {
		reportResponse
		ImageBase64 *string `json:"image_base64"`
	}
	out := make([]pendingResponse, 0, len(reports))
	for _, report := range reports {
		item := pendingResponse{reportResponse: toReportResponse(report)}
		if b64 := app.images.LoadBase64(report.ImagePath); b64 != "" {
			item.ImageBase64 = &b64
		}
		out = append(out, item)
	}
	app.writeJSON(r.Context(), w, http.StatusOK, envelope{"reports": out})
}

func (app *application) completedReports(w http.ResponseWriter, r *http.Request) {
	completed, err := app.reports.ListCompleted(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	type completedResponse struct {
		reportResponse
		CleanupID    *int64     `json:"cleanup_id"`
		CleanupImage *string    `json:"cleanup_image"`
		CleanupAt    *time.Time `json:"cleanup_at"`
	}
	out := make([]completedResponse, 0, len(completed))
	for _, item := range completed {
		resp := completedResponse{reportResponse: toReportResponse(item.Report)}
		if cleanup := item.Cleanup; cleanup != nil {
			resp.CleanupID = &cleanup.ID
			resp.CleanupImage = &cleanup.ImagePath
			resp.CleanupAt = &cleanup.CreatedAt
		}
		out = append(out, resp)
	}
	app.writeJSON(r.Context(), w, http.StatusOK, envelope{"reports": out})
}

func (app *application) verifiedReports(w http.ResponseWriter, r *http.Request) {
	reports, err := app.reports.ListVerified(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	out := make([]reportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, toReportResponse(report))
	}
	app.writeJSON(r.Context(), w, http.StatusOK, envelope{"reports": out})
}

func (app *application) recentReports(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-recentWindow)
	recent, err := app.reports.ListRecent(r.Context(), since)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	type recentResponse struct {
		reportResponse
		CleanupImages []string `json:"cleanup_images"`
	}
	out := make([]recentResponse, 0, len(recent))
	for _, item := range recent {
		out = append(out, recentResponse{
			reportResponse: toReportResponse(item.Report),
			CleanupImages:  item.CleanupImages,
		})
	}
	app.writeJSON(r.Context(), w, http.StatusOK, envelope{"reports": out})
}

func (app *application) analytics(w http.ResponseWriter, r *http.Request) {
	activeSince := time.Now().UTC().Add(-recentWindow)
	stats, err := app.reports.GetAnalytics(r.Context(), activeSince)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(r.Context(), w, http.StatusOK, envelope{
		"pending_count":          stats.PendingCount,
		"completed_count":        stats.CompletedCount,
		"verified_count":         stats.VerifiedCount,
		"active_citizens_10days": stats.ActiveCitizens,
	})
}

func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(r.Context(), w, http.StatusOK, envelope{"status": "ok"})
}
