package main

import (
	"net/http"

	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/imagestore"
	"github.com/cleansweep/litterwatch/internal/lifecycle"
)

func (app *application) submitCleanup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username    string `json:"username"`
		ReportID    int64  `json:"report_id"`
		Image       string `json:"image"`
		Description string `json:"description"`
	}
	if !app.decodeJSON(w, r, &payload) {
		return
	}
	if payload.Image == "" || payload.ReportID == 0 {
		app.clientError(w, r, http.StatusBadRequest, "image and report_id required")
		return
	}

	actor, ok := app.actorOrError(w, r, payload.Username)
	if !ok {
		return
	}

	img, err := imagestore.DecodeBase64(payload.Image)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid image encoding")
		return
	}

	cleanup, err := app.engine.RecordCleanup(r.Context(), actor, lifecycle.CleanupSubmission{
		ReportID:    payload.ReportID,
		Image:       img,
		Description: payload.Description,
	})
	if err != nil {
		if errors.Is(err, lifecycle.ErrReportNotFound) {
			app.clientError(w, r, http.StatusNotFound, "report not found")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(r.Context(), w, http.StatusCreated, envelope{
		"message":    "cleanup recorded",
		"cleanup_id": cleanup.ID,
		"report_id":  cleanup.ReportID,
	})
}
