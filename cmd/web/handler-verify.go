package main

import (
	"net/http"

	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/lifecycle"
	"github.com/cleansweep/litterwatch/internal/models"
)

func (app *application) verifyReport(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		ReportID int64  `json:"report_id"`
		Action   string `json:"action"`
		Notes    string `json:"notes"`
	}
	if !app.decodeJSON(w, r, &payload) {
		return
	}
	if payload.ReportID == 0 || payload.Action == "" {
		app.clientError(w, r, http.StatusBadRequest, "report_id and action required")
		return
	}

	actor, ok := app.actorOrError(w, r, payload.Username)
	if !ok {
		return
	}

	action := models.VerificationAction(payload.Action)
	err := app.engine.Verify(r.Context(), actor, payload.ReportID, action, payload.Notes)
	switch {
	case errors.Is(err, lifecycle.ErrForbidden):
		app.clientError(w, r, http.StatusForbidden, "only officials can verify cleanups")
	case errors.Is(err, lifecycle.ErrInvalidAction):
		app.clientError(w, r, http.StatusBadRequest, "action must be approve or disapprove")
	case errors.Is(err, lifecycle.ErrReportNotFound):
		app.clientError(w, r, http.StatusNotFound, "report not found")
	case errors.Is(err, lifecycle.ErrAlreadyFinalized):
		app.clientError(w, r, http.StatusConflict, "report already finalized")
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(r.Context(), w, http.StatusOK, envelope{
			"message":   "verification recorded",
			"report_id": payload.ReportID,
			"action":    action,
		})
	}
}
