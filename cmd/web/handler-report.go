package main

import (
	"net/http"

	"github.com/cleansweep/litterwatch/internal/imagestore"
	"github.com/cleansweep/litterwatch/internal/lifecycle"
)

func (app *application) submitReport(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username    string   `json:"username"`
		Image       string   `json:"image"`
		Lat         *float64 `json:"lat"`
		Lon         *float64 `json:"lon"`
		Description string   `json:"description"`
	}
	if !app.decodeJSON(w, r, &payload) {
		return
	}
	if payload.Image == "" || payload.Lat == nil || payload.Lon == nil {
		app.clientError(w, r, http.StatusBadRequest, "image, lat and lon required")
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

	result, err := app.engine.SubmitReport(r.Context(), actor, lifecycle.Submission{
		Image:       img,
		Lat:         *payload.Lat,
		Lon:         *payload.Lon,
		Description: payload.Description,
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if !result.Accepted {
		app.writeJSON(r.Context(), w, http.StatusOK, envelope{
			"message":       "rejected",
			"reason":        result.Reason,
			"count":         result.Count,
			"plastic_count": result.PlasticCount,
			"pile_count":    result.PileCount,
		})
		return
	}

	app.writeJSON(r.Context(), w, http.StatusCreated, envelope{
		"message":       "accepted",
		"report_id":     result.ReportID,
		"count":         result.Count,
		"plastic_count": result.PlasticCount,
		"pile_count":    result.PileCount,
		"result":        result.Summary,
	})
}
