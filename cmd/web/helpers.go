package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cleansweep/litterwatch/internal/contexthelpers"
	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/repositories"
)

var (
	errMissingUsername = errors.NewSentinel("username required")
	errUnknownUser     = errors.NewSentinel("unknown user")
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(r.Context(), w, http.StatusInternalServerError,
		envelope{"error": http.StatusText(http.StatusInternalServerError)})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.Debug(http.StatusText(status), "method", r.Method, "uri", r.URL.RequestURI(),
		"message", message)
	app.writeJSON(r.Context(), w, status, envelope{"error": message})
}

type envelope map[string]any

func (app *application) writeJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "failed to encode response", errors.SlogError(err))
	}
}

func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// resolveActor returns the user performing the request. A session-backed
// identity wins; otherwise the prototype username-in-payload scheme applies.
func (app *application) resolveActor(r *http.Request, username string) (models.User, error) {
	if user, ok := contexthelpers.CurrentUser(r.Context()); ok {
		return user, nil
	}
	if username == "" {
		username = r.URL.Query().Get("username")
	}
	if username == "" {
		return models.User{}, errMissingUsername
	}
	user, err := app.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, errors.Wrap(errUnknownUser, "resolve actor",
				slog.String("username", username))
		}
		return models.User{}, errors.Wrap(err, "resolve actor")
	}
	return *user, nil
}

// actorOrError writes the appropriate error response when the actor cannot be
// resolved and reports whether the handler should continue.
func (app *application) actorOrError(w http.ResponseWriter, r *http.Request, username string) (models.User, bool) {
	actor, err := app.resolveActor(r, username)
	switch {
	case errors.Is(err, errMissingUsername):
		app.clientError(w, r, http.StatusBadRequest, "username required")
		return models.User{}, false
	case errors.Is(err, errUnknownUser):
		app.clientError(w, r, http.StatusNotFound, "unknown user")
		return models.User{}, false
	case err != nil:
		app.serverError(w, r, err)
		return models.User{}, false
	}
	return actor, true
}
