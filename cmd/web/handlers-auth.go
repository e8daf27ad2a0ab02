package main

import (
	"net/http"

	"github.com/cleansweep/litterwatch/internal/auth"
	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/repositories"
)

const sessionKeyUserID = "userID"

func (app *application) signup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !app.decodeJSON(w, r, &payload) {
		return
	}
	if payload.Username == "" || payload.Password == "" {
		app.clientError(w, r, http.StatusBadRequest, "username and password required")
		return
	}
	if payload.Role == "" {
		payload.Role = string(models.RoleCitizen)
	}
	role := models.Role(payload.Role)
	if role != models.RoleCitizen && role != models.RoleOfficial {
		app.clientError(w, r, http.StatusBadRequest, "role must be citizen or official")
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	userID, err := app.users.Create(r.Context(), payload.Username, payload.Email, hash, role)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			app.clientError(w, r, http.StatusBadRequest, "username already taken")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(r.Context(), w, http.StatusCreated, envelope{
		"message": "user created",
		"user_id": userID,
	})
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !app.decodeJSON(w, r, &payload) {
		return
	}

	user, err := app.users.GetByUsername(r.Context(), payload.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.clientError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		app.serverError(w, r, err)
		return
	}
	if err = auth.ComparePassword(user.PasswordHash, payload.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			app.clientError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		app.serverError(w, r, err)
		return
	}

	// Session fixation protection.
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyUserID, user.ID)

	app.writeJSON(r.Context(), w, http.StatusOK, envelope{
		"message":  "login successful",
		"username": user.Username,
		"role":     user.Role,
	})
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(r.Context(), w, http.StatusOK, envelope{"message": "logged out"})
}
