package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)

	status, body := ts.postJSON(t, "/api/auth/signup", map[string]any{
		"username": "jane",
		"email":    "jane@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "user created", body["message"])
	assert.NotZero(t, body["user_id"])

	// Usernames are unique.
	status, body = ts.postJSON(t, "/api/auth/signup", map[string]any{
		"username": "jane",
		"password": "something else",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "username already taken", body["error"])

	status, body = ts.postJSON(t, "/api/auth/login", map[string]any{
		"username": "jane",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid credentials", body["error"])

	status, body = ts.postJSON(t, "/api/auth/login", map[string]any{
		"username": "nobody",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid credentials", body["error"])

	status, body = ts.postJSON(t, "/api/auth/login", map[string]any{
		"username": "jane",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jane", body["username"])
	assert.Equal(t, "citizen", body["role"])

	status, body = ts.postJSON(t, "/api/auth/logout", map[string]any{})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "logged out", body["message"])
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)

	status, _ := ts.postJSON(t, "/api/auth/signup", map[string]any{
		"username": "jane",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.postJSON(t, "/api/auth/signup", map[string]any{
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := ts.postJSON(t, "/api/auth/signup", map[string]any{
		"username": "jane",
		"password": "hunter2hunter2",
		"role":     "mayor",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "role must be citizen or official", body["error"])
}
