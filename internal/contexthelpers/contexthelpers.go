// Package contexthelpers passes the resolved acting user through request
// context so handlers and the lifecycle engine never touch raw request
// parsing for identity.
package contexthelpers

import (
	"context"
	"net/http"

	"github.com/cleansweep/litterwatch/internal/models"
)

type contextKey string

const currentUserContextKey = contextKey("currentUser")

// AuthenticateContext attaches the resolved user to the request context.
func AuthenticateContext(r *http.Request, user models.User) *http.Request {
	ctx := context.WithValue(r.Context(), currentUserContextKey, user)
	return r.WithContext(ctx)
}

// CurrentUser returns the resolved acting user, if any.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(currentUserContextKey).(models.User)
	return user, ok
}
