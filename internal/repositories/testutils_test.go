package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/repositories"
	"github.com/cleansweep/litterwatch/internal/sqlite"
	"github.com/cleansweep/litterwatch/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})

	return dbs
}

// createUser inserts a user and reads it back.
func createUser(t *testing.T, users *repositories.UserRepository, username string, role models.Role) models.User {
	t.Helper()
	ctx := context.Background()
	id, err := users.Create(ctx, username, username+"@example.com", "hash", role)
	require.NoError(t, err)
	user, err := users.GetByID(ctx, id)
	require.NoError(t, err)
	return *user
}

// createReport inserts an accepted litter report for the user.
func createReport(t *testing.T, reports *repositories.ReportRepository, userID int64) *models.LitterReport {
	t.Helper()
	report := models.LitterReport{
		UserID:      userID,
		ImagePath:   "uploads/before_20260101_120000_000001.jpg",
		Lat:         60.17,
		Lon:         24.94,
		Description: "pile by the kiosk",
		Count:       2,
		Categories:  []string{"litter_pile", "plastic_bag"},
		Detections: []models.Detection{
			{BBox: [4]float64{10, 20, 110, 220}, Confidence: 0.87, Label: "litter_pile"},
			{BBox: [4]float64{5, 5, 50, 50}, Confidence: 0.66, Label: "plastic_bag"},
		},
	}
	require.NoError(t, reports.Create(context.Background(), &report))
	return &report
}
