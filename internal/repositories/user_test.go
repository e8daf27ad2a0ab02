package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/repositories"
	"github.com/cleansweep/litterwatch/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewUserRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		role     models.Role
	}{
		{name: "citizen", username: "jane", role: models.RoleCitizen},
		{name: "official", username: "alice", role: models.RoleOfficial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.Create(ctx, tt.username, tt.username+"@example.com", "hash", tt.role)
			require.NoError(t, err)

			byName, err := repo.GetByUsername(ctx, tt.username)
			require.NoError(t, err)
			assert.Equal(t, id, byName.ID)
			assert.Equal(t, tt.username, byName.Username)
			assert.Equal(t, tt.role, byName.Role)
			assert.Equal(t, "hash", byName.PasswordHash)
			assert.False(t, byName.CreatedAt.IsZero())

			byID, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, byName, byID)
		})
	}
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewUserRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	_, err := repo.Create(ctx, "jane", "jane@example.com", "hash", models.RoleCitizen)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "jane", "other@example.com", "hash", models.RoleCitizen)
	require.ErrorIs(t, err, repositories.ErrDuplicateUsername)
}

func TestUserRepositoryNotFound(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewUserRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.GetByID(ctx, 404)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepositorySetRole(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewUserRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	_, err := repo.Create(ctx, "jane", "jane@example.com", "hash", models.RoleCitizen)
	require.NoError(t, err)

	require.NoError(t, repo.SetRole(ctx, "jane", models.RoleOfficial))
	user, err := repo.GetByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.True(t, user.IsOfficial())

	require.ErrorIs(t, repo.SetRole(ctx, "nobody", models.RoleOfficial), repositories.ErrNotFound)
}
