package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user := &models.User{Email: "chef@example.com", Username: "chef", FirstName: "Ch", LastName: "Ef"}
	require.NoError(t, svc.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	dup := &models.User{Email: "chef@example.com", Username: "chef2"}
	assert.ErrorIs(t, svc.CreateUser(ctx, dup), ErrAlreadyExists)

	byEmail, err := svc.GetUserByEmail(ctx, "chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef", byID.Username)

	_, err = svc.GetUserByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	testhelpers.CreateUser(t, db)
	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, user.ID, users[0].ID)
}
