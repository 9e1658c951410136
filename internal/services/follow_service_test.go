package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, f.db)
	other := testhelpers.CreateUser(t, f.db)

	_, err := f.follows.Follow(ctx, user.ID, user.ID, 0)
	assert.ErrorIs(t, err, ErrSelfFollow)

	_, err = f.follows.Follow(ctx, other.ID, user.ID, 0)
	require.NoError(t, err)
	_, err = f.follows.Follow(ctx, user.ID, user.ID, 0)
	assert.ErrorIs(t, err, ErrSelfFollow, "self follow is rejected regardless of other state")
	assert.Equal(t, int64(1), testhelpers.Count(t, f.db, &models.Follow{}))
}

func TestFollowToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fan := testhelpers.CreateUser(t, f.db)
	chef := testhelpers.CreateUser(t, f.db)
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, f.db, chef, fmt.Sprintf("dish%d", i), nil)
	}

	projection, err := f.follows.Follow(ctx, fan.ID, chef.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, chef.ID, projection.ID)
	assert.True(t, projection.IsSubscribed)
	assert.Equal(t, int64(3), projection.RecipesCount)
	require.Len(t, projection.Recipes, 2)
	assert.Equal(t, "dish0", projection.Recipes[0].Name)

	_, err = f.follows.Follow(ctx, fan.ID, chef.ID, 0)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, f.follows.Unfollow(ctx, fan.ID, chef.ID))
	assert.ErrorIs(t, f.follows.Unfollow(ctx, fan.ID, chef.ID), ErrNotFound)
}

func TestFollowUnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fan := testhelpers.CreateUser(t, f.db)

	_, err := f.follows.Follow(ctx, fan.ID, 9001, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.follows.Unfollow(ctx, fan.ID, 9001), ErrNotFound)
}

func TestSubscriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fan := testhelpers.CreateUser(t, f.db)
	first := testhelpers.CreateUser(t, f.db)
	second := testhelpers.CreateUser(t, f.db)
	testhelpers.CreateRecipe(t, f.db, second, "noodles", nil)
	testhelpers.CreateRecipe(t, f.db, second, "dumplings", nil)

	_, err := f.follows.Follow(ctx, fan.ID, second.ID, 0)
	require.NoError(t, err)
	_, err = f.follows.Follow(ctx, fan.ID, first.ID, 0)
	require.NoError(t, err)

	subs, err := f.follows.Subscriptions(ctx, fan.ID, 1)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, second.ID, subs[0].ID)
	assert.Len(t, subs[0].Recipes, 1)
	assert.Equal(t, int64(2), subs[0].RecipesCount)
	assert.Equal(t, first.ID, subs[1].ID)
	assert.Empty(t, subs[1].Recipes)

	flags, err := f.follows.BatchIsFollowing(ctx, fan.ID, []uint{first.ID, second.ID, fan.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{first.ID: true, second.ID: true}, flags)

	none, err := f.follows.Subscriptions(ctx, first.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
