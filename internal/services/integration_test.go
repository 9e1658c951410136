//go:build integration

package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the unique index as the race breaker on a real postgres, with
// a two-character alphabet so concurrent assignments collide often.
func TestPostgresConcurrentShortLinks(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	tiny := func(int) string { return GenerateShortLink(2) }
	recipes := NewRecipeService(db, NewFavoriteService(db), NewShoppingCartService(db), NewFollowService(db),
		RecipeServiceOptions{Generate: tiny, ShortLinkMaxAttempts: 200})
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db)
	var ids []uint
	for i := 0; i < 20; i++ {
		ids = append(ids, testhelpers.CreateRecipe(t, db, author, fmt.Sprintf("pg%d", i), nil).ID)
	}

	var wg sync.WaitGroup
	tokens := make([]string, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			token, err := recipes.GetShortLink(ctx, id)
			assert.NoError(t, err)
			tokens[i] = token
		}(i, id)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, token := range tokens {
		assert.False(t, seen[token], "token %s assigned twice", token)
		seen[token] = true
	}

	var distinct int64
	require.NoError(t, db.Model(&models.Recipe{}).Distinct("short_link").Where("short_link IS NOT NULL").Count(&distinct).Error)
	assert.Equal(t, int64(len(ids)), distinct)
}

func TestPostgresMembershipAndShoppingList(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	cart := NewShoppingCartService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db)
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
	a := testhelpers.CreateRecipe(t, db, author, "a", []testhelpers.Line{{Ingredient: salt, Amount: 10}})
	b := testhelpers.CreateRecipe(t, db, author, "b", []testhelpers.Line{{Ingredient: salt, Amount: 5}})

	_, err := cart.Add(ctx, author.ID, a.ID)
	require.NoError(t, err)
	_, err = cart.Add(ctx, author.ID, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	_, err = cart.Add(ctx, author.ID, b.ID)
	require.NoError(t, err)

	list, err := NewShoppingListService(db).BuildShoppingList(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salt (g) — 15", list.Render())
}
