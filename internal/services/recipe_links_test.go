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

// sequence hands out the given tokens in order, then repeats the last one
type sequence struct {
	mu     sync.Mutex
	tokens []string
	calls  int
}

func (s *sequence) next(int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i]
}

func TestGetShortLinkIsIdempotent(t *testing.T) {
	f := newFixture(t, RecipeServiceOptions{ShortLinkLength: 10})
	c := seedCatalog(t, f)
	ctx := context.Background()

	created, err := f.recipes.Create(ctx, c.author.ID, omeletteInput(c))
	require.NoError(t, err)

	first, err := f.recipes.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := f.recipes.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := f.recipes.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ShortLink)
	assert.Equal(t, first, *stored.ShortLink)
}

func TestGetShortLinkRetriesOnCollision(t *testing.T) {
	gen := &sequence{tokens: []string{"taken", "taken", "fresh"}}
	f := newFixture(t, RecipeServiceOptions{Generate: gen.next, ShortLinkMaxAttempts: 5})
	author := testhelpers.CreateUser(t, f.db)
	ctx := context.Background()

	holder := testhelpers.CreateRecipe(t, f.db, author, "holder", nil)
	taken := "taken"
	require.NoError(t, f.db.Model(holder).Update("short_link", taken).Error)

	target := testhelpers.CreateRecipe(t, f.db, author, "target", nil)
	token, err := f.recipes.GetShortLink(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 3, gen.calls)
}

func TestGetShortLinkExhausted(t *testing.T) {
	gen := &sequence{tokens: []string{"same"}}
	f := newFixture(t, RecipeServiceOptions{Generate: gen.next, ShortLinkMaxAttempts: 4})
	author := testhelpers.CreateUser(t, f.db)
	ctx := context.Background()

	first := testhelpers.CreateRecipe(t, f.db, author, "first", nil)
	token, err := f.recipes.GetShortLink(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "same", token)

	second := testhelpers.CreateRecipe(t, f.db, author, "second", nil)
	_, err = f.recipes.GetShortLink(ctx, second.ID)
	assert.ErrorIs(t, err, ErrLinkGenerationExhausted)
	assert.Equal(t, 1+4, gen.calls)

	var reloaded models.Recipe
	require.NoError(t, f.db.First(&reloaded, second.ID).Error)
	assert.Nil(t, reloaded.ShortLink)
}

func TestGetShortLinkUnknownRecipe(t *testing.T) {
	f := newFixture(t)
	_, err := f.recipes.GetShortLink(context.Background(), 777)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetShortLinkConcurrent(t *testing.T) {
	f := newFixture(t, RecipeServiceOptions{ShortLinkLength: 6})
	author := testhelpers.CreateUser(t, f.db)
	ctx := context.Background()

	var recipes []*models.Recipe
	for i := 0; i < 8; i++ {
		recipes = append(recipes, testhelpers.CreateRecipe(t, f.db, author, fmt.Sprintf("r%d", i), nil))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		tokens = make(map[uint][]string)
	)
	for _, r := range recipes {
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				token, err := f.recipes.GetShortLink(ctx, id)
				assert.NoError(t, err)
				mu.Lock()
				tokens[id] = append(tokens[id], token)
				mu.Unlock()
			}(r.ID)
		}
	}
	wg.Wait()

	seen := make(map[string]uint)
	for id, got := range tokens {
		require.Len(t, got, 3)
		assert.Equal(t, got[0], got[1])
		assert.Equal(t, got[0], got[2])
		if other, dup := seen[got[0]]; dup {
			t.Fatalf("recipes %d and %d share token %s", id, other, got[0])
		}
		seen[got[0]] = id
	}
}

func TestResolveShortLinkUsesCache(t *testing.T) {
	mc := newMemoryCache()
	f := newFixture(t, RecipeServiceOptions{Cache: mc})
	c := seedCatalog(t, f)
	ctx := context.Background()

	created, err := f.recipes.Create(ctx, c.author.ID, omeletteInput(c))
	require.NoError(t, err)
	token, err := f.recipes.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, mc.entries[token])

	id, err := f.recipes.ResolveShortLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	// a cold cache falls back to the database and refills
	delete(mc.entries, token)
	id, err = f.recipes.ResolveShortLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)
	assert.Equal(t, created.ID, mc.entries[token])

	_, err = f.recipes.ResolveShortLink(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.recipes.Delete(ctx, owner(c.author), created.ID))
	_, cached := mc.entries[token]
	assert.False(t, cached)
}
