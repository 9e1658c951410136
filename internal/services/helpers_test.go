package services

import (
	"context"
	"sync"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/testhelpers"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	recipes   RecipeService
	favorites MembershipService[models.Favorite]
	cart      MembershipService[models.ShoppingCartItem]
	follows   FollowService
}

func newFixture(t *testing.T, opts ...RecipeServiceOptions) *fixture {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	f := &fixture{
		db:        db,
		favorites: NewFavoriteService(db),
		cart:      NewShoppingCartService(db),
		follows:   NewFollowService(db),
	}
	var o RecipeServiceOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	f.recipes = NewRecipeService(db, f.favorites, f.cart, f.follows, o)
	return f
}

func owner(u *models.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// memoryCache is a ShortLinkCache kept in a map
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]uint
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]uint)}
}

func (c *memoryCache) Get(_ context.Context, code string) (uint, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	id, ok := c.entries[code]
	return id, ok, nil
}

func (c *memoryCache) Set(_ context.Context, code string, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = id
	return nil
}

func (c *memoryCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
	return nil
}
