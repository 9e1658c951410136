package models

import (
	"time"
)

// Favorite and ShoppingCartItem share one shape and one store
// (services.MembershipService). They are separate tables so that each list
// keeps its own uniqueness constraint.

type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
}

func (Favorite) TableName() string {
	return "favorites"
}

type ShoppingCartItem struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_shopping_cart_user_recipe"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_shopping_cart_user_recipe;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
}

func (ShoppingCartItem) TableName() string {
	return "shopping_cart_items"
}

// RecipeList is the set of user->recipe membership tables
type RecipeList interface {
	Favorite | ShoppingCartItem
}

// Follow is a subscription of UserID to FollowingID's recipes
type Follow struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_follows_pair"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index;check:chk_follows_no_self,user_id <> following_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Following   User      `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
}
