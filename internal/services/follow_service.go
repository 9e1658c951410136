package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type FollowService interface {
	// Follow subscribes followerID to followingID and returns the followed user projection
	Follow(ctx context.Context, followerID, followingID uint, recipesLimit int) (*models.FollowProjection, error)
	// Unfollow removes the subscription
	Unfollow(ctx context.Context, followerID, followingID uint) error
	// Subscriptions lists the users followerID follows, each with their recipes
	Subscriptions(ctx context.Context, followerID uint, recipesLimit int) ([]models.FollowProjection, error)
	// BatchIsFollowing reports which of targetIDs followerID follows
	BatchIsFollowing(ctx context.Context, followerID uint, targetIDs []uint) (map[uint]bool, error)
}

type followService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) FollowService {
	return &followService{db: db}
}

func (s *followService) Follow(ctx context.Context, followerID, followingID uint, recipesLimit int) (*models.FollowProjection, error) {
	db := s.db.WithContext(ctx)

	var target models.User
	if err := db.First(&target, followingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", followingID, err)
	}
	if followerID == followingID {
		return nil, ErrSelfFollow
	}

	following, err := s.isFollowing(db, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, ErrAlreadyExists
	}

	follow := models.Follow{UserID: followerID, FollowingID: followingID}
	if err := db.Omit("User", "Following").Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create follow: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":      followerID,
		"following_id": followingID,
	}).Info("User subscribed")

	projection, err := s.project(db, target, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &projection, nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", followingID).Count(&count).Error; err != nil {
		return fmt.Errorf("check user %d: %w", followingID, err)
	}
	if count == 0 {
		return ErrNotFound
	}

	result := db.Where("user_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("delete follow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	log.WithFields(log.Fields{
		"user_id":      followerID,
		"following_id": followingID,
	}).Info("User unsubscribed")
	return nil
}

func (s *followService) Subscriptions(ctx context.Context, followerID uint, recipesLimit int) ([]models.FollowProjection, error) {
	db := s.db.WithContext(ctx)

	var users []models.User
	err := db.Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.user_id = ?", followerID).
		Order("follows.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	out := make([]models.FollowProjection, 0, len(users))
	for _, u := range users {
		p, err := s.project(db, u, recipesLimit)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *followService) BatchIsFollowing(ctx context.Context, followerID uint, targetIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(targetIDs))
	if followerID == 0 || len(targetIDs) == 0 {
		return result, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id IN ?", followerID, targetIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load subscription flags: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (s *followService) isFollowing(db *gorm.DB, followerID, followingID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return count > 0, nil
}

// project renders a followed user. A non-positive recipesLimit returns every recipe.
func (s *followService) project(db *gorm.DB, u models.User, recipesLimit int) (models.FollowProjection, error) {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", u.ID).Count(&count).Error; err != nil {
		return models.FollowProjection{}, fmt.Errorf("count recipes of %d: %w", u.ID, err)
	}

	query := db.Select("id", "name", "image", "cooking_time").
		Where("author_id = ?", u.ID).
		Order("pub_date, id")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return models.FollowProjection{}, fmt.Errorf("load recipes of %d: %w", u.ID, err)
	}

	shorts := make([]models.RecipeShort, 0, len(recipes))
	for _, r := range recipes {
		shorts = append(shorts, models.NewRecipeShort(r))
	}
	return models.FollowProjection{
		UserResponse: models.NewUserResponse(u, true),
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}
