package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errLinkCollision = errors.New("short link already taken")

func (s *recipeService) GetShortLink(ctx context.Context, id uint) (string, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.Select("id", "short_link").First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load recipe %d: %w", id, err)
	}
	if recipe.ShortLink != nil {
		return *recipe.ShortLink, nil
	}

	for attempt := 1; attempt <= s.opts.ShortLinkMaxAttempts; attempt++ {
		token, err := s.assignShortLink(db, id, s.opts.Generate(s.opts.ShortLinkLength))
		if errors.Is(err, errLinkCollision) {
			log.WithFields(log.Fields{
				"recipe_id": id,
				"attempt":   attempt,
			}).Debug("Short link collision, retrying")
			continue
		}
		if err != nil {
			return "", err
		}

		s.cacheShortLink(ctx, token, id)
		return token, nil
	}

	log.WithFields(log.Fields{
		"recipe_id":    id,
		"max_attempts": s.opts.ShortLinkMaxAttempts,
	}).Error("Short link generation exhausted")
	return "", ErrLinkGenerationExhausted
}

// assignShortLink tries one candidate in its own transaction so a unique
// violation on postgres does not poison later attempts. If another request
// assigned a link first, that link is returned instead.
func (s *recipeService) assignShortLink(db *gorm.DB, id uint, candidate string) (string, error) {
	var assigned string
	err := db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Recipe{}).Where("short_link = ?", candidate).Count(&taken).Error; err != nil {
			return fmt.Errorf("check short link: %w", err)
		}
		if taken > 0 {
			return errLinkCollision
		}

		result := tx.Model(&models.Recipe{}).
			Where("id = ? AND short_link IS NULL", id).
			Update("short_link", candidate)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return errLinkCollision
			}
			return fmt.Errorf("assign short link: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			assigned = candidate
			return nil
		}

		var current models.Recipe
		if err := tx.Select("id", "short_link").First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("reload recipe %d: %w", id, err)
		}
		if current.ShortLink == nil {
			return fmt.Errorf("short link of recipe %d was not stored", id)
		}
		assigned = *current.ShortLink
		return nil
	})
	return assigned, err
}

func (s *recipeService) ResolveShortLink(ctx context.Context, code string) (uint, error) {
	if code == "" || len(code) > models.MaxShortLinkLength {
		return 0, ErrNotFound
	}

	id, found, err := s.opts.Cache.Get(ctx, code)
	if err != nil {
		log.WithError(err).WithField("code", code).Warn("Short link cache lookup failed")
	}
	if found {
		return id, nil
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id").Where("short_link = ?", code).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("resolve short link: %w", err)
	}

	s.cacheShortLink(ctx, code, recipe.ID)
	return recipe.ID, nil
}

func (s *recipeService) cacheShortLink(ctx context.Context, code string, id uint) {
	if err := s.opts.Cache.Set(ctx, code, id); err != nil {
		log.WithError(err).WithField("recipe_id", id).Warn("Failed to cache short link")
	}
}
