package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/database"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgSelfSubscription  = "You cannot subscribe to yourself."
	msgAlreadySubscribed = "You are already subscribed to this author."
	msgNotSubscribed     = "You are not subscribed to this author."
)

// NoRecipesLimit disables truncation of the recipe preview.
const NoRecipesLimit = -1

// SubscriptionService manages who follows whom.
type SubscriptionService struct {
	db   *gorm.DB
	proj *projector
}

func NewSubscriptionService(db *gorm.DB, images ImageStore) *SubscriptionService {
	return &SubscriptionService{db: db, proj: &projector{db: db, images: images}}
}

func findUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, domainerrors.NotFound("User not found.")
		}
		return nil, domainerrors.Internal("failed to load user", err)
	}
	return &user, nil
}

// Subscribe makes userID follow authorID. recipesLimit bounds the recipe
// preview in the response; NoRecipesLimit returns all of them.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	var author *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if author, err = findUser(tx, authorID); err != nil {
			return err
		}
		if userID == authorID {
			return domainerrors.FieldError("author", msgSelfSubscription)
		}

		var count int64
		if err := tx.Model(&models.Subscription{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}
		if count > 0 {
			return domainerrors.Conflict(msgAlreadySubscribed)
		}

		sub := models.Subscription{UserID: userID, AuthorID: authorID}
		if err := tx.Omit(clause.Associations).Create(&sub).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return domainerrors.Conflict(msgAlreadySubscribed)
			}
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, asDomainError(err, "failed to subscribe")
	}

	logging.Ctx(ctx).Info().Uint("user_id", userID).Uint("author_id", authorID).Msg("subscribed")

	out, err := s.project(ctx, userID, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, authorID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Subscription{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete subscription: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domainerrors.NotFound(msgNotSubscribed)
		}
		return nil
	})
	return asDomainError(err, "failed to unsubscribe")
}

// ListSubscriptions returns the authors userID follows, most recent subscription first.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uint, page types.PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	page = page.Normalize()
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, domainerrors.Internal("failed to count subscriptions", err)
	}

	var authors []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&authors).Error
	if err != nil {
		return nil, 0, domainerrors.Internal("failed to list subscriptions", err)
	}

	out, err := s.project(ctx, userID, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// project builds subscription responses: recipes are ordered by id and
// truncated to recipesLimit while recipes_count stays the full total.
func (s *SubscriptionService) project(ctx context.Context, viewerID uint, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	profiles, err := s.proj.users(ctx, viewerID, authors)
	if err != nil {
		return nil, domainerrors.Internal("failed to project authors", err)
	}

	db := s.db.WithContext(ctx)
	out := make([]types.SubscriptionResponse, len(authors))
	for i := range authors {
		var count int64
		if err := db.Model(&models.Recipe{}).Where("author_id = ?", authors[i].ID).Count(&count).Error; err != nil {
			return nil, domainerrors.Internal("failed to count recipes", err)
		}

		q := db.Where("author_id = ?", authors[i].ID).Order("id ASC")
		if recipesLimit >= 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if recipesLimit != 0 {
			if err := q.Find(&recipes).Error; err != nil {
				return nil, domainerrors.Internal("failed to load recipes", err)
			}
		}

		out[i] = types.SubscriptionResponse{
			UserResponse: profiles[i],
			Recipes:      s.proj.summaries(recipes),
			RecipesCount: count,
		}
	}
	return out, nil
}
