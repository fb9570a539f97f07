package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/database"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recipeRelation describes one user/recipe join table with add and remove semantics.
type recipeRelation struct {
	name       string
	newRow     func(userID, recipeID uint) any
	model      func() any
	msgPresent string
	msgAbsent  string
}

var (
	favoriteRelation = recipeRelation{
		name:       "favorite",
		newRow:     func(u, r uint) any { return &models.Favorite{UserID: u, RecipeID: r} },
		model:      func() any { return &models.Favorite{} },
		msgPresent: "Recipe is already in favorites.",
		msgAbsent:  "Recipe is not in favorites.",
	}
	cartRelation = recipeRelation{
		name:       "shopping cart",
		newRow:     func(u, r uint) any { return &models.ShoppingCartEntry{UserID: u, RecipeID: r} },
		model:      func() any { return &models.ShoppingCartEntry{} },
		msgPresent: "Recipe is already in the shopping cart.",
		msgAbsent:  "Recipe is not in the shopping cart.",
	}
)

// RelationService toggles favorites and shopping-cart entries.
type RelationService struct {
	db   *gorm.DB
	proj *projector
}

func NewRelationService(db *gorm.DB, images ImageStore) *RelationService {
	return &RelationService{db: db, proj: &projector{db: db, images: images}}
}

func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*types.RecipeSummary, error) {
	return s.add(ctx, favoriteRelation, userID, recipeID)
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, favoriteRelation, userID, recipeID)
}

func (s *RelationService) AddToShoppingCart(ctx context.Context, userID, recipeID uint) (*types.RecipeSummary, error) {
	return s.add(ctx, cartRelation, userID, recipeID)
}

func (s *RelationService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, cartRelation, userID, recipeID)
}

// add moves the pair from absent to present. A duplicate, including one
// inserted concurrently, is a conflict.
func (s *RelationService) add(ctx context.Context, rel recipeRelation, userID, recipeID uint) (*types.RecipeSummary, error) {
	var recipe *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if recipe, err = findRecipe(tx, recipeID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(rel.model()).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s: %w", rel.name, err)
		}
		if count > 0 {
			return domainerrors.Conflict(rel.msgPresent)
		}

		if err := tx.Omit(clause.Associations).Create(rel.newRow(userID, recipeID)).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return domainerrors.Conflict(rel.msgPresent)
			}
			return fmt.Errorf("failed to add to %s: %w", rel.name, err)
		}
		return nil
	})
	if err != nil {
		return nil, asDomainError(err, "failed to add to "+rel.name)
	}

	summary := s.proj.summary(recipe)
	return &summary, nil
}

// remove moves the pair from present to absent.
func (s *RelationService) remove(ctx context.Context, rel recipeRelation, userID, recipeID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRecipe(tx, recipeID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(rel.model())
		if res.Error != nil {
			return fmt.Errorf("failed to remove from %s: %w", rel.name, res.Error)
		}
		if res.RowsAffected == 0 {
			return domainerrors.NotFound(rel.msgAbsent)
		}
		return nil
	})
	return asDomainError(err, "failed to remove from "+rel.name)
}
