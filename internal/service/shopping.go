package service

import (
	"context"
	"fmt"
	"strings"

	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// ShoppingListFilename is the attachment name of the downloaded list.
const ShoppingListFilename = "foodgram_shopping_list.txt"

// ShoppingListService aggregates ingredients across a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// ShoppingList sums amounts per (ingredient name, unit) over the recipes in
// userID's cart, ordered by name then unit.
func (s *ShoppingListService) ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	items := []types.ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, domainerrors.Internal("failed to aggregate shopping list", err)
	}
	return items, nil
}

// RenderShoppingList formats items as the plain-text download.
func RenderShoppingList(username string, items []types.ShoppingListItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Foodgram user %s - shopping list\n\n", username)
	for _, item := range items {
		fmt.Fprintf(&b, "• %s - %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}
