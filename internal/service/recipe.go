package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MsgNoIngredients        = "Recipe should contain at least 1 ingredient."
	MsgDuplicateIngredients = "Ingredients must be unique."
	MsgNoTags               = "Recipe needs at least one tag."
	MsgDuplicateTags        = "Tags must be unique."
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
	proj   *projector
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images, proj: &projector{db: db, images: images}}
}

// ValidateComposition checks that a recipe has at least one ingredient and one
// tag, with no repeats and positive amounts.
func ValidateComposition(ingredients []types.RecipeIngredientRequest, tags []uint) error {
	if len(ingredients) == 0 {
		return domainerrors.FieldError("ingredients", MsgNoIngredients)
	}
	seen := make(map[uint]struct{}, len(ingredients))
	for _, ing := range ingredients {
		if ing.Amount < 1 {
			return domainerrors.FieldError("ingredients", "Ensure amount is greater than or equal to 1.")
		}
		if _, dup := seen[ing.ID]; dup {
			return domainerrors.FieldError("ingredients", MsgDuplicateIngredients)
		}
		seen[ing.ID] = struct{}{}
	}

	if len(tags) == 0 {
		return domainerrors.FieldError("tags", MsgNoTags)
	}
	seenTags := make(map[uint]struct{}, len(tags))
	for _, id := range tags {
		if _, dup := seenTags[id]; dup {
			return domainerrors.FieldError("tags", MsgDuplicateTags)
		}
		seenTags[id] = struct{}{}
	}
	return nil
}

func validateScalars(name, text *string, cookingTime *int) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return domainerrors.FieldError("name", "This field may not be blank.")
	}
	if text != nil && strings.TrimSpace(*text) == "" {
		return domainerrors.FieldError("text", "This field may not be blank.")
	}
	if cookingTime != nil && *cookingTime < 1 {
		return domainerrors.FieldError("cooking_time", "Ensure this value is greater than or equal to 1.")
	}
	return nil
}

// checkReferences verifies every tag and ingredient id exists.
func checkReferences(tx *gorm.DB, ingredients []types.RecipeIngredientRequest, tagIDs []uint) error {
	ingredientIDs := make([]uint, len(ingredients))
	for i, ing := range ingredients {
		ingredientIDs[i] = ing.ID
	}

	if missing, err := missingIDs(tx, &models.Ingredient{}, ingredientIDs); err != nil {
		return err
	} else if missing != 0 {
		return domainerrors.FieldError("ingredients", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", missing))
	}
	if missing, err := missingIDs(tx, &models.Tag{}, tagIDs); err != nil {
		return err
	} else if missing != 0 {
		return domainerrors.FieldError("tags", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", missing))
	}
	return nil
}

// missingIDs returns the first id with no row in model's table, or zero.
func missingIDs(tx *gorm.DB, model any, ids []uint) (uint, error) {
	var found []uint
	if err := tx.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return 0, domainerrors.Internal("failed to check references", err)
	}
	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	for _, id := range ids {
		if !present[id] {
			return id, nil
		}
	}
	return 0, nil
}

// replaceComposition swaps the recipe's tags and ingredient rows for the given ones.
func replaceComposition(tx *gorm.DB, recipeID uint, ingredients []types.RecipeIngredientRequest, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}

	rows := make([]models.RecipeIngredient, len(ingredients))
	for i, ing := range ingredients {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: ing.ID, Amount: ing.Amount}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to store ingredients: %w", err)
	}

	tagRows := make([]map[string]any, len(tagIDs))
	for i, id := range tagIDs {
		tagRows[i] = map[string]any{"recipe_id": recipeID, "tag_id": id}
	}
	if err := tx.Table("recipe_tags").Create(tagRows).Error; err != nil {
		return fmt.Errorf("failed to store tags: %w", err)
	}
	return nil
}

// deleteRecipeRows removes the recipes with the given ids and every row referencing them.
func deleteRecipeRows(tx *gorm.DB, recipeIDs []uint) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	for _, model := range []any{&models.Favorite{}, &models.ShoppingCartEntry{}, &models.RecipeIngredient{}} {
		if err := tx.Where("recipe_id IN ?", recipeIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id IN ?", recipeIDs).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", recipeIDs).Delete(&models.Recipe{}).Error
}

// storeImage decodes and saves an uploaded image, returning its key.
func storeImage(ctx context.Context, store ImageStore, value string) (string, error) {
	img, err := DecodeImage(value)
	if err != nil {
		return "", err
	}
	key := NewImageKey(img)
	if err := store.Save(ctx, key, img.Data, img.ContentType); err != nil {
		return "", domainerrors.Internal("failed to store image", err)
	}
	return key, nil
}

// removeImage deletes a stored image, logging instead of failing.
func removeImage(ctx context.Context, store ImageStore, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", key).Msg("failed to remove image")
	}
}

// CreateRecipe creates a new recipe authored by authorID.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.CreateRecipeRequest) (*types.RecipeSummary, error) {
	if err := ValidateComposition(req.Ingredients, req.Tags); err != nil {
		return nil, err
	}
	if err := validateScalars(&req.Name, &req.Text, &req.CookingTime); err != nil {
		return nil, err
	}

	key, err := storeImage(ctx, s.images, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Image:       key,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, req.Ingredients, req.Tags); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return replaceComposition(tx, recipe.ID, req.Ingredients, req.Tags)
	})
	if err != nil {
		removeImage(ctx, s.images, key)
		return nil, asDomainError(err, "failed to create recipe")
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	summary := s.proj.summary(&recipe)
	return &summary, nil
}

// loadOwnRecipe returns the recipe if it exists and userID authored it.
func (s *RecipeService) loadOwnRecipe(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := findRecipe(s.db.WithContext(ctx), recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, domainerrors.Forbidden("You do not have permission to perform this action.")
	}
	return recipe, nil
}

// UpdateRecipe replaces tags and ingredients and patches the provided scalar fields.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uint, req *types.UpdateRecipeRequest) (*types.RecipeSummary, error) {
	recipe, err := s.loadOwnRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if err := ValidateComposition(req.Ingredients, req.Tags); err != nil {
		return nil, err
	}
	if err := validateScalars(req.Name, req.Text, req.CookingTime); err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	newImage := ""
	if req.Image != nil {
		if newImage, err = storeImage(ctx, s.images, *req.Image); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	if newImage != "" {
		updates["image"] = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, req.Ingredients, req.Tags); err != nil {
			return err
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return replaceComposition(tx, recipe.ID, req.Ingredients, req.Tags)
	})
	if err != nil {
		removeImage(ctx, s.images, newImage)
		return nil, asDomainError(err, "failed to update recipe")
	}
	if newImage != "" && oldImage != newImage {
		removeImage(ctx, s.images, oldImage)
	}

	updated, err := findRecipe(s.db.WithContext(ctx), recipe.ID)
	if err != nil {
		return nil, err
	}
	summary := s.proj.summary(updated)
	return &summary, nil
}

// DeleteRecipe deletes a recipe with its join rows, then its image.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.loadOwnRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRecipeRows(tx, []uint{recipe.ID})
	})
	if err != nil {
		return domainerrors.Internal("failed to delete recipe", err)
	}

	removeImage(ctx, s.images, recipe.Image)
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Msg("recipe deleted")
	return nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, viewerID, recipeID uint) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := withRecipeAssociations(s.db.WithContext(ctx)).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("Recipe not found.")
		}
		return nil, domainerrors.Internal("failed to load recipe", err)
	}

	out, err := s.proj.recipes(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, domainerrors.Internal("failed to project recipe", err)
	}
	return &out[0], nil
}

// ListRecipes returns recipes newest first, narrowed by filter.
func (s *RecipeService) ListRecipes(ctx context.Context, viewerID uint, filter types.RecipeFilter, page types.PageRequest) ([]types.RecipeResponse, int64, error) {
	page = page.Normalize()
	if viewerID == 0 && (filter.IsFavorited || filter.IsInShoppingCart) {
		return []types.RecipeResponse{}, 0, nil
	}

	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Recipe{})
		if len(filter.Tags) > 0 {
			q = q.Where("recipes.id IN (?)", s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.Tags))
		}
		if filter.AuthorID != 0 {
			q = q.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if filter.IsFavorited {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", viewerID))
		}
		if filter.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.ShoppingCartEntry{}).
				Select("recipe_id").Where("user_id = ?", viewerID))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, domainerrors.Internal("failed to count recipes", err)
	}

	var recipes []models.Recipe
	err := withRecipeAssociations(filtered()).
		Order("recipes.created_at DESC, recipes.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, domainerrors.Internal("failed to list recipes", err)
	}

	out, err := s.proj.recipes(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, domainerrors.Internal("failed to project recipes", err)
	}
	return out, total, nil
}

func findRecipe(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("Recipe not found.")
		}
		return nil, domainerrors.Internal("failed to load recipe", err)
	}
	return &recipe, nil
}

// asDomainError passes domain errors through and wraps everything else as internal.
func asDomainError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return domainerrors.Internal(msg, err)
}
