package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// projector renders stored rows into requester-relative responses.
type projector struct {
	db     *gorm.DB
	images ImageStore
}

func withRecipeAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient")
}

func userResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// subscribedTo returns the subset of authorIDs the viewer follows.
func (p *projector) subscribedTo(ctx context.Context, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if viewerID == 0 || len(authorIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := p.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// recipeFlags returns the subset of recipeIDs present in the viewer's rows of model.
func (p *projector) recipeFlags(ctx context.Context, model any, viewerID uint, recipeIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(recipeIDs))
	if viewerID == 0 || len(recipeIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := p.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe flags: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (p *projector) users(ctx context.Context, viewerID uint, users []models.User) ([]types.UserResponse, error) {
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := p.subscribedTo(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = userResponse(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

func (p *projector) summary(r *models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p *projector) summaries(recipes []models.Recipe) []types.RecipeSummary {
	out := make([]types.RecipeSummary, len(recipes))
	for i := range recipes {
		out[i] = p.summary(&recipes[i])
	}
	return out
}

// recipes expects Author, Tags and Ingredients.Ingredient to be preloaded.
func (p *projector) recipes(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	subscribed, err := p.subscribedTo(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}
	favorited, err := p.recipeFlags(ctx, &models.Favorite{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.recipeFlags(ctx, &models.ShoppingCartEntry{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]

		sort.Slice(r.Tags, func(a, b int) bool { return r.Tags[a].ID < r.Tags[b].ID })
		tags := make([]types.TagResponse, len(r.Tags))
		for j, t := range r.Tags {
			tags[j] = tagResponse(&t)
		}

		sort.Slice(r.Ingredients, func(a, b int) bool { return r.Ingredients[a].ID < r.Ingredients[b].ID })
		ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
		for j, ri := range r.Ingredients {
			ingredients[j] = types.RecipeIngredientResponse{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}

		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Name:             r.Name,
			Author:           userResponse(&r.Author, subscribed[r.AuthorID]),
			Text:             r.Text,
			Ingredients:      ingredients,
			Tags:             tags,
			Image:            p.images.URL(r.Image),
			CookingTime:      r.CookingTime,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
		}
	}
	return out, nil
}

func tagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}
