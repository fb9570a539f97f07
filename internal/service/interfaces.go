package service

import (
	"context"
	"time"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Service methods that take a viewerID treat zero as an anonymous requester.

// IAuthService defines the interface for token operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
}

// IUserService defines the interface for account operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisteredUser, error)
	GetUser(ctx context.Context, viewerID, userID uint) (*types.UserResponse, error)
	ListUsers(ctx context.Context, viewerID uint, page types.PageRequest) ([]types.UserResponse, int64, error)
	SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error
	DeleteAccount(ctx context.Context, userID uint, currentPassword string) error
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	ListSubscriptions(ctx context.Context, userID uint, page types.PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uint, req *types.CreateRecipeRequest) (*types.RecipeSummary, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uint, req *types.UpdateRecipeRequest) (*types.RecipeSummary, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uint) error
	GetRecipe(ctx context.Context, viewerID, recipeID uint) (*types.RecipeResponse, error)
	ListRecipes(ctx context.Context, viewerID uint, filter types.RecipeFilter, page types.PageRequest) ([]types.RecipeResponse, int64, error)
}

// IRelationService defines the interface for favorites and the shopping cart
type IRelationService interface {
	AddFavorite(ctx context.Context, userID, recipeID uint) (*types.RecipeSummary, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToShoppingCart(ctx context.Context, userID, recipeID uint) (*types.RecipeSummary, error)
	RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error
}

// IShoppingListService defines the interface for shopping list aggregation
type IShoppingListService interface {
	ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error)
}

// ICatalogService defines the interface for tags and ingredients
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.TagResponse, error)
	GetTag(ctx context.Context, id uint) (*types.TagResponse, error)
	ListIngredients(ctx context.Context, name string) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error)
}

// ImageStore persists recipe images under opaque keys.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// TokenBlocklist records revoked token IDs.
type TokenBlocklist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
