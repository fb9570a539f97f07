package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const msgRecipeNotFound = "Recipe not found."

// RecipeHandler serves recipes, their favorite and cart toggles and the
// shopping list download.
type RecipeHandler struct {
	recipeService   service.IRecipeService
	relationService service.IRelationService
	shoppingService service.IShoppingListService
	tokens          middleware.TokenValidator
	creationLimiter *middleware.RateLimiter
	pages           paginator
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	relationService service.IRelationService,
	shoppingService service.IShoppingListService,
	tokens middleware.TokenValidator,
	creationLimiter *middleware.RateLimiter,
	publicURL string,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		relationService: relationService,
		shoppingService: shoppingService,
		tokens:          tokens,
		creationLimiter: creationLimiter,
		pages:           paginator{baseURL: publicURL},
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuthMiddleware(h.tokens)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", required, h.creationLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.AddFavorite)
		recipes.DELETE("/:id/favorite", required, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", required, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	filter := types.RecipeFilter{
		IsFavorited:      flagQuery(c, "is_favorited"),
		IsInShoppingCart: flagQuery(c, "is_in_shopping_cart"),
	}
	for _, tag := range c.QueryArray("tags") {
		if tag = strings.TrimSpace(tag); tag != "" {
			filter.Tags = append(filter.Tags, tag)
		}
	}
	author, _, err := positiveQuery(c, "author")
	if err != nil {
		respondError(c, err)
		return
	}
	filter.AuthorID = uint(author)

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), middleware.CurrentUserID(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(h.pages, c, page, total, recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id", msgRecipeNotFound)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id", msgRecipeNotFound)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.CurrentUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id", msgRecipeNotFound)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addRelation func(c *gin.Context, userID, recipeID uint) (*types.RecipeSummary, error)

type removeRelation func(c *gin.Context, userID, recipeID uint) error

func (h *RecipeHandler) add(c *gin.Context, add addRelation) {
	id, ok := parseID(c, "id", msgRecipeNotFound)
	if !ok {
		return
	}
	summary, err := add(c, middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (h *RecipeHandler) remove(c *gin.Context, remove removeRelation) {
	id, ok := parseID(c, "id", msgRecipeNotFound)
	if !ok {
		return
	}
	if err := remove(c, middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.add(c, func(c *gin.Context, userID, recipeID uint) (*types.RecipeSummary, error) {
		return h.relationService.AddFavorite(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.remove(c, func(c *gin.Context, userID, recipeID uint) error {
		return h.relationService.RemoveFavorite(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.add(c, func(c *gin.Context, userID, recipeID uint) (*types.RecipeSummary, error) {
		return h.relationService.AddToShoppingCart(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.remove(c, func(c *gin.Context, userID, recipeID uint) error {
		return h.relationService.RemoveFromShoppingCart(c.Request.Context(), userID, recipeID)
	})
}

// DownloadShoppingCart sends the aggregated list as a text attachment, or 204
// when the cart is empty.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shoppingService.ShoppingList(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(items) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	body := service.RenderShoppingList(middleware.CurrentUsername(c), items)
	c.Header("Content-Disposition", `attachment; filename="`+service.ShoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}
