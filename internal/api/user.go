package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const msgUserNotFound = "User not found."

// UserHandler serves accounts, profiles and subscriptions.
type UserHandler struct {
	userService         service.IUserService
	subscriptionService service.ISubscriptionService
	tokens              middleware.TokenValidator
	pages               paginator
}

func NewUserHandler(userService service.IUserService, subscriptionService service.ISubscriptionService, tokens middleware.TokenValidator, publicURL string) *UserHandler {
	return &UserHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
		tokens:              tokens,
		pages:               paginator{baseURL: publicURL},
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuthMiddleware(h.tokens)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.POST("", h.Register)
		users.GET("/me", required, h.Me)
		users.DELETE("/me", required, h.DeleteMe)
		users.POST("/set_password", required, h.SetPassword)
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), middleware.CurrentUserID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(h.pages, c, page, total, users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id", msgUserNotFound)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	user, err := h.userService.GetUser(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), middleware.CurrentUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	var req types.DeleteAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), middleware.CurrentUserID(c), req.CurrentPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	limit, ok := parseRecipesLimit(c)
	if !ok {
		return
	}

	subs, total, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), middleware.CurrentUserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(h.pages, c, page, total, subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id", msgUserNotFound)
	if !ok {
		return
	}
	limit, ok := parseRecipesLimit(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), middleware.CurrentUserID(c), authorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id", msgUserNotFound)
	if !ok {
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
