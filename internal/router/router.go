package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
	"gorm.io/gorm"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Subscriptions service.ISubscriptionService
	Recipes       service.IRecipeService
	Relations     service.IRelationService
	ShoppingList  service.IShoppingListService
	Catalog       service.ICatalogService
	// CreationLimiter may be nil, which disables rate limiting.
	CreationLimiter *middleware.RateLimiter
}

// MediaDir is implemented by image stores that keep files on local disk.
type MediaDir interface {
	Root() string
}

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, db *gorm.DB, svc Services, images service.ImageStore) *gin.Engine {
	validation.RegisterBindingValidators()

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", api.HealthCheck(db))

	if local, ok := images.(MediaDir); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, local.Root())
	}

	group := router.Group("/api")
	group.GET("/health", api.HealthCheck(db))

	api.NewAuthHandler(svc.Auth).RegisterRoutes(group)
	api.NewUserHandler(svc.Users, svc.Subscriptions, svc.Auth, cfg.PublicURL).RegisterRoutes(group)
	api.NewCatalogHandler(svc.Catalog).RegisterRoutes(group)
	api.NewRecipeHandler(svc.Recipes, svc.Relations, svc.ShoppingList, svc.Auth, svc.CreationLimiter, cfg.PublicURL).RegisterRoutes(group)

	return router
}

// NewServices wires the gorm-backed services. blocklist and limiter may be nil.
func NewServices(cfg *config.Config, db *gorm.DB, images service.ImageStore, blocklist service.TokenBlocklist, limiter *middleware.RateLimiter) Services {
	return Services{
		Auth:            service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, blocklist),
		Users:           service.NewUserService(db, images),
		Subscriptions:   service.NewSubscriptionService(db, images),
		Recipes:         service.NewRecipeService(db, images),
		Relations:       service.NewRelationService(db, images),
		ShoppingList:    service.NewShoppingListService(db),
		Catalog:         service.NewCatalogService(db),
		CreationLimiter: limiter,
	}
}
