package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
	images *testhelpers.MemoryImageStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.RegisterBindingValidators()

	db := testhelpers.SetupSQLite(t)
	images := testhelpers.NewMemoryImageStore()
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.GET("/health", api.HealthCheck(db))
	group := router.Group("/api")
	api.NewAuthHandler(auth).RegisterRoutes(group)
	api.NewUserHandler(service.NewUserService(db, images), service.NewSubscriptionService(db, images), auth, "").RegisterRoutes(group)
	api.NewCatalogHandler(service.NewCatalogService(db)).RegisterRoutes(group)
	api.NewRecipeHandler(
		service.NewRecipeService(db, images),
		service.NewRelationService(db, images),
		service.NewShoppingListService(db),
		auth,
		nil,
		"",
	).RegisterRoutes(group)

	return &testAPI{t: t, db: db, router: router, auth: auth, images: images}
}

// tokenFor signs a token for user and returns an Authorization header value.
func (a *testAPI) tokenFor(user *models.User) string {
	a.t.Helper()
	token, err := a.auth.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: user.Username})
	require.NoError(a.t, err)
	return "Token " + token
}

func (a *testAPI) do(method, path, auth string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
