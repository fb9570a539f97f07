package api_test

import (
	"net/http"
	"testing"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/users", "", map[string]string{
		"email":      "vasya@example.com",
		"username":   "vasya.pupkin",
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "Qwerty123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "vasya.pupkin", created["username"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "is_subscribed")

	w = a.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "vasya@example.com",
		"password": "Qwerty123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[types.TokenResponse](t, w)
	require.NotEmpty(t, token.AuthToken)

	w = a.do(http.MethodGet, "/api/users/me", "Token "+token.AuthToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vasya.pupkin", decode[types.UserResponse](t, w).Username)

	w = a.do(http.MethodPost, "/api/auth/token/logout", "Token "+token.AuthToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)
	testhelpers.CreateUser(t, a.db, "taken")

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing email", map[string]string{"username": "u", "first_name": "a", "last_name": "b", "password": "Qwerty123"}, "email"},
		{"bad username", map[string]string{"email": "x@example.com", "username": "bad name!", "first_name": "a", "last_name": "b", "password": "Qwerty123"}, "username"},
		{"short password", map[string]string{"email": "x@example.com", "username": "good", "first_name": "a", "last_name": "b", "password": "short"}, "password"},
		{"reserved username", map[string]string{"email": "x@example.com", "username": "me", "first_name": "a", "last_name": "b", "password": "Qwerty123"}, "username"},
		{"taken username", map[string]string{"email": "x@example.com", "username": "taken", "first_name": "a", "last_name": "b", "password": "Qwerty123"}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/users", "", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[map[string]any](t, w)
			assert.Equal(t, "VALIDATION", body["code"])
			assert.Contains(t, body["details"], tt.field)
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAPI(t)
	user := testhelpers.CreateUser(t, a.db, "ivan")

	w := a.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    user.Email,
		"password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unable to log in with provided credentials.", decode[map[string]any](t, w)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestAPI(t)

	for _, route := range [][2]string{
		{http.MethodGet, "/api/users/me"},
		{http.MethodPost, "/api/users/set_password"},
		{http.MethodGet, "/api/users/subscriptions"},
		{http.MethodPost, "/api/users/1/subscribe"},
		{http.MethodPost, "/api/recipes"},
		{http.MethodPost, "/api/recipes/1/favorite"},
		{http.MethodDelete, "/api/recipes/1/shopping_cart"},
		{http.MethodGet, "/api/recipes/download_shopping_cart"},
		{http.MethodPost, "/api/auth/token/logout"},
	} {
		w := a.do(route[0], route[1], "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route[0], route[1])
	}

	w := a.do(http.MethodGet, "/api/recipes", "Token not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "invalid tokens are rejected on public routes too")
}
