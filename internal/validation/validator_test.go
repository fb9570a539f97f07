package validation

import (
	"encoding/json"
	"testing"

	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegisterRequest(t *testing.T) {
	v := New()

	err := v.Validate(types.RegisterRequest{
		Email:     "not-an-email",
		Username:  "bad name!",
		FirstName: "Ann",
		Password:  "short",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Enter a valid email address.", details["email"])
	assert.Contains(t, details["username"], "valid username")
	assert.Equal(t, "This field is required.", details["last_name"])
	assert.Equal(t, "Ensure this field has at least 8 characters.", details["password"])
	assert.NotContains(t, details, "first_name")
}

func TestValidateRecipeIngredients(t *testing.T) {
	v := New()

	err := v.Validate(types.CreateRecipeRequest{
		Ingredients: []types.RecipeIngredientRequest{{ID: 1, Amount: 5}, {ID: 2, Amount: 40000}},
		Tags:        []uint{1},
		Image:       "data:image/png;base64,AAAA",
		Name:        "Soup",
		Text:        "Boil",
		CookingTime: 10,
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "Ensure this value is less than or equal to 32767.", details["ingredients[1].amount"])
}

func TestValidateUsernameTag(t *testing.T) {
	v := New()
	base := types.RegisterRequest{Email: "a@example.com", FirstName: "A", LastName: "B", Password: "long-enough"}

	for _, name := range []string{"chef.anna+1@home", "борщ_мастер"} {
		req := base
		req.Username = name
		assert.NoError(t, v.Validate(&req), name)
	}
	for _, name := range []string{"two words", "semi;colon"} {
		req := base
		req.Username = name
		assert.Error(t, v.Validate(&req), name)
	}
}

func TestFromBindingErrorJSON(t *testing.T) {
	var req types.CreateRecipeRequest
	err := json.Unmarshal([]byte(`{"cooking_time": "soon"}`), &req)
	require.Error(t, err)

	converted := FromBindingError(err)
	assert.True(t, domainerrors.Is(converted, domainerrors.ErrValidation))

	var domainErr *domainerrors.Error
	require.ErrorAs(t, converted, &domainErr)
	assert.Contains(t, domainErr.Details.(map[string]string), "cooking_time")

	syntax := FromBindingError(json.Unmarshal([]byte(`{"name":`), &req))
	assert.True(t, domainerrors.Is(syntax, domainerrors.ErrValidation))

	assert.NoError(t, FromBindingError(nil))
}
