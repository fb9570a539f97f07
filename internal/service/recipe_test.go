package service_test

import (
	"context"
	"testing"

	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	db     *gorm.DB
	images *testhelpers.MemoryImageStore
	svc    *service.RecipeService
	author *models.User
	other  *models.User
	lunch  *models.Tag
	dinner *models.Tag
	flour  *models.Ingredient
	sugar  *models.Ingredient
	ctx    context.Context
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	db := testhelpers.SetupSQLite(t)
	images := testhelpers.NewMemoryImageStore()
	return &recipeFixture{
		db:     db,
		images: images,
		svc:    service.NewRecipeService(db, images),
		author: testhelpers.CreateUser(t, db, "author"),
		other:  testhelpers.CreateUser(t, db, "other"),
		lunch:  testhelpers.CreateTag(t, db, "Lunch", "lunch"),
		dinner: testhelpers.CreateTag(t, db, "Dinner", "dinner"),
		flour:  testhelpers.CreateIngredient(t, db, "flour", "g"),
		sugar:  testhelpers.CreateIngredient(t, db, "sugar", "g"),
		ctx:    context.Background(),
	}
}

func (f *recipeFixture) createRequest() *types.CreateRecipeRequest {
	return &types.CreateRecipeRequest{
		Ingredients: []types.RecipeIngredientRequest{
			{ID: f.flour.ID, Amount: 200},
			{ID: f.sugar.ID, Amount: 100},
		},
		Tags:        []uint{f.dinner.ID, f.lunch.ID},
		Image:       testhelpers.PNGPixel,
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
	}
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture(t)

	summary, err := f.svc.CreateRecipe(f.ctx, f.author.ID, f.createRequest())
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", summary.Name)
	assert.Equal(t, 20, summary.CookingTime)
	assert.Contains(t, summary.Image, "http://testserver/media/recipes/images/")
	assert.Contains(t, summary.Image, ".png")
	assert.Equal(t, 1, f.images.Len())

	recipe, err := f.svc.GetRecipe(f.ctx, f.other.ID, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, f.author.ID, recipe.Author.ID)
	assert.False(t, recipe.Author.IsSubscribed)
	require.Len(t, recipe.Tags, 2)
	assert.Equal(t, "lunch", recipe.Tags[0].Slug)
	assert.Equal(t, "dinner", recipe.Tags[1].Slug)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, types.RecipeIngredientResponse{ID: f.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 200}, recipe.Ingredients[0])
	assert.Equal(t, 100, recipe.Ingredients[1].Amount)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newRecipeFixture(t)

	tests := []struct {
		name    string
		mutate  func(r *types.CreateRecipeRequest)
		field   string
		message string
	}{
		{"no ingredients", func(r *types.CreateRecipeRequest) { r.Ingredients = nil }, "ingredients", service.MsgNoIngredients},
		{"duplicate ingredients", func(r *types.CreateRecipeRequest) {
			r.Ingredients = append(r.Ingredients, types.RecipeIngredientRequest{ID: f.flour.ID, Amount: 5})
		}, "ingredients", service.MsgDuplicateIngredients},
		{"zero amount", func(r *types.CreateRecipeRequest) { r.Ingredients[0].Amount = 0 }, "ingredients", ""},
		{"no tags", func(r *types.CreateRecipeRequest) { r.Tags = []uint{} }, "tags", service.MsgNoTags},
		{"duplicate tags", func(r *types.CreateRecipeRequest) { r.Tags = []uint{f.lunch.ID, f.lunch.ID} }, "tags", service.MsgDuplicateTags},
		{"unknown ingredient", func(r *types.CreateRecipeRequest) { r.Ingredients[1].ID = 9999 }, "ingredients", `Invalid pk "9999" - object does not exist.`},
		{"unknown tag", func(r *types.CreateRecipeRequest) { r.Tags = []uint{f.lunch.ID, 777} }, "tags", `Invalid pk "777" - object does not exist.`},
		{"zero cooking time", func(r *types.CreateRecipeRequest) { r.CookingTime = 0 }, "cooking_time", ""},
		{"blank name", func(r *types.CreateRecipeRequest) { r.Name = "   " }, "name", ""},
		{"not an image", func(r *types.CreateRecipeRequest) { r.Image = "data:image/png;base64,aGVsbG8gd29ybGQ=" }, "image", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.createRequest()
			tt.mutate(req)

			_, err := f.svc.CreateRecipe(f.ctx, f.author.ID, req)
			require.Error(t, err)
			assert.True(t, domainerrors.IsCode(err, domainerrors.CodeValidation))

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.field)
			if tt.message != "" {
				assert.Equal(t, tt.message, details[tt.field])
			}
		})
	}

	assert.Zero(t, countRows(t, f.db, "recipes"))
	assert.Zero(t, countRows(t, f.db, "recipe_ingredients"))
	assert.Zero(t, countRows(t, f.db, "recipe_tags"))
	assert.Zero(t, f.images.Len(), "failed creates must not leave images behind")
}

func TestUpdateRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(f.ctx, f.author.ID, f.createRequest())
	require.NoError(t, err)

	name := "Crepes"
	image := testhelpers.PNGPixel
	updated, err := f.svc.UpdateRecipe(f.ctx, f.author.ID, created.ID, &types.UpdateRecipeRequest{
		Ingredients: []types.RecipeIngredientRequest{{ID: f.sugar.ID, Amount: 3}},
		Tags:        []uint{f.lunch.ID},
		Name:        &name,
		Image:       &image,
	})
	require.NoError(t, err)
	assert.Equal(t, "Crepes", updated.Name)
	assert.Equal(t, 20, updated.CookingTime)
	assert.NotEqual(t, created.Image, updated.Image)
	assert.Equal(t, 1, f.images.Len(), "replaced image is removed")

	recipe, err := f.svc.GetRecipe(f.ctx, 0, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mix and fry.", recipe.Text)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, f.sugar.ID, recipe.Ingredients[0].ID)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, f.lunch.ID, recipe.Tags[0].ID)
}

func TestUpdateRecipeChecksOrder(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(f.ctx, f.author.ID, f.createRequest())
	require.NoError(t, err)

	invalid := &types.UpdateRecipeRequest{}

	_, err = f.svc.UpdateRecipe(f.ctx, f.author.ID, 9999, invalid)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))

	_, err = f.svc.UpdateRecipe(f.ctx, f.other.ID, created.ID, invalid)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeForbidden))

	_, err = f.svc.UpdateRecipe(f.ctx, f.author.ID, created.ID, invalid)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeValidation))

	recipe, err := f.svc.GetRecipe(f.ctx, 0, created.ID)
	require.NoError(t, err)
	assert.Len(t, recipe.Ingredients, 2, "rejected update leaves the recipe unchanged")
	assert.Len(t, recipe.Tags, 2)
}

func TestDeleteRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(f.ctx, f.author.ID, f.createRequest())
	require.NoError(t, err)

	relations := service.NewRelationService(f.db, f.images)
	_, err = relations.AddFavorite(f.ctx, f.other.ID, created.ID)
	require.NoError(t, err)
	_, err = relations.AddToShoppingCart(f.ctx, f.other.ID, created.ID)
	require.NoError(t, err)

	err = f.svc.DeleteRecipe(f.ctx, f.other.ID, created.ID)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeForbidden))

	require.NoError(t, f.svc.DeleteRecipe(f.ctx, f.author.ID, created.ID))

	for _, table := range []string{"recipes", "recipe_ingredients", "recipe_tags", "favorites", "shopping_cart_entries"} {
		assert.Zero(t, countRows(t, f.db, table), table)
	}
	assert.Zero(t, f.images.Len())
	assert.Equal(t, int64(2), countRows(t, f.db, "tags"), "tags survive recipe deletion")
	assert.Equal(t, int64(2), countRows(t, f.db, "ingredients"))

	err = f.svc.DeleteRecipe(f.ctx, f.author.ID, created.ID)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))
}

func TestGetRecipeNotFound(t *testing.T) {
	f := newRecipeFixture(t)

	_, err := f.svc.GetRecipe(f.ctx, 0, 42)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))
}

func TestListRecipesFilters(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := f.ctx

	breakfast := testhelpers.CreateTag(t, f.db, "Breakfast", "breakfast")
	first := testhelpers.CreateRecipe(t, f.db, f.author, "Porridge", []*models.Tag{breakfast}, testhelpers.Amount{Ingredient: f.sugar, Amount: 10})
	second := testhelpers.CreateRecipe(t, f.db, f.author, "Soup", []*models.Tag{f.lunch}, testhelpers.Amount{Ingredient: f.flour, Amount: 10})
	third := testhelpers.CreateRecipe(t, f.db, f.other, "Steak", []*models.Tag{f.dinner, f.lunch}, testhelpers.Amount{Ingredient: f.flour, Amount: 10})

	relations := service.NewRelationService(f.db, f.images)
	_, err := relations.AddFavorite(ctx, f.other.ID, first.ID)
	require.NoError(t, err)
	_, err = relations.AddToShoppingCart(ctx, f.other.ID, third.ID)
	require.NoError(t, err)

	ids := func(recipes []types.RecipeResponse) []uint {
		out := make([]uint, len(recipes))
		for i, r := range recipes {
			out[i] = r.ID
		}
		return out
	}

	all, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{}, types.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, ids(all), "newest first")
	for _, r := range all {
		assert.False(t, r.IsFavorited)
		assert.False(t, r.IsInShoppingCart)
	}

	byTags, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{Tags: []string{"lunch", "breakfast"}}, types.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "recipes matching several tags appear once")
	assert.Len(t, byTags, 3)

	byAuthor, _, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{AuthorID: f.author.ID}, types.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, ids(byAuthor))

	favorites, _, err := f.svc.ListRecipes(ctx, f.other.ID, types.RecipeFilter{IsFavorited: true}, types.PageRequest{})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, first.ID, favorites[0].ID)
	assert.True(t, favorites[0].IsFavorited)

	cart, _, err := f.svc.ListRecipes(ctx, f.other.ID, types.RecipeFilter{IsInShoppingCart: true, Tags: []string{"dinner"}}, types.PageRequest{})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.True(t, cart[0].IsInShoppingCart)

	anonymous, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{IsFavorited: true}, types.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, anonymous)

	paged, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{}, types.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{first.ID}, ids(paged))
}
