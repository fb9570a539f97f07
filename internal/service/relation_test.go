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
)

func TestRelationToggles(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	images := testhelpers.NewMemoryImageStore()
	svc := service.NewRelationService(db, images)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	tag := testhelpers.CreateTag(t, db, "Lunch", "lunch")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup", []*models.Tag{tag})

	tests := []struct {
		name   string
		add    func(ctx context.Context, userID, recipeID uint) (*types.RecipeSummary, error)
		remove func(ctx context.Context, userID, recipeID uint) error
		table  string
	}{
		{"favorites", svc.AddFavorite, svc.RemoveFavorite, "favorites"},
		{"shopping cart", svc.AddToShoppingCart, svc.RemoveFromShoppingCart, "shopping_cart_entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := tt.add(ctx, reader.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, summary.ID)
			assert.Equal(t, "Soup", summary.Name)
			assert.Equal(t, images.URL(recipe.Image), summary.Image)

			_, err = tt.add(ctx, reader.ID, recipe.ID)
			assert.True(t, domainerrors.IsCode(err, domainerrors.CodeConflict))
			assert.Equal(t, int64(1), countRows(t, db, tt.table))

			require.NoError(t, tt.remove(ctx, reader.ID, recipe.ID))
			err = tt.remove(ctx, reader.ID, recipe.ID)
			assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))
			assert.Zero(t, countRows(t, db, tt.table))

			_, err = tt.add(ctx, reader.ID, 9999)
			assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))
			err = tt.remove(ctx, reader.ID, 9999)
			assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))
		})
	}
}

func TestRelationFlagsAreViewerRelative(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	images := testhelpers.NewMemoryImageStore()
	relations := service.NewRelationService(db, images)
	recipes := service.NewRecipeService(db, images)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	tag := testhelpers.CreateTag(t, db, "Lunch", "lunch")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup", []*models.Tag{tag})

	_, err := relations.AddFavorite(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)

	asReader, err := recipes.GetRecipe(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, asReader.IsFavorited)
	assert.False(t, asReader.IsInShoppingCart)

	for _, viewer := range []uint{0, author.ID} {
		got, err := recipes.GetRecipe(ctx, viewer, recipe.ID)
		require.NoError(t, err)
		assert.False(t, got.IsFavorited)
	}
}
