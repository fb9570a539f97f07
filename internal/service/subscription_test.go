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

func TestSubscribe(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	images := testhelpers.NewMemoryImageStore()
	svc := service.NewSubscriptionService(db, images)
	ctx := context.Background()

	chef := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")
	tag := testhelpers.CreateTag(t, db, "Lunch", "lunch")
	first := testhelpers.CreateRecipe(t, db, chef, "Soup", []*models.Tag{tag})
	second := testhelpers.CreateRecipe(t, db, chef, "Salad", []*models.Tag{tag})
	testhelpers.CreateRecipe(t, db, chef, "Stew", []*models.Tag{tag})

	sub, err := svc.Subscribe(ctx, fan.ID, chef.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, chef.ID, sub.ID)
	assert.Equal(t, "chef", sub.Username)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(3), sub.RecipesCount)
	require.Len(t, sub.Recipes, 2)
	assert.Equal(t, first.ID, sub.Recipes[0].ID)
	assert.Equal(t, second.ID, sub.Recipes[1].ID)

	_, err = svc.Subscribe(ctx, fan.ID, chef.ID, service.NoRecipesLimit)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeConflict))

	_, err = svc.Subscribe(ctx, fan.ID, fan.ID, service.NoRecipesLimit)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeValidation))

	_, err = svc.Subscribe(ctx, fan.ID, 9999, service.NoRecipesLimit)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))

	assert.Equal(t, int64(1), countRows(t, db, "subscriptions"))

	users := service.NewUserService(db, images)
	profile, err := users.GetUser(ctx, fan.ID, chef.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)
	profile, err = users.GetUser(ctx, 0, chef.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)
}

func TestUnsubscribe(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db, testhelpers.NewMemoryImageStore())
	ctx := context.Background()

	chef := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")

	err := svc.Unsubscribe(ctx, fan.ID, chef.ID)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))

	_, err = svc.Subscribe(ctx, fan.ID, chef.ID, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, fan.ID, chef.ID))
	assert.Zero(t, countRows(t, db, "subscriptions"))

	err = svc.Unsubscribe(ctx, fan.ID, 9999)
	assert.True(t, domainerrors.IsCode(err, domainerrors.CodeNotFound))
}

func TestListSubscriptions(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db, testhelpers.NewMemoryImageStore())
	ctx := context.Background()

	fan := testhelpers.CreateUser(t, db, "fan")
	baker := testhelpers.CreateUser(t, db, "baker")
	grill := testhelpers.CreateUser(t, db, "grill")
	tag := testhelpers.CreateTag(t, db, "Lunch", "lunch")
	testhelpers.CreateRecipe(t, db, baker, "Bread", []*models.Tag{tag})
	testhelpers.CreateRecipe(t, db, baker, "Buns", []*models.Tag{tag})

	_, err := svc.Subscribe(ctx, fan.ID, baker.ID, 0)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, fan.ID, grill.ID, 0)
	require.NoError(t, err)

	subs, total, err := svc.ListSubscriptions(ctx, fan.ID, types.PageRequest{}, service.NoRecipesLimit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, subs, 2)
	assert.Equal(t, grill.ID, subs[0].ID, "most recent subscription first")
	assert.Empty(t, subs[0].Recipes)
	assert.Equal(t, baker.ID, subs[1].ID)
	assert.Len(t, subs[1].Recipes, 2)
	assert.Equal(t, int64(2), subs[1].RecipesCount)

	subs, _, err = svc.ListSubscriptions(ctx, fan.ID, types.PageRequest{}, 0)
	require.NoError(t, err)
	assert.Empty(t, subs[1].Recipes)
	assert.Equal(t, int64(2), subs[1].RecipesCount)

	none, total, err := svc.ListSubscriptions(ctx, baker.ID, types.PageRequest{}, service.NoRecipesLimit)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}
