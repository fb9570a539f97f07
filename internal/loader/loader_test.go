package loader_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/loader"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIngredients(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	l := loader.New(db)
	ctx := context.Background()

	input := strings.Join([]string{
		"абрикосовое варенье,г",
		"flour,g",
		"broken row",
		"too,many,fields",
		"flour,kg",
		"flour,g",
		"",
	}, "\n")

	res, err := l.LoadIngredients(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Created: 3, Existing: 1, Skipped: 2}, res)

	res, err = l.LoadIngredients(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created, "loading twice is idempotent")

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestLoadIngredientsNormalizesNames(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	l := loader.New(db)

	decomposed := "cre\u0301me fraiche,g\n"
	composed := "cr\u00e9me fraiche,g\n"

	res, err := l.LoadIngredients(context.Background(), strings.NewReader(decomposed+composed))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Existing)
}

func TestLoadTags(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	l := loader.New(db)

	input := "Breakfast,#ee8d00,breakfast\nLunch,green,lunch\nDinner,dinner\nSupper,#E26C2D,supper\n"
	res, err := l.LoadTags(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Created: 2, Skipped: 2}, res)

	var tag models.Tag
	require.NoError(t, db.Where("slug = ?", "breakfast").First(&tag).Error)
	assert.Equal(t, "#EE8D00", tag.Color)
	require.NoError(t, db.Where("slug = ?", "lunch").First(&tag).Error)
	assert.Equal(t, "#00D300", tag.Color)

	res, err = l.LoadTags(context.Background(), strings.NewReader("Lunch,#00d300,lunch\n"))
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Existing: 1}, res)
}

func TestTagColorIsEnforcedOnSave(t *testing.T) {
	db := testhelpers.SetupSQLite(t)

	err := db.Create(&models.Tag{Name: "Odd", Color: "#123456", Slug: "odd"}).Error
	assert.ErrorIs(t, err, models.ErrInvalidTagColor)

	tag := models.Tag{Name: "Night", Color: "Purple", Slug: "night"}
	require.NoError(t, db.Create(&tag).Error)
	assert.Equal(t, "#5300C4", tag.Color)
}
