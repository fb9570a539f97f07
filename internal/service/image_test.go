package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImage(t *testing.T) {
	img, err := service.DecodeImage(testhelpers.PNGPixel)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension)

	raw := strings.TrimPrefix(testhelpers.PNGPixel, "data:image/png;base64,")
	img, err = service.DecodeImage(raw)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)

	key := service.NewImageKey(img)
	assert.True(t, strings.HasPrefix(key, "recipes/images/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	for name, value := range map[string]string{
		"empty":       "",
		"not base64":  "data:image/png;base64,!!!",
		"no comma":    "data:image/png;base64",
		"not image":   "data:image/png;base64,aGVsbG8gd29ybGQ=",
		"empty bytes": "data:image/png;base64,",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.DecodeImage(value)
			assert.Error(t, err)
		})
	}
}

func TestLocalImageStore(t *testing.T) {
	root := t.TempDir()
	store := service.NewLocalImageStore(root, "/media")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "recipes/images/a.png", []byte("png"), "image/png"))
	data, err := os.ReadFile(filepath.Join(root, "recipes", "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "/media/recipes/images/a.png", store.URL("recipes/images/a.png"))

	require.NoError(t, store.Save(ctx, "../../escape.png", []byte("x"), "image/png"))
	_, err = os.Stat(filepath.Join(root, "escape.png"))
	assert.NoError(t, err, "keys cannot leave the media root")

	require.NoError(t, store.Delete(ctx, "recipes/images/a.png"))
	require.NoError(t, store.Delete(ctx, "recipes/images/a.png"))
	_, err = os.Stat(filepath.Join(root, "recipes", "images", "a.png"))
	assert.True(t, os.IsNotExist(err))
}
