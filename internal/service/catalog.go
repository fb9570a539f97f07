package service

import (
	"context"
	"errors"
	"strings"

	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService serves the read-only tag and ingredient lists.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, domainerrors.Internal("failed to list tags", err)
	}
	out := make([]types.TagResponse, len(tags))
	for i := range tags {
		out[i] = tagResponse(&tags[i])
	}
	return out, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*types.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("Tag not found.")
		}
		return nil, domainerrors.Internal("failed to load tag", err)
	}
	out := tagResponse(&tag)
	return &out, nil
}

// ListIngredients filters by name case-insensitively. Prefix matches come
// before substring matches, each group ordered by name.
func (s *CatalogService) ListIngredients(ctx context.Context, name string) ([]types.IngredientResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})

	name = strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
	if name == "" {
		q = q.Order("name ASC, id ASC")
	} else {
		pattern := escapeLike(name)
		// The whole ordering stays in one expression; a later Order call would replace it.
		q = q.Where("name_lower LIKE ? ESCAPE '\\'", "%"+pattern+"%").
			Order(clause.OrderBy{Expression: clause.Expr{
				SQL:  "CASE WHEN name_lower LIKE ? ESCAPE '\\' THEN 0 ELSE 1 END, name ASC, id ASC",
				Vars: []interface{}{pattern + "%"},
			}})
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, domainerrors.Internal("failed to list ingredients", err)
	}
	out := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		out[i] = ingredientResponse(&ingredients[i])
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("Ingredient not found.")
		}
		return nil, domainerrors.Internal("failed to load ingredient", err)
	}
	out := ingredientResponse(&ing)
	return &out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
