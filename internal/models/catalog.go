package models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Tag is a recipe label. Name, color and slug are each unique.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Color string `gorm:"size:7;not null;uniqueIndex" json:"color"`
	Slug  string `gorm:"size:200;not null;uniqueIndex" json:"slug"`
}

// Ingredient is unique by name and measurement unit. NameLower is kept in
// sync with Name on every save and backs the case-insensitive search.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	NameLower       string `gorm:"size:200;not null;default:'';index:idx_ingredients_name_lower" json:"-"`
	MeasurementUnit string `gorm:"size:10;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.NameLower = strings.ToLower(i.Name)
	return nil
}

// TagSwatch is one of the fixed colors a tag may use.
type TagSwatch struct {
	Name string
	Hex  string
}

// TagSwatches lists the allowed tag colors.
var TagSwatches = []TagSwatch{
	{"blue", "#005DFF"},
	{"green", "#00D300"},
	{"orange", "#EE8D00"},
	{"purple", "#5300C4"},
	{"black", "#000000"},
	{"mint", "#3EB489"},
}

var ErrInvalidTagColor = errors.New("tag color must be one of the predefined swatches")

// ParseTagColor accepts a swatch name or hex value in any case and returns the hex value.
func ParseTagColor(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, sw := range TagSwatches {
		if strings.EqualFold(value, sw.Name) || strings.EqualFold(value, sw.Hex) {
			return sw.Hex, true
		}
	}
	return "", false
}

func (t *Tag) BeforeSave(*gorm.DB) error {
	hex, ok := ParseTagColor(t.Color)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTagColor, t.Color)
	}
	t.Color = hex
	return nil
}
