// Package loader imports the ingredient and tag catalogs from CSV files.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	IngredientsFile = "ingredients.csv"
	TagsFile        = "tags.csv"
)

// Result counts what a load did with the rows it read.
type Result struct {
	Created  int
	Existing int
	Skipped  int
}

func (r Result) String() string {
	return fmt.Sprintf("created=%d existing=%d skipped=%d", r.Created, r.Existing, r.Skipped)
}

// Loader writes catalog rows with get-or-create semantics.
type Loader struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Loader {
	return &Loader{db: db}
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// readRows calls fn for each record with exactly width fields. Other rows are counted as skipped.
func readRows(r io.Reader, width int, res *Result, fn func(fields []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Skipped++
				continue
			}
			return err
		}
		if len(record) != width {
			res.Skipped++
			continue
		}
		for i := range record {
			record[i] = clean(record[i])
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}

// LoadIngredients reads "name,measurement_unit" rows.
func (l *Loader) LoadIngredients(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	db := l.db.WithContext(ctx)
	err := readRows(r, 2, &res, func(f []string) error {
		if f[0] == "" || f[1] == "" {
			res.Skipped++
			return nil
		}
		created, err := getOrCreate(db, &models.Ingredient{Name: f[0], MeasurementUnit: f[1]})
		if err != nil {
			return fmt.Errorf("failed to load ingredient %q: %w", f[0], err)
		}
		tally(&res, created)
		return nil
	})
	return res, err
}

// LoadTags reads "name,color,slug" rows. The color is a swatch name or its
// hex value; rows with any other color are skipped.
func (l *Loader) LoadTags(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	db := l.db.WithContext(ctx)
	err := readRows(r, 3, &res, func(f []string) error {
		if f[0] == "" || f[1] == "" || f[2] == "" {
			res.Skipped++
			return nil
		}
		color, ok := models.ParseTagColor(f[1])
		if !ok {
			res.Skipped++
			return nil
		}
		created, err := getOrCreate(db, &models.Tag{Name: f[0], Color: color, Slug: f[2]})
		if err != nil {
			return fmt.Errorf("failed to load tag %q: %w", f[2], err)
		}
		tally(&res, created)
		return nil
	})
	return res, err
}

// getOrCreate inserts row unless a row with the same non-zero fields exists.
func getOrCreate[T any](db *gorm.DB, row *T) (bool, error) {
	var existing T
	err := db.Where(row).First(&existing).Error
	if err == nil {
		*row = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := db.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func tally(res *Result, created bool) {
	if created {
		res.Created++
	} else {
		res.Existing++
	}
}
