// Package loader replaces the ingredient and tag catalogs with the contents
// of CSV files. Each file starts with a header row naming its columns:
// name,measurement_unit for ingredients and name,color,slug for tags.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
)

const DefaultBatchSize = 500

// Result counts the rows inserted by a load.
type Result struct {
	Ingredients int
	Tags        int
}

type Loader struct {
	db        *gorm.DB
	batchSize int
}

func New(db *gorm.DB, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{db: db, batchSize: batchSize}
}

// LoadFiles reads both files from dataDir and loads them.
func (l *Loader) LoadFiles(ctx context.Context, dataDir, ingredientsFile, tagsFile string) (Result, error) {
	ingredients, err := os.Open(filepath.Join(dataDir, ingredientsFile))
	if err != nil {
		return Result{}, fmt.Errorf("failed to open ingredients file: %w", err)
	}
	defer ingredients.Close()

	tags, err := os.Open(filepath.Join(dataDir, tagsFile))
	if err != nil {
		return Result{}, fmt.Errorf("failed to open tags file: %w", err)
	}
	defer tags.Close()

	return l.Load(ctx, ingredients, tags)
}

// Load parses both inputs completely, then wipes the catalogs and inserts the
// new rows in one transaction. Recipe rows that point at removed ingredients
// or tags are removed with them.
func (l *Loader) Load(ctx context.Context, ingredientsCSV, tagsCSV io.Reader) (Result, error) {
	ingredients, err := readIngredients(ingredientsCSV)
	if err != nil {
		return Result{}, fmt.Errorf("ingredients: %w", err)
	}
	tags, err := readTags(tagsCSV)
	if err != nil {
		return Result{}, fmt.Errorf("tags: %w", err)
	}

	log := logging.Ctx(ctx)
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		log.Info().Msg("removing ingredients")
		if err := all.Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipe ingredients: %w", err)
		}
		if err := all.Delete(&models.Ingredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete ingredients: %w", err)
		}
		if len(ingredients) > 0 {
			if err := tx.CreateInBatches(ingredients, l.batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert ingredients: %w", err)
			}
		}
		log.Info().Int("count", len(ingredients)).Msg("ingredients loaded")

		log.Info().Msg("removing tags")
		if err := tx.Exec("DELETE FROM recipe_tags").Error; err != nil {
			return fmt.Errorf("failed to delete recipe tags: %w", err)
		}
		if err := all.Delete(&models.Tag{}).Error; err != nil {
			return fmt.Errorf("failed to delete tags: %w", err)
		}
		if len(tags) > 0 {
			if err := tx.CreateInBatches(tags, l.batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert tags: %w", err)
			}
		}
		log.Info().Int("count", len(tags)).Msg("tags loaded")
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Ingredients: len(ingredients), Tags: len(tags)}, nil
}

// records reads r as CSV and returns each data row keyed by header name.
// Every column in required must be present and non-empty.
func records(r io.Reader, required ...string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		row := make(map[string]string, len(required))
		for _, col := range required {
			v := strings.TrimSpace(fields[index[col]])
			if v == "" {
				return nil, fmt.Errorf("line %d: empty %s", line, col)
			}
			row[col] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readIngredients(r io.Reader) ([]models.Ingredient, error) {
	rows, err := records(r, "name", "measurement_unit")
	if err != nil {
		return nil, err
	}
	out := make([]models.Ingredient, len(rows))
	for i, row := range rows {
		out[i] = models.Ingredient{Name: row["name"], MeasurementUnit: row["measurement_unit"]}
	}
	return out, nil
}

func readTags(r io.Reader) ([]models.Tag, error) {
	rows, err := records(r, "name", "color", "slug")
	if err != nil {
		return nil, err
	}
	out := make([]models.Tag, len(rows))
	for i, row := range rows {
		out[i] = models.Tag{Name: row["name"], Color: strings.ToUpper(row["color"]), Slug: row["slug"]}
	}
	return out, nil
}
