package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/loader"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

const ingredientsCSV = `name,measurement_unit
apricot jam,g
"salt, coarse",pinch
milk,ml
`

const tagsCSV = `name,color,slug
Breakfast,#e26c2d,breakfast
Dinner,#49B64E,dinner
`

func TestLoadReplacesCatalogs(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	oldTag := testhelpers.CreateTag(t, db, "old")
	oldIngredient := testhelpers.CreateIngredient(t, db, "old flour", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, "pie", []*models.Tag{oldTag}, map[uint]int{oldIngredient.ID: 3})

	res, err := loader.New(db, 2).Load(context.Background(), strings.NewReader(ingredientsCSV), strings.NewReader(tagsCSV))
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Ingredients: 3, Tags: 2}, res)

	var ingredients []models.Ingredient
	require.NoError(t, db.Order("name").Find(&ingredients).Error)
	require.Len(t, ingredients, 3)
	assert.Equal(t, "apricot jam", ingredients[0].Name)
	assert.Equal(t, "salt, coarse", ingredients[2].Name)
	assert.Equal(t, "pinch", ingredients[2].MeasurementUnit)

	var tags []models.Tag
	require.NoError(t, db.Order("slug").Find(&tags).Error)
	require.Len(t, tags, 2)
	assert.Equal(t, "#E26C2D", tags[0].Color)

	var rows int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&rows).Error)
	assert.Zero(t, rows)
	require.NoError(t, db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	var recipes int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Equal(t, int64(1), recipes)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name        string
		ingredients string
		tags        string
		errContains string
	}{
		{"empty ingredients", "", tagsCSV, "missing header row"},
		{"missing column", "name\nflour\n", tagsCSV, `missing column "measurement_unit"`},
		{"empty value", "name,measurement_unit\nflour,\n", tagsCSV, "empty measurement_unit"},
		{"ragged row", "name,measurement_unit\nflour,g,extra\n", tagsCSV, "wrong number of fields"},
		{"tags without slug", ingredientsCSV, "name,color\nLunch,#FFFFFF\n", `missing column "slug"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.SetupSQLiteDB(t)
			kept := testhelpers.CreateIngredient(t, db, "kept", "g")

			_, err := loader.New(db, 0).Load(context.Background(), strings.NewReader(tt.ingredients), strings.NewReader(tt.tags))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)

			var count int64
			require.NoError(t, db.Model(&models.Ingredient{}).Where("id = ?", kept.ID).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestLoadDuplicateRollsBack(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.CreateTag(t, db, "kept")

	dupTags := "name,color,slug\nA,#000000,same\nB,#000000,same\n"
	_, err := loader.New(db, 0).Load(context.Background(), strings.NewReader(ingredientsCSV), strings.NewReader(dupTags))
	require.Error(t, err)

	var ingredients, tags int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Zero(t, ingredients)
	assert.Equal(t, int64(1), tags)
}

func TestLoadFiles(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ingredients.csv"), []byte(ingredientsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.csv"), []byte(tagsCSV), 0o644))

	res, err := loader.New(db, 0).LoadFiles(context.Background(), dir, "ingredients.csv", "tags.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Ingredients)

	_, err = loader.New(db, 0).LoadFiles(context.Background(), dir, "missing.csv", "tags.csv")
	assert.Error(t, err)
}
