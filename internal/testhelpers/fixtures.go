package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/internal/models"
)

// TestPassword is the password of every user created by CreateUser.
const TestPassword = "s3cret-pass"

// PNGDataURI is a 1x1 transparent PNG.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First " + username,
		LastName:     "Last " + username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: "Tag " + slug, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateRecipe stores a recipe of author directly, bypassing validation.
// amounts maps ingredient ids to amounts.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, amounts map[uint]int) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Text of " + name,
		CookingTime: 10,
		Image:       fmt.Sprintf("/media/%s.png", name),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(recipe).Error)

	for _, tag := range tags {
		require.NoError(t, db.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipe.ID, tag.ID).Error)
	}
	for id, amount := range amounts {
		row := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: id, Amount: amount}
		require.NoError(t, db.Omit(clause.Associations).Create(&row).Error)
	}
	return recipe
}

// Age moves the creation time of a recipe, for ordering tests.
func Age(t *testing.T, db *gorm.DB, recipe *models.Recipe, by time.Duration) {
	t.Helper()
	created := recipe.CreatedAt.Add(-by)
	require.NoError(t, db.Model(recipe).UpdateColumn("created_at", created).Error)
	recipe.CreatedAt = created
}
