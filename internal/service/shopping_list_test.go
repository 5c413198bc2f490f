package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

func TestShoppingListQuery(t *testing.T) {
	query, args, err := shoppingListQuery(7)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total "+
			"FROM shopping_carts "+
			"JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id "+
			"JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id "+
			"WHERE shopping_carts.user_id = ? "+
			"GROUP BY ingredients.name, ingredients.measurement_unit "+
			"ORDER BY ingredients.name, ingredients.measurement_unit",
		query)
	assert.Equal(t, []interface{}{uint(7)}, args)
}

func TestRecipeService_ShoppingList(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLiteDB(t)
	svc := NewRecipeService(db, nil)

	author := testhelpers.CreateUser(t, db, "author")
	buyer := testhelpers.CreateUser(t, db, "buyer")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	milk := testhelpers.CreateIngredient(t, db, "milk", "ml")

	bread := testhelpers.CreateRecipe(t, db, author, "bread", nil, map[uint]int{salt.ID: 5, flour.ID: 500})
	pancakes := testhelpers.CreateRecipe(t, db, author, "pancakes", nil, map[uint]int{salt.ID: 2, flour.ID: 200, milk.ID: 300})
	testhelpers.CreateRecipe(t, db, author, "soup", nil, map[uint]int{salt.ID: 10})

	empty, err := svc.ShoppingList(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, r := range []*models.Recipe{bread, pancakes} {
		_, err := svc.AddToCart(ctx, buyer.ID, r.ID)
		require.NoError(t, err)
	}

	items, err := svc.ShoppingList(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Total: 700},
		{Name: "milk", MeasurementUnit: "ml", Total: 300},
		{Name: "salt", MeasurementUnit: "g", Total: 7},
	}, items)
}

func TestRenderShoppingList(t *testing.T) {
	assert.Equal(t, "Shopping list\n\nYour shopping cart is empty.\n", string(RenderShoppingList(nil)))

	out := RenderShoppingList([]types.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Total: 700},
		{Name: "milk", MeasurementUnit: "ml", Total: 300},
	})
	assert.Equal(t, "Shopping list\n\n1. flour (g) - 700\n2. milk (ml) - 300\n", string(out))
}
