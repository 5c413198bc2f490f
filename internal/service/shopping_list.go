package service

import (
	"bytes"
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/foodgram/backend/internal/types"
)

// shoppingListQuery sums ingredient amounts over every recipe in the cart of userID.
func shoppingListQuery(userID uint) (string, []interface{}, error) {
	return sq.Select(
		"ingredients.name AS name",
		"ingredients.measurement_unit AS measurement_unit",
		"SUM(recipe_ingredients.amount) AS total",
	).
		From("shopping_carts").
		Join("recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Join("ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where(sq.Eq{"shopping_carts.user_id": userID}).
		GroupBy("ingredients.name", "ingredients.measurement_unit").
		OrderBy("ingredients.name", "ingredients.measurement_unit").
		ToSql()
}

// ShoppingList aggregates the ingredients of every recipe in the cart of userID.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	query, args, err := shoppingListQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list query: %w", err)
	}

	items := []types.ShoppingListItem{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	return items, nil
}

// RenderShoppingList formats items as the plain-text download.
func RenderShoppingList(items []types.ShoppingListItem) []byte {
	var buf bytes.Buffer
	buf.WriteString("Shopping list\n\n")
	if len(items) == 0 {
		buf.WriteString("Your shopping cart is empty.\n")
		return buf.Bytes()
	}
	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s (%s) - %d\n", i+1, item.Name, item.MeasurementUnit, item.Total)
	}
	return buf.Bytes()
}
