package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// MockRecipeService is a mock implementation of the RecipeService interface
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) List(ctx context.Context, viewer uint, filter service.RecipeFilter, page service.Pagination) ([]types.RecipeResponse, int64, error) {
	args := m.Called(ctx, viewer, filter, page)
	recipes, _ := args.Get(0).([]types.RecipeResponse)
	return recipes, args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) Get(ctx context.Context, viewer, id uint) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewer, id)
	return recipeResult(args)
}

func (m *MockRecipeService) Create(ctx context.Context, authorID uint, req types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, authorID, req)
	return recipeResult(args)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, recipeID uint, req types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, userID, recipeID, req)
	return recipeResult(args)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
	return shortResult(m.Called(ctx, userID, recipeID))
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) AddToCart(ctx context.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
	return shortResult(m.Called(ctx, userID, recipeID))
}

func (m *MockRecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]types.ShoppingListItem)
	return items, args.Error(1)
}

func recipeResult(args mock.Arguments) (*types.RecipeResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func shortResult(args mock.Arguments) (*types.ShortRecipeResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShortRecipeResponse), args.Error(1)
}
