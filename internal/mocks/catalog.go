package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

type MockTagService struct {
	mock.Mock
}

var _ service.ITagService = (*MockTagService)(nil)

func (m *MockTagService) List(ctx context.Context) ([]types.TagResponse, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]types.TagResponse)
	return tags, args.Error(1)
}

func (m *MockTagService) Get(ctx context.Context, id uint) (*types.TagResponse, error) {
	return tagResult(m.Called(ctx, id))
}

func (m *MockTagService) Create(ctx context.Context, req types.TagRequest) (*types.TagResponse, error) {
	return tagResult(m.Called(ctx, req))
}

func (m *MockTagService) Update(ctx context.Context, id uint, req types.TagRequest) (*types.TagResponse, error) {
	return tagResult(m.Called(ctx, id, req))
}

func (m *MockTagService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func tagResult(args mock.Arguments) (*types.TagResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TagResponse), args.Error(1)
}

type MockIngredientService struct {
	mock.Mock
}

var _ service.IIngredientService = (*MockIngredientService)(nil)

func (m *MockIngredientService) List(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error) {
	args := m.Called(ctx, namePrefix)
	ingredients, _ := args.Get(0).([]types.IngredientResponse)
	return ingredients, args.Error(1)
}

func (m *MockIngredientService) Get(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	return ingredientResult(m.Called(ctx, id))
}

func (m *MockIngredientService) Create(ctx context.Context, req types.IngredientRequest) (*types.IngredientResponse, error) {
	return ingredientResult(m.Called(ctx, req))
}

func (m *MockIngredientService) Update(ctx context.Context, id uint, req types.IngredientRequest) (*types.IngredientResponse, error) {
	return ingredientResult(m.Called(ctx, id, req))
}

func (m *MockIngredientService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func ingredientResult(args mock.Arguments) (*types.IngredientResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.IngredientResponse), args.Error(1)
}
