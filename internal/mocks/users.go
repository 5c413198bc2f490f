package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

var _ service.IUserService = (*MockUserService)(nil)

func (m *MockUserService) List(ctx context.Context, viewer uint, page service.Pagination) ([]types.UserResponse, int64, error) {
	args := m.Called(ctx, viewer, page)
	users, _ := args.Get(0).([]types.UserResponse)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Get(ctx context.Context, viewer, id uint) (*types.UserResponse, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserResponse), args.Error(1)
}

func (m *MockUserService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	args := m.Called(ctx, userID, authorID, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubscriptionResponse), args.Error(1)
}

func (m *MockUserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	args := m.Called(ctx, userID, authorID)
	return args.Error(0)
}

func (m *MockUserService) Subscriptions(ctx context.Context, userID uint, page service.Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	args := m.Called(ctx, userID, page, recipesLimit)
	subs, _ := args.Get(0).([]types.SubscriptionResponse)
	return subs, args.Get(1).(int64), args.Error(2)
}
