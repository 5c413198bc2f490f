package service

import (
	"context"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uint, req types.SetPasswordRequest) error
}

// IUserService defines the interface for user and subscription operations
type IUserService interface {
	List(ctx context.Context, viewer uint, page Pagination) ([]types.UserResponse, int64, error)
	Get(ctx context.Context, viewer, id uint) (*types.UserResponse, error)
	Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	Subscriptions(ctx context.Context, userID uint, page Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, viewer uint, filter RecipeFilter, page Pagination) ([]types.RecipeResponse, int64, error)
	Get(ctx context.Context, viewer, id uint) (*types.RecipeResponse, error)
	Create(ctx context.Context, authorID uint, req types.RecipeWriteRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, userID, recipeID uint, req types.RecipeWriteRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, userID, recipeID uint) error
	AddFavorite(ctx context.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToCart(ctx context.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error)
}

// ITagService defines the interface for tag operations
type ITagService interface {
	List(ctx context.Context) ([]types.TagResponse, error)
	Get(ctx context.Context, id uint) (*types.TagResponse, error)
	Create(ctx context.Context, req types.TagRequest) (*types.TagResponse, error)
	Update(ctx context.Context, id uint, req types.TagRequest) (*types.TagResponse, error)
	Delete(ctx context.Context, id uint) error
}

// IIngredientService defines the interface for ingredient operations
type IIngredientService interface {
	List(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error)
	Get(ctx context.Context, id uint) (*types.IngredientResponse, error)
	Create(ctx context.Context, req types.IngredientRequest) (*types.IngredientResponse, error)
	Update(ctx context.Context, id uint, req types.IngredientRequest) (*types.IngredientResponse, error)
	Delete(ctx context.Context, id uint) error
}
