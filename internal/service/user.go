package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// UserService serves user profiles and subscriptions. A viewer id of 0 is an
// anonymous request.
type UserService struct {
	db *gorm.DB
}

var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func toUserResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// followedAuthors returns which of authorIDs viewer follows.
func followedAuthors(ctx context.Context, db *gorm.DB, viewer uint, authorIDs []uint) (map[uint]bool, error) {
	set := map[uint]bool{}
	if viewer == 0 || len(authorIDs) == 0 {
		return set, nil
	}
	var ids []uint
	err := db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", viewer, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *UserService) List(ctx context.Context, viewer uint, page Pagination) ([]types.UserResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := page.scope(db.Order("id")).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := followedAuthors(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i], followed[users[i].ID])
	}
	return out, total, nil
}

func (s *UserService) getUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, viewer, id uint) (*types.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	followed, err := followedAuthors(ctx, s.db, viewer, []uint{id})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user, followed[id])
	return &resp, nil
}

// AllRecipes as a recipes limit keeps the whole recipe preview.
const AllRecipes = -1

// Subscribe makes userID follow authorID and returns the author with a
// preview of at most recipesLimit recipes (all when recipesLimit is negative).
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, ErrFollowSelf
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check follow: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyFollowing
	}

	if err := db.Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyFollowing
		}
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}
	logging.Ctx(ctx).Debug().Uint("user_id", userID).Uint("author_id", authorID).Msg("subscribed")

	subs, err := s.subscriptionResponses(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.getUser(ctx, authorID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// Subscriptions lists the authors userID follows.
func (s *UserService) Subscriptions(ctx context.Context, userID uint, page Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	db := s.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
	authors := db.Model(&models.User{}).Where("id IN (?)", followed).Session(&gorm.Session{})

	var total int64
	if err := authors.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var users []models.User
	if err := page.scope(authors.Order("id")).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	out, err := s.subscriptionResponses(ctx, users, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// subscriptionResponses builds the representation of authors the viewer follows.
func (s *UserService) subscriptionResponses(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	out := make([]types.SubscriptionResponse, 0, len(authors))
	if len(authors) == 0 {
		return out, nil
	}
	db := s.db.WithContext(ctx)

	ids := make([]uint, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	var counts []struct {
		AuthorID uint
		Total    int64
	}
	err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	countByAuthor := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Total
	}

	for i := range authors {
		var recipes []models.Recipe
		if recipesLimit != 0 {
			q := db.Where("author_id = ?", authors[i].ID).Order("created_at DESC, id DESC")
			if recipesLimit > 0 {
				q = q.Limit(recipesLimit)
			}
			if err := q.Find(&recipes).Error; err != nil {
				return nil, fmt.Errorf("failed to load recipes: %w", err)
			}
		}
		short := make([]types.ShortRecipeResponse, len(recipes))
		for j := range recipes {
			short[j] = toShortRecipe(&recipes[j])
		}
		out = append(out, types.SubscriptionResponse{
			UserResponse: toUserResponse(&authors[i], true),
			Recipes:      short,
			RecipesCount: countByAuthor[authors[i].ID],
		})
	}
	return out, nil
}
