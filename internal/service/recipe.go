package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
)

const (
	msgRequired        = "This field is required."
	msgBlank           = "This field may not be blank."
	msgTooLong         = "Ensure this field has no more than 200 characters."
	msgCookingTime     = "Ensure this value is greater than or equal to 1."
	msgAmount          = "Amount must be at least 1"
	msgDuplicateIngred = "Ingredients must be unique."
	msgInvalidImage    = "Upload a valid image."
	maxNameLength      = 200
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images storage.ImageStore
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images storage.ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("RecipeIngredients.Ingredient")
}

func toShortRecipe(r *models.Recipe) types.ShortRecipeResponse {
	return types.ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func toTagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

// List returns one page of recipes matching filter, newest first.
func (s *RecipeService) List(ctx context.Context, viewer uint, filter RecipeFilter, page Pagination) ([]types.RecipeResponse, int64, error) {
	db := s.db.WithContext(ctx)
	if err := checkTagSlugs(db, filter.Tags); err != nil {
		return nil, 0, err
	}
	query := filter.Apply(db.Model(&models.Recipe{}), viewer).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := page.scope(withDetails(query).Order("recipes.created_at DESC, recipes.id DESC")).Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	out, err := s.present(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *RecipeService) Get(ctx context.Context, viewer, id uint) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := withDetails(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	out, err := s.present(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// relationSet returns which of recipeIDs appear in viewer's rows of model.
func (s *RecipeService) relationSet(ctx context.Context, model interface{}, viewer uint, recipeIDs []uint) (map[uint]bool, error) {
	set := map[uint]bool{}
	if viewer == 0 || len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", viewer, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// present maps loaded recipes to their full representation for viewer.
func (s *RecipeService) present(ctx context.Context, viewer uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	ids := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	favorited, err := s.relationSet(ctx, &models.Favorite{}, viewer, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	inCart, err := s.relationSet(ctx, &models.ShoppingCart{}, viewer, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping cart: %w", err)
	}
	followed, err := followedAuthors(ctx, s.db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		tags := make([]types.TagResponse, len(r.Tags))
		for j := range r.Tags {
			tags[j] = toTagResponse(&r.Tags[j])
		}
		ingredients := make([]types.RecipeIngredientResponse, len(r.RecipeIngredients))
		for j, ri := range r.RecipeIngredients {
			ingredients[j] = types.RecipeIngredientResponse{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}
		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           toUserResponse(&r.Author, followed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

// recipeWrite is a validated write request.
type recipeWrite struct {
	tags  []models.Tag
	rows  []models.RecipeIngredient
	image *storage.Image
}

func checkText(verr *ValidationError, field string, v *string, required bool, maxLen int) {
	if v == nil {
		if required {
			verr.Add(field, msgRequired)
		}
		return
	}
	trimmed := strings.TrimSpace(*v)
	switch {
	case trimmed == "":
		verr.Add(field, msgBlank)
	case maxLen > 0 && len([]rune(trimmed)) > maxLen:
		verr.Add(field, msgTooLong)
	}
}

// validate checks req completely before anything is written. On create every
// field is required.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeWriteRequest, create bool) (*recipeWrite, error) {
	verr := NewValidationError()
	w := &recipeWrite{}

	checkText(verr, "name", req.Name, create, maxNameLength)
	checkText(verr, "text", req.Text, create, 0)
	if req.CookingTime == nil {
		if create {
			verr.Add("cooking_time", msgRequired)
		}
	} else if *req.CookingTime < 1 {
		verr.Add("cooking_time", msgCookingTime)
	}

	if req.Image == nil || strings.TrimSpace(*req.Image) == "" {
		if create || req.Image != nil {
			verr.Add("image", msgRequired)
		}
	} else {
		img, err := storage.DecodeDataURI(*req.Image)
		if err != nil {
			verr.Add("image", msgInvalidImage)
		}
		w.image = img
	}

	if len(req.Ingredients) == 0 {
		verr.Add("ingredients", msgRequired)
	} else {
		seen := make(map[uint]bool, len(req.Ingredients))
		ids := make([]uint, 0, len(req.Ingredients))
		for _, item := range req.Ingredients {
			if item.Amount < 1 {
				verr.Add("ingredients", msgAmount)
			}
			if seen[item.ID] {
				verr.Add("ingredients", msgDuplicateIngred)
			}
			seen[item.ID] = true
			ids = append(ids, item.ID)
		}
		if _, bad := verr.Fields["ingredients"]; !bad {
			var found int64
			if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
				return nil, fmt.Errorf("failed to check ingredients: %w", err)
			}
			if int(found) != len(ids) {
				verr.Add("ingredients", "Invalid ingredient id - object does not exist.")
			}
		}
		for _, item := range req.Ingredients {
			w.rows = append(w.rows, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
		}
	}

	if len(req.Tags) == 0 {
		verr.Add("tags", msgRequired)
	} else {
		seen := make(map[uint]bool, len(req.Tags))
		ids := make([]uint, 0, len(req.Tags))
		for _, id := range req.Tags {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&w.tags).Error; err != nil {
			return nil, fmt.Errorf("failed to load tags: %w", err)
		}
		if len(w.tags) != len(ids) {
			verr.Add("tags", "Invalid tag id - object does not exist.")
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return w, nil
}

// writeAssociations replaces the tag set and the ingredient rows of recipe.
func writeAssociations(tx *gorm.DB, recipe *models.Recipe, w *recipeWrite) error {
	if err := tx.Model(recipe).Association("Tags").Replace(w.tags); err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}
	rows := make([]models.RecipeIngredient, len(w.rows))
	for i, row := range w.rows {
		row.RecipeID = recipe.ID
		rows[i] = row
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to add ingredients: %w", err)
	}
	return nil
}

func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", url).Msg("failed to delete recipe image")
	}
}

func (s *RecipeService) saveImage(ctx context.Context, img *storage.Image) (string, error) {
	if img == nil {
		return "", nil
	}
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}
	url, err := storage.SaveImage(ctx, s.images, img)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

// Create stores a new recipe of authorID with its ingredients and tags.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	w, err := s.validate(ctx, &req, true)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, w.image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(*req.Name),
		Text:        strings.TrimSpace(*req.Text),
		CookingTime: *req.CookingTime,
		Image:       imageURL,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return writeAssociations(tx, &recipe, w)
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.Get(ctx, authorID, recipe.ID)
}

// getOwned loads a recipe and checks that userID wrote it.
func (s *RecipeService) getOwned(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// Update changes a recipe of userID. Ingredients and tags are replaced.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, req types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	recipe, err := s.getOwned(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	w, err := s.validate(ctx, &req, false)
	if err != nil {
		return nil, err
	}

	newImage, err := s.saveImage(ctx, w.image)
	if err != nil {
		return nil, err
	}
	oldImage := recipe.Image

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		updates["text"] = strings.TrimSpace(*req.Text)
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	if newImage != "" {
		updates["image"] = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}
		return writeAssociations(tx, recipe, w)
	})
	if err != nil {
		s.discardImage(ctx, newImage)
		return nil, err
	}
	if newImage != "" {
		s.discardImage(ctx, oldImage)
	}

	return s.Get(ctx, userID, recipeID)
}

// Delete removes a recipe of userID together with every row referencing it.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.getOwned(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Favorite{}, &models.ShoppingCart{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.discardImage(ctx, recipe.Image)
	logging.Ctx(ctx).Info().Uint("recipe_id", recipeID).Msg("recipe deleted")
	return nil
}

func (s *RecipeService) shortRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// addRelation inserts a (user, recipe) row of model, rejecting duplicates with conflict.
func (s *RecipeService) addRelation(ctx context.Context, userID, recipeID uint, model interface{}, conflict error) (*types.ShortRecipeResponse, error) {
	recipe, err := s.shortRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(model).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check relation: %w", err)
	}
	if count > 0 {
		return nil, conflict
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create relation: %w", err)
	}

	short := toShortRecipe(recipe)
	return &short, nil
}

func (s *RecipeService) removeRelation(ctx context.Context, userID, recipeID uint, model interface{}, absent error) error {
	if _, err := s.shortRecipe(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("failed to delete relation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return absent
	}
	return nil
}

func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
	return s.addRelation(ctx, userID, recipeID, &models.Favorite{UserID: userID, RecipeID: recipeID}, ErrAlreadyFavorited)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.removeRelation(ctx, userID, recipeID, &models.Favorite{}, ErrNotFavorited)
}

func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
	return s.addRelation(ctx, userID, recipeID, &models.ShoppingCart{UserID: userID, RecipeID: recipeID}, ErrAlreadyInCart)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.removeRelation(ctx, userID, recipeID, &models.ShoppingCart{}, ErrNotInCart)
}
