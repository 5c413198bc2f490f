package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// IngredientService handles the ingredient catalogue
type IngredientService struct {
	db *gorm.DB
}

var _ IIngredientService = (*IngredientService)(nil)

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

func toIngredientResponse(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// List returns ingredients whose name starts with namePrefix, ignoring case.
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error) {
	var ingredients []models.Ingredient
	err := NamePrefix(s.db.WithContext(ctx), strings.TrimSpace(namePrefix)).
		Order("name").Order("id").
		Find(&ingredients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	out := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		out[i] = toIngredientResponse(&ingredients[i])
	}
	return out, nil
}

func (s *IngredientService) load(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	return &ingredient, nil
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	ingredient, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toIngredientResponse(ingredient)
	return &resp, nil
}

func (s *IngredientService) Create(ctx context.Context, req types.IngredientRequest) (*types.IngredientResponse, error) {
	verr := NewValidationError()
	checkText(verr, "name", req.Name, true, maxNameLength)
	checkText(verr, "measurement_unit", req.MeasurementUnit, true, maxNameLength)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	ingredient := models.Ingredient{
		Name:            strings.TrimSpace(*req.Name),
		MeasurementUnit: strings.TrimSpace(*req.MeasurementUnit),
	}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fieldError("name", "Ingredient with this name and measurement unit already exists.")
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	resp := toIngredientResponse(&ingredient)
	return &resp, nil
}

func (s *IngredientService) Update(ctx context.Context, id uint, req types.IngredientRequest) (*types.IngredientResponse, error) {
	ingredient, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := NewValidationError()
	checkText(verr, "name", req.Name, false, maxNameLength)
	checkText(verr, "measurement_unit", req.MeasurementUnit, false, maxNameLength)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if req.Name != nil {
		ingredient.Name = strings.TrimSpace(*req.Name)
	}
	if req.MeasurementUnit != nil {
		ingredient.MeasurementUnit = strings.TrimSpace(*req.MeasurementUnit)
	}

	if err := s.db.WithContext(ctx).Save(ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fieldError("name", "Ingredient with this name and measurement unit already exists.")
		}
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}
	resp := toIngredientResponse(ingredient)
	return &resp, nil
}

// Delete removes an ingredient and its rows in every recipe.
func (s *IngredientService) Delete(ctx context.Context, id uint) error {
	ingredient, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", ingredient.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipe ingredients: %w", err)
		}
		if err := tx.Delete(ingredient).Error; err != nil {
			return fmt.Errorf("failed to delete ingredient: %w", err)
		}
		return nil
	})
}
