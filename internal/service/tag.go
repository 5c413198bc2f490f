package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	slugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// TagService handles recipe tags
type TagService struct {
	db *gorm.DB
}

var _ ITagService = (*TagService)(nil)

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context) ([]types.TagResponse, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	out := make([]types.TagResponse, len(tags))
	for i := range tags {
		out[i] = toTagResponse(&tags[i])
	}
	return out, nil
}

func (s *TagService) load(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return &tag, nil
}

func (s *TagService) Get(ctx context.Context, id uint) (*types.TagResponse, error) {
	tag, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTagResponse(tag)
	return &resp, nil
}

func validateTag(req types.TagRequest, create bool) error {
	verr := NewValidationError()
	checkText(verr, "name", req.Name, create, maxNameLength)
	checkText(verr, "color", req.Color, create, 0)
	checkText(verr, "slug", req.Slug, create, maxNameLength)
	if req.Color != nil && !colorPattern.MatchString(strings.TrimSpace(*req.Color)) {
		verr.Add("color", "Enter a valid hex color, e.g. #49B64E.")
	}
	if req.Slug != nil && !slugPattern.MatchString(strings.TrimSpace(*req.Slug)) {
		verr.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	return verr.OrNil()
}

func (s *TagService) save(ctx context.Context, tag *models.Tag) error {
	if err := s.db.WithContext(ctx).Save(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return fieldError("slug", "Tag with this slug already exists.")
		}
		return fmt.Errorf("failed to save tag: %w", err)
	}
	return nil
}

func (s *TagService) Create(ctx context.Context, req types.TagRequest) (*types.TagResponse, error) {
	if err := validateTag(req, true); err != nil {
		return nil, err
	}
	tag := models.Tag{
		Name:  strings.TrimSpace(*req.Name),
		Color: strings.ToUpper(strings.TrimSpace(*req.Color)),
		Slug:  strings.TrimSpace(*req.Slug),
	}
	if err := s.save(ctx, &tag); err != nil {
		return nil, err
	}
	resp := toTagResponse(&tag)
	return &resp, nil
}

func (s *TagService) Update(ctx context.Context, id uint, req types.TagRequest) (*types.TagResponse, error) {
	tag, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateTag(req, false); err != nil {
		return nil, err
	}
	if req.Name != nil {
		tag.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		tag.Color = strings.ToUpper(strings.TrimSpace(*req.Color))
	}
	if req.Slug != nil {
		tag.Slug = strings.TrimSpace(*req.Slug)
	}
	if err := s.save(ctx, tag); err != nil {
		return nil, err
	}
	resp := toTagResponse(tag)
	return &resp, nil
}

// Delete removes a tag and detaches it from every recipe.
func (s *TagService) Delete(ctx context.Context, id uint) error {
	tag, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return fmt.Errorf("failed to detach tag: %w", err)
		}
		if err := tx.Delete(tag).Error; err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		return nil
	})
}
