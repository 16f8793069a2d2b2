package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/repository"
)

// CategoryService defines business operations for product categories.
type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func mapCategory(c model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}

// ensureUniqueSlug fails with DuplicateKey when another category owns s.
func (s *categoryService) ensureUniqueSlug(ctx context.Context, sl string, self uuid.UUID) error {
	existing, err := s.repo.FindBySlug(ctx, sl)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return apperr.NewDuplicateKey("category", "a category with that name already exists")
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error) {
	sl := slug.Make(req.Name)
	if sl == "" {
		return dto.CategoryResponse{}, apperr.NewFieldValidation("name", "must contain letters or digits")
	}
	if err := s.ensureUniqueSlug(ctx, sl, uuid.Nil); err != nil {
		return dto.CategoryResponse{}, err
	}

	c := &model.Category{
		Name:        req.Name,
		Slug:        sl,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoryResponse{}, err
	}
	return mapCategory(*c), nil
}

func (s *categoryService) List(ctx context.Context, includeInactive bool) ([]dto.CategoryResponse, error) {
	list, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategory(c))
	}
	return result, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, err
	}

	if req.Name != nil && *req.Name != c.Name {
		sl := slug.Make(*req.Name)
		if err := s.ensureUniqueSlug(ctx, sl, id); err != nil {
			return dto.CategoryResponse{}, err
		}
		c.Name = *req.Name
		c.Slug = sl
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return dto.CategoryResponse{}, err
	}
	return mapCategory(*c), nil
}

func (s *categoryService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}
