package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/apperr"
	"github.com/iudanet/blogapi/internal/server/storage"
)

// ListCategories возвращает категории с числом опубликованных постов
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory создает категорию. Имя уникально без учета регистра.
func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)

	exists, err := s.categories.CategoryNameExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("category name already exists: " + name)
	}

	category := &models.Category{
		ID:   uuid.New().String(),
		Name: name,
	}

	if err := s.categories.CreateCategory(ctx, category); err != nil {
		// имя могли занять между проверкой и вставкой
		if errors.Is(err, storage.ErrCategoryAlreadyExists) {
			return nil, apperr.Wrap(apperr.ErrConflict, "category name already exists: "+name, err)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.InfoContext(ctx, "Category created",
		slog.String("category_id", category.ID),
		slog.String("name", name),
	)

	return category, nil
}

// DeleteCategory удаляет категорию без постов. Отсутствующая категория не ошибка.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	count, err := s.categories.CountCategoryPosts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count category posts: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("there are posts associated with category: " + id)
	}

	err = s.categories.DeleteCategory(ctx, id)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "Category deleted", slog.String("category_id", id))
		return nil
	case errors.Is(err, storage.ErrCategoryNotFound):
		return nil
	case errors.Is(err, storage.ErrCategoryInUse):
		return apperr.Wrap(apperr.ErrConflict, "there are posts associated with category: "+id, err)
	default:
		return fmt.Errorf("failed to delete category: %w", err)
	}
}

func (s *Service) getCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrCategoryNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "category not found with id: "+id, err)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}
