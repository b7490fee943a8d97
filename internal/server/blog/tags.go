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

// ListTags возвращает теги с числом опубликованных постов
func (s *Service) ListTags(ctx context.Context) ([]*models.Tag, error) {
	tags, err := s.tags.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateTags создает теги, которых еще нет, и возвращает только созданные.
// Имена обрезаются по краям, пустые и повторы (без учета регистра) отбрасываются.
func (s *Service) CreateTags(ctx context.Context, names []string) ([]*models.Tag, error) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, name)
	}

	if len(unique) == 0 {
		return []*models.Tag{}, nil
	}

	existing, err := s.tags.GetTagsByNames(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	existingNames := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		existingNames[strings.ToLower(t.Name)] = struct{}{}
	}

	created := make([]*models.Tag, 0, len(unique))
	for _, name := range unique {
		if _, ok := existingNames[strings.ToLower(name)]; ok {
			continue
		}
		created = append(created, &models.Tag{
			ID:   uuid.New().String(),
			Name: name,
		})
	}

	if len(created) == 0 {
		return created, nil
	}

	if err := s.tags.CreateTags(ctx, created); err != nil {
		if errors.Is(err, storage.ErrTagAlreadyExists) {
			return nil, apperr.Wrap(apperr.ErrConflict, "tag already exists", err)
		}
		return nil, fmt.Errorf("failed to create tags: %w", err)
	}

	s.logger.InfoContext(ctx, "Tags created", slog.Int("count", len(created)))

	return created, nil
}

// DeleteTag удаляет тег без постов. Отсутствующий тег не ошибка.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	count, err := s.tags.CountTagPosts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count tag posts: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("there are posts associated with tag: " + id)
	}

	err = s.tags.DeleteTag(ctx, id)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "Tag deleted", slog.String("tag_id", id))
		return nil
	case errors.Is(err, storage.ErrTagNotFound):
		return nil
	case errors.Is(err, storage.ErrTagInUse):
		return apperr.Wrap(apperr.ErrConflict, "there are posts associated with tag: "+id, err)
	default:
		return fmt.Errorf("failed to delete tag: %w", err)
	}
}
