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

// PostInput данные для создания и обновления поста
type PostInput struct {
	Title      string
	Content    string
	CategoryID string
	Status     models.PostStatus
	TagIDs     []string
}

// ListPosts возвращает опубликованные посты, при необходимости
// отфильтрованные по категории и/или тегу.
func (s *Service) ListPosts(ctx context.Context, categoryID, tagID string) ([]*models.Post, error) {
	filter := storage.PostFilter{Status: models.PostStatusPublished}

	if categoryID != "" {
		if _, err := s.getCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		filter.CategoryID = categoryID
	}

	if tagID != "" {
		if _, err := s.tags.GetTag(ctx, tagID); err != nil {
			if errors.Is(err, storage.ErrTagNotFound) {
				return nil, apperr.Wrap(apperr.ErrNotFound, "tag not found with id: "+tagID, err)
			}
			return nil, fmt.Errorf("failed to get tag: %w", err)
		}
		filter.TagID = tagID
	}

	posts, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// ListDrafts возвращает черновики автора
func (s *Service) ListDrafts(ctx context.Context, authorID string) ([]*models.Post, error) {
	posts, err := s.posts.ListPosts(ctx, storage.PostFilter{
		Status:   models.PostStatusDraft,
		AuthorID: authorID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	return posts, nil
}

// GetPost возвращает пост. Черновик виден только своему автору,
// для остальных он не существует. viewerID пустой для анонимного запроса.
func (s *Service) GetPost(ctx context.Context, id, viewerID string) (*models.Post, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.Status == models.PostStatusDraft && post.AuthorID != viewerID {
		return nil, apperr.NotFound("post not found with id: " + id)
	}

	return post, nil
}

// CreatePost создает пост от имени authorID
func (s *Service) CreatePost(ctx context.Context, authorID string, in PostInput) (*models.Post, error) {
	post := &models.Post{
		ID:       uuid.New().String(),
		AuthorID: authorID,
	}

	if err := s.applyInput(ctx, post, in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.InfoContext(ctx, "Post created",
		slog.String("post_id", post.ID),
		slog.String("author_id", authorID),
		slog.String("status", string(post.Status)),
	)

	return s.getPost(ctx, post.ID)
}

// UpdatePost заменяет поля поста, включая статус и набор тегов
func (s *Service) UpdatePost(ctx context.Context, id string, in PostInput) (*models.Post, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyInput(ctx, post, in); err != nil {
		return nil, err
	}
	post.UpdatedAt = s.now().UTC()

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "post not found with id: "+id, err)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.logger.InfoContext(ctx, "Post updated", slog.String("post_id", id))

	return s.getPost(ctx, id)
}

// DeletePost удаляет пост
func (s *Service) DeletePost(ctx context.Context, id string) error {
	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "post not found with id: "+id, err)
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.InfoContext(ctx, "Post deleted", slog.String("post_id", id))

	return nil
}

func (s *Service) getPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "post not found with id: "+id, err)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// applyInput проверяет ссылки на категорию и теги и переносит поля в post
func (s *Service) applyInput(ctx context.Context, post *models.Post, in PostInput) error {
	if !in.Status.IsValid() {
		return apperr.Validation("invalid post status", map[string]string{
			"status": fmt.Sprintf("must be %s or %s", models.PostStatusDraft, models.PostStatusPublished),
		})
	}

	category, err := s.getCategory(ctx, in.CategoryID)
	if err != nil {
		return err
	}

	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	post.Status = in.Status
	post.ReadingTime = ReadingTime(in.Content)
	post.Category = *category
	post.Tags = tags

	return nil
}

// resolveTags загружает теги по id. Неизвестный id считается ошибкой входных данных.
func (s *Service) resolveTags(ctx context.Context, ids []string) ([]models.Tag, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := s.tags.GetTagsByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}

	if len(found) != len(unique) {
		known := make(map[string]struct{}, len(found))
		for _, t := range found {
			known[t.ID] = struct{}{}
		}
		var missing []string
		for _, id := range unique {
			if _, ok := known[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, apperr.Validation("unknown tag ids", map[string]string{
			"tag_ids": "unknown: " + strings.Join(missing, ", "),
		})
	}

	tags := make([]models.Tag, 0, len(found))
	for _, t := range found {
		tags = append(tags, *t)
	}

	return tags, nil
}
