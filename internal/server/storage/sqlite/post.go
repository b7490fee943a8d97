package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/storage"
)

const postSelect = `
	SELECT p.id, p.title, p.content, p.status, p.reading_time,
		p.author_id, u.name, p.category_id, c.name,
		p.created_at, p.updated_at
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id
`

// ListPosts returns posts matching the filter, newest first
func (s *Storage) ListPosts(ctx context.Context, filter storage.PostFilter) ([]*models.Post, error) {
	var (
		conds []string
		args  []any
	)

	if filter.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.CategoryID != "" {
		conds = append(conds, "p.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.AuthorID != "" {
		conds = append(conds, "p.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.TagID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = ?)")
		args = append(args, filter.TagID)
	}

	query := postSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id"

	posts, err := s.queryPosts(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// GetPost retrieves post by ID together with its tags
func (s *Storage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	posts, err := s.queryPosts(ctx, postSelect+" WHERE p.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, storage.ErrPostNotFound
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts[0], nil
}

// CreatePost inserts the post and its tag links
func (s *Storage) CreatePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, title, content, status, reading_time, author_id, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			post.ID,
			post.Title,
			post.Content,
			string(post.Status),
			post.ReadingTime,
			post.AuthorID,
			post.Category.ID,
			post.CreatedAt,
			post.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}

		return linkTags(ctx, tx, post.ID, post.TagIDs())
	})
}

// UpdatePost replaces post fields and tag links
func (s *Storage) UpdatePost(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = ?, content = ?, status = ?, reading_time = ?, category_id = ?, updated_at = ?
		WHERE id = ?
	`

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			post.Title,
			post.Content,
			string(post.Status),
			post.ReadingTime,
			post.Category.ID,
			post.UpdatedAt,
			post.ID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return storage.ErrCategoryNotFound
			}
			return fmt.Errorf("failed to update post: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return storage.ErrPostNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, post.ID); err != nil {
			return fmt.Errorf("failed to clear post tags: %w", err)
		}

		return linkTags(ctx, tx, post.ID, post.TagIDs())
	})
}

// DeletePost deletes post by ID, tag links are removed by cascade
func (s *Storage) DeletePost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

func linkTags(ctx context.Context, tx *sql.Tx, postID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("tag %s: %w", tagID, storage.ErrTagNotFound)
			}
			return fmt.Errorf("failed to link tag %s: %w", tagID, err)
		}
	}
	return nil
}

func (s *Storage) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		var (
			post   models.Post
			status string
		)
		err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&status,
			&post.ReadingTime,
			&post.AuthorID,
			&post.AuthorName,
			&post.Category.ID,
			&post.Category.Name,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.Status = models.PostStatus(status)
		post.Tags = []models.Tag{}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// attachTags загружает теги одним запросом. Вызывается после закрытия rows
// основного запроса: пул ограничен одним соединением.
func (s *Storage) attachTags(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*models.Post, len(posts))
	args := make([]any, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		args = append(args, p.ID)
	}

	query := `
		SELECT pt.post_id, t.id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (` + placeholders(len(posts)) + `)
		ORDER BY t.name
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			tag    models.Tag
		)
		if err := rows.Scan(&postID, &tag.ID, &tag.Name); err != nil {
			return fmt.Errorf("failed to scan post tag: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate post tags: %w", err)
	}

	return nil
}
