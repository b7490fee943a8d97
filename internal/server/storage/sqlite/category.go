package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/storage"
)

// ListCategories returns categories with the number of published posts
func (s *Storage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT c.id, c.name, COUNT(p.id)
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id AND p.status = ?
		GROUP BY c.id, c.name
		ORDER BY c.name
	`

	rows, err := s.db.QueryContext(ctx, query, string(models.PostStatusPublished))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// GetCategory retrieves category by ID
func (s *Storage) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	query := `
		SELECT c.id, c.name,
			(SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id AND p.status = ?)
		FROM categories c
		WHERE c.id = ?
	`

	c := &models.Category{}
	err := s.db.QueryRowContext(ctx, query, string(models.PostStatusPublished), id).Scan(&c.ID, &c.Name, &c.PostCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return c, nil
}

// CategoryNameExists checks the name case-insensitively
func (s *Storage) CategoryNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE name = ?)`

	if err := s.db.QueryRowContext(ctx, query, strings.TrimSpace(name)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}

	return exists, nil
}

// CreateCategory inserts a new category
func (s *Storage) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, category.ID, category.Name, nowUTC())
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

// DeleteCategory deletes category by ID
func (s *Storage) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrCategoryNotFound
	}

	return nil
}

// CountCategoryPosts counts posts of any status in the category
func (s *Storage) CountCategoryPosts(ctx context.Context, id string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM posts WHERE category_id = ?`

	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count category posts: %w", err)
	}

	return count, nil
}
