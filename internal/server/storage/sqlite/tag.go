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

const tagSelect = `
	SELECT t.id, t.name,
		(SELECT COUNT(*) FROM post_tags pt JOIN posts p ON p.id = pt.post_id
		 WHERE pt.tag_id = t.id AND p.status = ?)
	FROM tags t
`

// ListTags returns tags with the number of published posts
func (s *Storage) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.queryTags(ctx, tagSelect+` ORDER BY t.name`, string(models.PostStatusPublished))
}

// GetTag retrieves tag by ID
func (s *Storage) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := s.db.QueryRowContext(ctx, tagSelect+` WHERE t.id = ?`, string(models.PostStatusPublished), id).
		Scan(&tag.ID, &tag.Name, &tag.PostCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return tag, nil
}

// GetTagsByIDs returns existing tags with the given IDs
func (s *Storage) GetTagsByIDs(ctx context.Context, ids []string) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return []*models.Tag{}, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, string(models.PostStatusPublished))
	for _, id := range ids {
		args = append(args, id)
	}

	query := tagSelect + ` WHERE t.id IN (` + placeholders(len(ids)) + `) ORDER BY t.name`
	return s.queryTags(ctx, query, args...)
}

// GetTagsByNames returns existing tags with the given names (case-insensitive)
func (s *Storage) GetTagsByNames(ctx context.Context, names []string) ([]*models.Tag, error) {
	if len(names) == 0 {
		return []*models.Tag{}, nil
	}

	args := make([]any, 0, len(names)+1)
	args = append(args, string(models.PostStatusPublished))
	for _, name := range names {
		args = append(args, strings.TrimSpace(name))
	}

	query := tagSelect + ` WHERE t.name IN (` + placeholders(len(names)) + `) ORDER BY t.name`
	return s.queryTags(ctx, query, args...)
}

// CreateTags inserts all tags in one transaction
func (s *Storage) CreateTags(ctx context.Context, tags []*models.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare tag insert: %w", err)
		}
		defer stmt.Close()

		now := nowUTC()
		for _, tag := range tags {
			if _, err := stmt.ExecContext(ctx, tag.ID, tag.Name, now); err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("tag %q: %w", tag.Name, storage.ErrTagAlreadyExists)
				}
				return fmt.Errorf("failed to insert tag %q: %w", tag.Name, err)
			}
		}

		return nil
	})
}

// DeleteTag deletes tag by ID
func (s *Storage) DeleteTag(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrTagInUse
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTagNotFound
	}

	return nil
}

// CountTagPosts counts posts of any status carrying the tag
func (s *Storage) CountTagPosts(ctx context.Context, id string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM post_tags WHERE tag_id = ?`

	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tag posts: %w", err)
	}

	return count, nil
}

func (s *Storage) queryTags(ctx context.Context, query string, args ...any) ([]*models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*models.Tag, 0)
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}
