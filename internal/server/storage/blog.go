package storage

import (
	"context"

	"github.com/iudanet/blogapi/internal/models"
)

// CategoryStorage defines interface for category persistence
type CategoryStorage interface {
	// ListCategories returns all categories ordered by name.
	// PostCount holds the number of published posts.
	ListCategories(ctx context.Context) ([]*models.Category, error)

	// GetCategory returns ErrCategoryNotFound if category doesn't exist
	GetCategory(ctx context.Context, id string) (*models.Category, error)

	// CategoryNameExists compares names case-insensitively
	CategoryNameExists(ctx context.Context, name string) (bool, error)

	// CreateCategory returns ErrCategoryAlreadyExists on duplicate name
	CreateCategory(ctx context.Context, category *models.Category) error

	// DeleteCategory returns ErrCategoryNotFound if nothing was deleted
	// and ErrCategoryInUse if posts still reference the category
	DeleteCategory(ctx context.Context, id string) error

	// CountCategoryPosts counts posts of any status in the category
	CountCategoryPosts(ctx context.Context, id string) (int64, error)
}

// TagStorage defines interface for tag persistence
type TagStorage interface {
	// ListTags returns all tags ordered by name.
	// PostCount holds the number of published posts.
	ListTags(ctx context.Context) ([]*models.Tag, error)

	// GetTag returns ErrTagNotFound if tag doesn't exist
	GetTag(ctx context.Context, id string) (*models.Tag, error)

	// GetTagsByIDs returns the tags that exist, unknown ids are skipped
	GetTagsByIDs(ctx context.Context, ids []string) ([]*models.Tag, error)

	// GetTagsByNames returns the tags that exist, names are compared case-insensitively
	GetTagsByNames(ctx context.Context, names []string) ([]*models.Tag, error)

	// CreateTags inserts all tags in a single transaction
	CreateTags(ctx context.Context, tags []*models.Tag) error

	// DeleteTag returns ErrTagNotFound if nothing was deleted
	// and ErrTagInUse if posts still reference the tag
	DeleteTag(ctx context.Context, id string) error

	// CountTagPosts counts posts of any status carrying the tag
	CountTagPosts(ctx context.Context, id string) (int64, error)
}

// PostFilter narrows ListPosts. Empty fields do not filter.
type PostFilter struct {
	Status     models.PostStatus
	CategoryID string
	TagID      string
	AuthorID   string
}

// PostStorage defines interface for post persistence
type PostStorage interface {
	// ListPosts returns posts matching the filter, newest first
	ListPosts(ctx context.Context, filter PostFilter) ([]*models.Post, error)

	// GetPost returns ErrPostNotFound if post doesn't exist
	GetPost(ctx context.Context, id string) (*models.Post, error)

	// CreatePost stores the post and its tag links (post.Tags ids) atomically
	CreatePost(ctx context.Context, post *models.Post) error

	// UpdatePost replaces the post fields and its tag links atomically.
	// Returns ErrPostNotFound if post doesn't exist
	UpdatePost(ctx context.Context, post *models.Post) error

	// DeletePost returns ErrPostNotFound if post doesn't exist
	DeletePost(ctx context.Context, id string) error
}
