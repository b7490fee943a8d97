package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/storage"
)

func TestCategoryStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	created := createTestCategory(t, ctx, s, "Programming")

	got, err := s.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Programming", got.Name)
	assert.Equal(t, int64(0), got.PostCount)

	_, err = s.GetCategory(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
}

func TestCategoryStorage_DuplicateName(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestCategory(t, ctx, s, "Travel")

	err := s.CreateCategory(ctx, &models.Category{ID: uuid.New().String(), Name: "TRAVEL"})
	assert.ErrorIs(t, err, storage.ErrCategoryAlreadyExists)

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "same case", query: "Travel", want: true},
		{name: "different case", query: "travel", want: true},
		{name: "surrounding spaces", query: " Travel ", want: true},
		{name: "unknown", query: "Food", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := s.CategoryNameExists(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestCategoryStorage_ListCategories_PostCount(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s)
	goCat := createTestCategory(t, ctx, s, "Go")
	createTestCategory(t, ctx, s, "Empty")

	now := time.Now().UTC()
	createTestPost(t, ctx, s, user, goCat, models.PostStatusPublished, now)
	createTestPost(t, ctx, s, user, goCat, models.PostStatusPublished, now.Add(time.Second))
	createTestPost(t, ctx, s, user, goCat, models.PostStatusDraft, now.Add(2*time.Second))

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	// сортировка по имени, в счетчик попадают только опубликованные посты
	assert.Equal(t, "Empty", categories[0].Name)
	assert.Equal(t, int64(0), categories[0].PostCount)
	assert.Equal(t, "Go", categories[1].Name)
	assert.Equal(t, int64(2), categories[1].PostCount)

	total, err := s.CountCategoryPosts(ctx, goCat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestCategoryStorage_DeleteCategory(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s)
	empty := createTestCategory(t, ctx, s, "Empty")
	used := createTestCategory(t, ctx, s, "Used")
	createTestPost(t, ctx, s, user, used, models.PostStatusDraft, time.Now().UTC())

	require.NoError(t, s.DeleteCategory(ctx, empty.ID))
	_, err := s.GetCategory(ctx, empty.ID)
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)

	err = s.DeleteCategory(ctx, empty.ID)
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)

	err = s.DeleteCategory(ctx, used.ID)
	assert.ErrorIs(t, err, storage.ErrCategoryInUse)
}
