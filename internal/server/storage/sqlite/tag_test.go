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

func TestTagStorage_CreateTags(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tags := []*models.Tag{
		{ID: uuid.New().String(), Name: "go"},
		{ID: uuid.New().String(), Name: "sql"},
	}
	require.NoError(t, s.CreateTags(ctx, tags))
	require.NoError(t, s.CreateTags(ctx, nil))

	all, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "go", all[0].Name)
	assert.Equal(t, "sql", all[1].Name)
}

func TestTagStorage_CreateTags_Atomic(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestTag(t, ctx, s, "existing")

	err := s.CreateTags(ctx, []*models.Tag{
		{ID: uuid.New().String(), Name: "fresh"},
		{ID: uuid.New().String(), Name: "EXISTING"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrTagAlreadyExists)

	// транзакция откатилась, "fresh" не сохранен
	found, err := s.GetTagsByNames(ctx, []string{"fresh"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTagStorage_Lookups(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	goTag := createTestTag(t, ctx, s, "go")
	sqlTag := createTestTag(t, ctx, s, "sql")

	t.Run("get by id", func(t *testing.T) {
		got, err := s.GetTag(ctx, goTag.ID)
		require.NoError(t, err)
		assert.Equal(t, "go", got.Name)

		_, err = s.GetTag(ctx, uuid.New().String())
		assert.ErrorIs(t, err, storage.ErrTagNotFound)
	})

	t.Run("get by ids skips unknown", func(t *testing.T) {
		got, err := s.GetTagsByIDs(ctx, []string{goTag.ID, uuid.New().String(), sqlTag.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = s.GetTagsByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("get by names is case-insensitive", func(t *testing.T) {
		got, err := s.GetTagsByNames(ctx, []string{"GO", "rust"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, goTag.ID, got[0].ID)
	})
}

func TestTagStorage_DeleteTag(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s)
	category := createTestCategory(t, ctx, s, "Go")
	free := createTestTag(t, ctx, s, "free")
	used := createTestTag(t, ctx, s, "used")
	createTestPost(t, ctx, s, user, category, models.PostStatusPublished, time.Now().UTC(), used)

	count, err := s.CountTagPosts(ctx, used.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.GetTag(ctx, used.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.PostCount)

	require.NoError(t, s.DeleteTag(ctx, free.ID))
	assert.ErrorIs(t, s.DeleteTag(ctx, free.ID), storage.ErrTagNotFound)
	assert.ErrorIs(t, s.DeleteTag(ctx, used.ID), storage.ErrTagInUse)
}
