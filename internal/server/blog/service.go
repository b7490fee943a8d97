// Package blog реализует операции над постами, категориями и тегами.
package blog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/blogapi/internal/server/storage"
)

// WordsPerMinute скорость чтения для расчета ReadingTime
const WordsPerMinute = 200

// Service координирует хранилища постов, категорий и тегов
type Service struct {
	posts      storage.PostStorage
	categories storage.CategoryStorage
	tags       storage.TagStorage
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new blog service
func NewService(
	posts storage.PostStorage,
	categories storage.CategoryStorage,
	tags storage.TagStorage,
	logger *slog.Logger,
) *Service {
	return &Service{
		posts:      posts,
		categories: categories,
		tags:       tags,
		logger:     logger,
		now:        time.Now,
	}
}

// ReadingTime возвращает время чтения в минутах с округлением вверх.
// Для пустого текста 0.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
