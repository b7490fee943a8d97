package api

import (
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/validation"
)

// Ограничения на поля постов, категорий и тегов
const (
	MaxPostTags      = 10
	MaxTagsPerCreate = 10
)

// PostRequest тело запросов создания и обновления поста
type PostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"` // markdown
	CategoryID string   `json:"category_id"`
	Status     string   `json:"status"` // DRAFT или PUBLISHED
	TagIDs     []string `json:"tag_ids"`
}

// Validate проверяет поля поста
func (r PostRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Title, ozzo.Required, validation.NotBlank, ozzo.Length(3, 200)),
		ozzo.Field(&r.Content, ozzo.Required, ozzo.Length(10, 50000)),
		ozzo.Field(&r.CategoryID, ozzo.Required, validation.UUID),
		ozzo.Field(&r.Status, ozzo.Required, ozzo.In(string(models.PostStatusDraft), string(models.PostStatusPublished))),
		ozzo.Field(&r.TagIDs, ozzo.Length(0, MaxPostTags), validation.EachString(validation.UUID)),
	)
}

// AuthorResponse краткие данные автора поста
type AuthorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostResponse представление поста в API
type PostResponse struct {
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Author      AuthorResponse   `json:"author"`
	Category    CategoryResponse `json:"category"`
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	ContentHTML string           `json:"content_html"` // content, отрендеренный из markdown
	Status      string           `json:"status"`
	Tags        []TagResponse    `json:"tags"`
	ReadingTime int              `json:"reading_time"` // минуты
}

// CategoryRequest тело запроса создания категории
type CategoryRequest struct {
	Name string `json:"name"`
}

// Validate проверяет имя категории
func (r CategoryRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Name, ozzo.Required, validation.NotBlank, ozzo.Length(2, 50)),
	)
}

// CategoryResponse представление категории в API
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count,omitempty"`
}

// TagsRequest тело запроса создания тегов
type TagsRequest struct {
	Names []string `json:"names"`
}

// Validate проверяет список имен тегов
func (r TagsRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Names,
			ozzo.Required,
			ozzo.Length(1, MaxTagsPerCreate),
			validation.EachString(ozzo.Required, validation.NotBlank, ozzo.Length(2, 30)),
		),
	)
}

// TagResponse представление тега в API
type TagResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count,omitempty"`
}
