package models

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	// PostStatusDraft is visible only to its author via the drafts listing.
	PostStatusDraft PostStatus = "DRAFT"
	// PostStatusPublished is visible to everyone.
	PostStatusPublished PostStatus = "PUBLISHED"
)

// IsValid reports whether s is one of the known statuses.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished:
		return true
	default:
		return false
	}
}

// Category groups posts. Every post belongs to exactly one category.
type Category struct {
	ID        string `json:"id"`         // UUID категории
	Name      string `json:"name"`       // уникальное имя (без учета регистра)
	PostCount int64  `json:"post_count"` // количество постов, заполняется при листинге
}

// Tag is a free-form label attached to posts.
type Tag struct {
	ID        string `json:"id"`         // UUID тега
	Name      string `json:"name"`       // уникальное имя
	PostCount int64  `json:"post_count"` // количество постов, заполняется при листинге
}

// Post is a blog article.
type Post struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Category    Category   `json:"category"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Status      PostStatus `json:"status"`
	AuthorID    string     `json:"author_id"`
	AuthorName  string     `json:"author_name"`
	Tags        []Tag      `json:"tags"`
	ReadingTime int        `json:"reading_time"` // минуты чтения
}

// TagIDs returns the ids of the post's tags in order.
func (p *Post) TagIDs() []string {
	ids := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
