package handlers

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/pkg/api"
)

// markdown конвертер содержимого постов. Сырой HTML из markdown не пропускается.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown конвертирует markdown в HTML.
// При ошибке возвращает пустую строку: content в ответе остается.
func renderMarkdown(logger *slog.Logger, src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		logger.Error("failed to convert markdown", slog.Any("error", err))
		return ""
	}
	return buf.String()
}

func toPostResponse(logger *slog.Logger, p *models.Post) api.PostResponse {
	tags := make([]api.TagResponse, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, api.TagResponse{ID: t.ID, Name: t.Name})
	}

	return api.PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: renderMarkdown(logger, p.Content),
		Status:      string(p.Status),
		ReadingTime: p.ReadingTime,
		Author:      api.AuthorResponse{ID: p.AuthorID, Name: p.AuthorName},
		Category:    api.CategoryResponse{ID: p.Category.ID, Name: p.Category.Name},
		Tags:        tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPostResponses(logger *slog.Logger, posts []*models.Post) []api.PostResponse {
	resp := make([]api.PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toPostResponse(logger, p))
	}
	return resp
}

func toCategoryResponses(categories []*models.Category) []api.CategoryResponse {
	resp := make([]api.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, api.CategoryResponse{ID: c.ID, Name: c.Name, PostCount: c.PostCount})
	}
	return resp
}

func toTagResponses(tags []*models.Tag) []api.TagResponse {
	resp := make([]api.TagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, api.TagResponse{ID: t.ID, Name: t.Name, PostCount: t.PostCount})
	}
	return resp
}
