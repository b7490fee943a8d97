package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/pkg/api"
)

// TagService операции над тегами
type TagService interface {
	ListTags(ctx context.Context) ([]*models.Tag, error)
	CreateTags(ctx context.Context, names []string) ([]*models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// TagHandler обрабатывает запросы к тегам
type TagHandler struct {
	logger *slog.Logger
	tags   TagService
}

// NewTagHandler создает новый handler для тегов
func NewTagHandler(logger *slog.Logger, tags TagService) *TagHandler {
	return &TagHandler{
		logger: logger,
		tags:   tags,
	}
}

// List обрабатывает GET /api/v1/tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tags, err := h.tags.ListTags(ctx)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toTagResponses(tags), http.StatusOK)
}

// Create обрабатывает POST /api/v1/tags
// Возвращает только созданные теги, существующие имена пропускаются
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.TagsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	tags, err := h.tags.CreateTags(ctx, req.Names)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toTagResponses(tags), http.StatusCreated)
}

// Delete обрабатывает DELETE /api/v1/tags/{id}
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.tags.DeleteTag(ctx, r.PathValue("id")); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
