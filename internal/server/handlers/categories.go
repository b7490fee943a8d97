package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/pkg/api"
)

// CategoryService операции над категориями
type CategoryService interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CategoryHandler обрабатывает запросы к категориям
type CategoryHandler struct {
	logger     *slog.Logger
	categories CategoryService
}

// NewCategoryHandler создает новый handler для категорий
func NewCategoryHandler(logger *slog.Logger, categories CategoryService) *CategoryHandler {
	return &CategoryHandler{
		logger:     logger,
		categories: categories,
	}
}

// List обрабатывает GET /api/v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.categories.ListCategories(ctx)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toCategoryResponses(categories), http.StatusOK)
}

// Create обрабатывает POST /api/v1/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CategoryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	category, err := h.categories.CreateCategory(ctx, req.Name)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, api.CategoryResponse{ID: category.ID, Name: category.Name}, http.StatusCreated)
}

// Delete обрабатывает DELETE /api/v1/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.categories.DeleteCategory(ctx, r.PathValue("id")); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
