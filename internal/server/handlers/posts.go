package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/apperr"
	"github.com/iudanet/blogapi/internal/server/auth"
	"github.com/iudanet/blogapi/internal/server/blog"
	"github.com/iudanet/blogapi/pkg/api"
)

// PostService операции над постами
type PostService interface {
	ListPosts(ctx context.Context, categoryID, tagID string) ([]*models.Post, error)
	ListDrafts(ctx context.Context, authorID string) ([]*models.Post, error)
	GetPost(ctx context.Context, id, viewerID string) (*models.Post, error)
	CreatePost(ctx context.Context, authorID string, in blog.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, in blog.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// PostHandler обрабатывает запросы к постам
type PostHandler struct {
	logger *slog.Logger
	posts  PostService
}

// NewPostHandler создает новый handler для постов
func NewPostHandler(logger *slog.Logger, posts PostService) *PostHandler {
	return &PostHandler{
		logger: logger,
		posts:  posts,
	}
}

// List обрабатывает GET /api/v1/posts?categoryId=&tagId=
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	posts, err := h.posts.ListPosts(ctx, query.Get("categoryId"), query.Get("tagId"))
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toPostResponses(h.logger, posts), http.StatusOK)
}

// Drafts обрабатывает GET /api/v1/posts/drafts
// Черновики текущего пользователя
func (h *PostHandler) Drafts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		writeError(ctx, w, h.logger, errNoIdentity)
		return
	}

	posts, err := h.posts.ListDrafts(ctx, userID)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toPostResponses(h.logger, posts), http.StatusOK)
}

// Get обрабатывает GET /api/v1/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// маршрут публичный, личность может отсутствовать
	viewerID, _ := auth.UserIDFromContext(ctx)

	post, err := h.posts.GetPost(ctx, r.PathValue("id"), viewerID)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toPostResponse(h.logger, post), http.StatusOK)
}

// Create обрабатывает POST /api/v1/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		writeError(ctx, w, h.logger, errNoIdentity)
		return
	}

	var req api.PostRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	post, err := h.posts.CreatePost(ctx, userID, toPostInput(req))
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toPostResponse(h.logger, post), http.StatusCreated)
}

// Update обрабатывает PUT /api/v1/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PostRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	post, err := h.posts.UpdatePost(ctx, r.PathValue("id"), toPostInput(req))
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, toPostResponse(h.logger, post), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.posts.DeletePost(ctx, r.PathValue("id")); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toPostInput(req api.PostRequest) blog.PostInput {
	return blog.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Status:     models.PostStatus(req.Status),
		TagIDs:     req.TagIDs,
	}
}

// errNoIdentity в контексте запроса нет личности
var errNoIdentity = apperr.Authentication("authentication required")
