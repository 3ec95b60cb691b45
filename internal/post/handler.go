package post

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yhamdan/socialite/pkg/middleware"
	"github.com/yhamdan/socialite/pkg/response"
)

// Handler handles HTTP requests for post operations
type Handler struct {
	service *Service
}

// NewHandler creates a new post handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for post endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/feed", h.Feed)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/like", h.Like)
	r.Post("/{id}/unlike", h.Unlike)

	return r
}

// Create handles POST /posts
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body CreatePostRequest true "Post creation request"
// @Success      201 {object} response.APIResponse{data=PostResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	post, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, verr.Fields)
			return
		}
		response.InternalError(w, "Failed to create post")
		return
	}

	response.JSON(w, http.StatusCreated, post.ToResponse())
}

// GetByID handles GET /posts/{id}
// @Summary      Get a post by ID
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Post ID"
// @Success      200 {object} response.APIResponse{data=PostResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	post, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get post")
		return
	}

	response.JSON(w, http.StatusOK, post.ToResponse())
}

// List handles GET /posts
// @Summary      List posts
// @Description  Paginated list of all posts, newest first; optional search over title and content
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Param        search query string false "Search term"
// @Success      200 {object} response.APIResponse{data=[]PostResponse}
// @Router       /posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, page, perPage int) ([]*Post, int, error) {
		return h.service.List(ctx, r.URL.Query().Get("search"), page, perPage)
	})
}

// Feed handles GET /posts/feed
// @Summary      Get the caller's feed
// @Description  Posts authored by users the caller follows, newest first
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]PostResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /posts/feed [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	h.list(w, r, func(ctx context.Context, page, perPage int) ([]*Post, int, error) {
		return h.service.Feed(ctx, userID, page, perPage)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, page, perPage int) ([]*Post, int, error)) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	posts, total, err := fetch(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list posts")
		return
	}

	postResponses := make([]*PostResponse, len(posts))
	for i, post := range posts {
		postResponses[i] = post.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, postResponses, meta)
}

// Update handles PUT /posts/{id}
// @Summary      Update a post
// @Description  Only the author may update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Post ID"
// @Param        request body UpdatePostRequest true "Post update request"
// @Success      200 {object} response.APIResponse{data=PostResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	post, err := h.service.Update(r.Context(), id, userID, &req)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotAuthor) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update post")
		return
	}

	response.JSON(w, http.StatusOK, post.ToResponse())
}

// Delete handles DELETE /posts/{id}
// @Summary      Delete a post
// @Description  Only the author may delete a post
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Post ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotAuthor) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete post")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// Like handles POST /posts/{id}/like
// @Summary      Like a post
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Post ID"
// @Success      201 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id}/like [post]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	if err := h.service.Like(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrAlreadyLiked) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to like post")
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"message": "Post liked successfully"})
}

// Unlike handles POST /posts/{id}/unlike
// @Summary      Unlike a post
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Post ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id}/unlike [post]
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	if err := h.service.Unlike(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotLiked) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to unlike post")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Post unliked successfully"})
}
