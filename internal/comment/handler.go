package comment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yhamdan/socialite/internal/post"
	"github.com/yhamdan/socialite/pkg/middleware"
	"github.com/yhamdan/socialite/pkg/response"
)

// Handler handles HTTP requests for comment operations
type Handler struct {
	service *Service
}

// NewHandler creates a new comment handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for comment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /comments
// @Summary      Create a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body CreateCommentRequest true "Comment creation request"
// @Success      201 {object} response.APIResponse{data=CommentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /comments [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, verr.Fields)
			return
		}
		if errors.Is(err, post.ErrPostNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create comment")
		return
	}

	response.JSON(w, http.StatusCreated, comment.ToResponse())
}

// GetByID handles GET /comments/{id}
// @Summary      Get a comment by ID
// @Tags         comments
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Comment ID"
// @Success      200 {object} response.APIResponse{data=CommentResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /comments/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid comment ID")
		return
	}

	comment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get comment")
		return
	}

	response.JSON(w, http.StatusOK, comment.ToResponse())
}

// List handles GET /comments?post_id=
// @Summary      List comments on a post
// @Tags         comments
// @Produce      json
// @Security     TokenAuth
// @Param        post_id query int true "Post ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]CommentResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /comments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(r.URL.Query().Get("post_id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid or missing post_id")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	comments, total, err := h.service.ListByPostID(r.Context(), postID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list comments")
		return
	}

	commentResponses := make([]*CommentResponse, len(comments))
	for i, comment := range comments {
		commentResponses[i] = comment.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, commentResponses, meta)
}

// Update handles PUT /comments/{id}
// @Summary      Update a comment
// @Description  Only the author may update a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Comment ID"
// @Param        request body UpdateCommentRequest true "Comment update request"
// @Success      200 {object} response.APIResponse{data=CommentResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /comments/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid comment ID")
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.service.Update(r.Context(), id, userID, &req)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotAuthor) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update comment")
		return
	}

	response.JSON(w, http.StatusOK, comment.ToResponse())
}

// Delete handles DELETE /comments/{id}
// @Summary      Delete a comment
// @Description  Only the author may delete a comment
// @Tags         comments
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Comment ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /comments/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid comment ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotAuthor) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete comment")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}
