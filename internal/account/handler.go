package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yhamdan/socialite/pkg/middleware"
	"github.com/yhamdan/socialite/pkg/response"
)

const maxUploadBytes = 10 << 20

// Handler handles HTTP requests for account operations
type Handler struct {
	service *Service
}

// NewHandler creates a new account handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for account endpoints. Register and login
// are anonymous; everything else requires a token.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/profile", h.GetProfile)
		r.Patch("/profile", h.UpdateProfile)
		r.Get("/users/{id}", h.GetUser)
		r.Post("/users/{id}/follow", h.Follow)
		r.Post("/users/{id}/unfollow", h.Unfollow)
		r.Get("/users/{id}/followers", h.ListFollowers)
		r.Get("/users/{id}/following", h.ListFollowing)
	})

	return r
}

// Register handles POST /accounts/register
// @Summary      Register a new account
// @Description  Create an account with username and password; optional email, bio and profile picture
// @Tags         accounts
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=AuthResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /accounts/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := h.parseRegisterRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	defer cleanup()

	user, token, err := h.service.Register(r.Context(), req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, verr.Fields)
			return
		}
		response.InternalError(w, "Failed to register")
		return
	}

	profile := &Profile{User: user, FollowerIDs: []int64{}, FollowingIDs: []int64{}}
	response.JSON(w, http.StatusCreated, &AuthResponse{Token: token, User: profile.ToResponse()})
}

// Login handles POST /accounts/login
// @Summary      Log in
// @Description  Exchange username (or email) and password for the account's token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=AuthResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /accounts/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, verr.Fields)
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		response.InternalError(w, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, &AuthResponse{Token: token, User: profile.ToResponse()})
}

// GetProfile handles GET /accounts/profile
// @Summary      Get own profile
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /accounts/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get profile")
		return
	}

	response.JSON(w, http.StatusOK, profile.ToResponse())
}

// UpdateProfile handles PATCH /accounts/profile
// @Summary      Update own profile
// @Description  Partially update bio, email or profile picture; other fields are ignored
// @Tags         accounts
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Security     TokenAuth
// @Param        request body UpdateProfileRequest true "Profile update request"
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /accounts/profile [patch]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	req, cleanup, err := h.parseUpdateRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	defer cleanup()

	profile, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, verr.Fields)
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update profile")
		return
	}

	response.JSON(w, http.StatusOK, profile.ToResponse())
}

// GetUser handles GET /accounts/users/{id}
// @Summary      Get a user's public profile
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get user")
		return
	}

	response.JSON(w, http.StatusOK, profile.ToUserResponse())
}

// Follow handles POST /accounts/users/{id}/follow
// @Summary      Follow a user
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/users/{id}/follow [post]
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	h.followAction(w, r, h.service.Follow, "You are now following this user")
}

// Unfollow handles POST /accounts/users/{id}/unfollow
// @Summary      Unfollow a user
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/users/{id}/unfollow [post]
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.followAction(w, r, h.service.Unfollow, "You have unfollowed this user")
}

func (h *Handler) followAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, userID, targetID int64) error, message string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := action(r.Context(), userID, targetID); err != nil {
		if errors.Is(err, ErrCannotFollowSelf) {
			response.BadRequest(w, err.Error())
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update follow state")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": message})
}

// ListFollowers handles GET /accounts/users/{id}/followers
// @Summary      List a user's followers
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse{data=[]int64}
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/users/{id}/followers [get]
func (h *Handler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	h.listEdges(w, r, h.service.ListFollowers)
}

// ListFollowing handles GET /accounts/users/{id}/following
// @Summary      List the users a user follows
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse{data=[]int64}
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/users/{id}/following [get]
func (h *Handler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	h.listEdges(w, r, h.service.ListFollowing)
}

func (h *Handler) listEdges(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int64) ([]int64, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	ids, err := list(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to list follow edges")
		return
	}

	if ids == nil {
		ids = []int64{}
	}
	response.JSON(w, http.StatusOK, ids)
}

// parseRegisterRequest decodes a registration body from either JSON or
// multipart form data. The returned cleanup closes any upload handle.
func (h *Handler) parseRegisterRequest(r *http.Request) (*RegisterRequest, func(), error) {
	noop := func() {}

	if !isMultipart(r) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, noop, err
		}
		return &req, noop, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, noop, err
	}

	req := &RegisterRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if bio := r.FormValue("bio"); bio != "" {
		req.Bio = &bio
	}

	file, header, err := r.FormFile("profile_picture")
	if err == nil {
		req.ProfilePicture = &FileUpload{Filename: header.Filename, Content: file}
		return req, func() { file.Close() }, nil
	}
	if err != http.ErrMissingFile {
		return nil, noop, err
	}

	return req, noop, nil
}

// parseUpdateRequest decodes a profile patch from either JSON or
// multipart form data; absent fields stay untouched.
func (h *Handler) parseUpdateRequest(r *http.Request) (*UpdateProfileRequest, func(), error) {
	noop := func() {}

	if !isMultipart(r) {
		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, noop, err
		}
		return &req, noop, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, noop, err
	}

	req := &UpdateProfileRequest{}
	if _, ok := r.MultipartForm.Value["bio"]; ok {
		bio := r.FormValue("bio")
		req.Bio = &bio
	}
	if _, ok := r.MultipartForm.Value["email"]; ok {
		email := r.FormValue("email")
		req.Email = &email
	}

	file, header, err := r.FormFile("profile_picture")
	if err == nil {
		req.ProfilePicture = &FileUpload{Filename: header.Filename, Content: file}
		return req, func() { file.Close() }, nil
	}
	if err != http.ErrMissingFile {
		return nil, noop, err
	}

	return req, noop, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
