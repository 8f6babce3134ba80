package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupapply/pkg/middleware"
	"github.com/fkhayef/groupapply/pkg/response"
	"github.com/fkhayef/groupapply/pkg/validate"
)

// Handler handles HTTP requests for user operations
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.Me)
	r.Put("/me", h.SyncMe)
	r.Get("/me/friends", h.Friends)
	r.Get("/{id}", h.GetByID)

	return r
}

// Me handles GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	user, err := h.service.GetByID(r.Context(), actor.ID)
	if err != nil {
		response.FromError(w, "get current user", err)
		return
	}

	response.Cacheable(w, h.service.ttl)
	response.JSON(w, http.StatusOK, user.ToResponse())
}

// SyncMe handles PUT /users/me
// @Summary      Sync my profile
// @Description  Store the caller's profile as reported by the identity gateway
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body SyncProfileRequest false "Profile overrides"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /users/me [put]
func (h *Handler) SyncMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req SyncProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "sync user", err)
		return
	}

	user, err := h.service.Sync(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, "sync user", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusOK, user.ToResponse())
}

// GetByID handles GET /users/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "get user", err)
		return
	}

	response.Cacheable(w, h.service.ttl)
	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Friends handles GET /users/me/friends
func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	response.Cacheable(w, h.service.ttl)
	response.JSON(w, http.StatusOK, h.service.ListFriends(r.Context(), actor.ID))
}
