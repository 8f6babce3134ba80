package job

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupapply/pkg/response"
	"github.com/fkhayef/groupapply/pkg/validate"
)

// Handler handles HTTP requests for job operations
type Handler struct {
	service *Service
}

// NewHandler creates a new job handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for job endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)

	return r
}

// Create handles POST /jobs
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "create job", err)
		return
	}

	job, err := h.service.Create(r.Context(), &req)
	if err != nil {
		response.FromError(w, "create job", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusCreated, job)
}

// GetByID handles GET /jobs/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "get job", err)
		return
	}

	response.Cacheable(w, h.service.ttl)
	response.JSON(w, http.StatusOK, job)
}
