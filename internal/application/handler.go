package application

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupapply/pkg/middleware"
	"github.com/fkhayef/groupapply/pkg/response"
	"github.com/fkhayef/groupapply/pkg/validate"
)

// IdempotencyKeyHeader names the header that deduplicates group submissions
const IdempotencyKeyHeader = "Idempotency-Key"

// Handler handles HTTP requests for application operations
type Handler struct {
	service *Service
}

// NewHandler creates a new application handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for application endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{id}/status", h.UpdateStatus)

	return r
}

// Create handles POST /applications
// @Summary      Submit an application
// @Description  A request with a group_id is a guarded group submission: the group's readiness is re-checked and a group has at most one live application. Without a group_id this is a solo application.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Deduplicates retried group submissions"
// @Param        request body CreateApplicationRequest true "Application"
// @Success      201 {object} response.APIResponse{data=ApplicationResponse}
// @Success      200 {object} response.APIResponse{data=ApplicationResponse} "Existing application"
// @Failure      409 {object} response.APIResponse
// @Router       /applications [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "create application", err)
		return
	}

	response.NoStore(w)

	if req.GroupID != nil {
		var key *string
		if v := r.Header.Get(IdempotencyKeyHeader); v != "" {
			key = &v
		}
		app, created, err := h.service.SubmitGroupApplication(r.Context(), actor, *req.GroupID, key)
		if err != nil {
			response.FromError(w, "submit group application", err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		response.JSON(w, status, app.ToResponse())
		return
	}

	app, err := h.service.CreateApplication(r.Context(), actor, req.JobID, req.FriendUserIDs, nil)
	if err != nil {
		response.FromError(w, "create application", err)
		return
	}
	response.JSON(w, http.StatusCreated, app.ToResponse())
}

// List handles GET /applications
// @Summary      List my applications
// @Description  Applications the caller submitted or whose group they belong to
// @Tags         applications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ApplicationResponse}
// @Router       /applications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	apps := h.service.GetApplications(r.Context(), actor.ID)
	appResponses := make([]*ApplicationResponse, len(apps))
	for i, app := range apps {
		appResponses[i] = app.ToResponse()
	}

	response.Cacheable(w, h.service.ttl)
	response.JSONWithMeta(w, http.StatusOK, appResponses, &response.Meta{Total: len(appResponses)})
}

// UpdateStatus handles PUT /applications/{id}/status
// @Summary      Update application status
// @Description  Only the applicant may move an application; rejected and completed are final
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id path string true "Application ID"
// @Param        request body UpdateStatusRequest true "New status"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /applications/{id}/status [put]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "update application status", err)
		return
	}

	if err := h.service.UpdateApplicationStatus(r.Context(), actor, chi.URLParam(r, "id"), req.Status); err != nil {
		response.FromError(w, "update application status", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Application status updated"})
}
