package group

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupapply/pkg/middleware"
	"github.com/fkhayef/groupapply/pkg/response"
	"github.com/fkhayef/groupapply/pkg/validate"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/readiness", h.Readiness)

	// Member management
	r.Post("/{id}/members", h.AddMember)
	r.Post("/{id}/join", h.Join)
	r.Post("/{id}/respond", h.Respond)
	r.Put("/{id}/members/{memberId}/status", h.UpdateMemberStatus)
	r.Put("/{id}/members/{memberId}/participation", h.UpdateParticipation)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group for a job with its pre-selected members; linked members are invited
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "create group", err)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, "create group", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusCreated, h.present(actor.ID, group))
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Description  Get a group with its members, its readiness and the caller's access
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	group, err := h.service.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "get group", err)
		return
	}

	response.Cacheable(w, h.service.ttl)
	response.JSON(w, http.StatusOK, h.present(actor.ID, group))
}

// List handles GET /groups
// @Summary      List my groups
// @Description  Groups the caller owns or is a member of, optionally for one job
// @Tags         groups
// @Produce      json
// @Param        job_id query string false "Job ID"
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var jobID *string
	if v := r.URL.Query().Get("job_id"); v != "" {
		jobID = &v
	}

	groups := h.service.GetGroups(r.Context(), actor.ID, jobID)
	groupResponses := make([]*GroupResponse, len(groups))
	for i, group := range groups {
		groupResponses[i] = h.present(actor.ID, group)
	}

	response.Cacheable(w, h.service.ttl)
	response.JSONWithMeta(w, http.StatusOK, groupResponses, &response.Meta{Total: len(groupResponses)})
}

// Readiness handles GET /groups/{id}/readiness
// @Summary      Check whether the group can submit
// @Description  Approved, participating and pending counts against the required count
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=Readiness}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/readiness [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "check readiness", err)
		return
	}

	response.Cacheable(w, h.service.ttl)
	response.JSON(w, http.StatusOK, CheckReadiness(group))
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add a member
// @Description  The owner invites a member; anyone else may only add themselves
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body AddMemberRequest true "Member"
// @Success      200 {object} response.APIResponse{data=AddMemberResult}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "add member", err)
		return
	}

	result, err := h.service.AddMemberToGroup(r.Context(), actor, chi.URLParam(r, "id"), req.Name, req.UserID)
	if err != nil {
		response.FromError(w, "add member", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, addStatus(result), result)
}

// Join handles POST /groups/{id}/join
// @Summary      Join through the invite link
// @Description  Adds the caller as a pending member; joining twice is not an error
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      201 {object} response.APIResponse{data=AddMemberResult}
// @Success      200 {object} response.APIResponse{data=AddMemberResult}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	result, err := h.service.JoinViaInviteLink(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "join group", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, addStatus(result), result)
}

// Respond handles POST /groups/{id}/respond
// @Summary      Accept or decline an invitation
// @Description  The invited member answers; accept approves the membership, decline rejects it
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body RespondRequest true "Answer"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/respond [post]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "respond to invitation", err)
		return
	}
	accept := *req.Accept

	if err := h.service.RespondToInvitation(r.Context(), actor.ID, chi.URLParam(r, "id"), accept); err != nil {
		response.FromError(w, "respond to invitation", err)
		return
	}

	response.NoStore(w)
	if accept {
		response.JSON(w, http.StatusOK, map[string]string{"message": "Invitation accepted"})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Invitation declined"})
}

// UpdateMemberStatus handles PUT /groups/{id}/members/{memberId}/status
// @Summary      Approve or reject a member
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        memberId path string true "Member ID"
// @Param        request body UpdateMemberStatusRequest true "Decision"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId}/status [put]
func (h *Handler) UpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req UpdateMemberStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "update member status", err)
		return
	}

	err := h.service.UpdateMemberStatus(r.Context(), actor.ID, chi.URLParam(r, "id"), chi.URLParam(r, "memberId"), req.Status)
	if err != nil {
		response.FromError(w, "update member status", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Member status updated"})
}

// UpdateParticipation handles PUT /groups/{id}/members/{memberId}/participation
// @Summary      Set my participation
// @Description  An approved member with a linked account sets their own participation
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        memberId path string true "Member ID"
// @Param        request body UpdateParticipationRequest true "Participation"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId}/participation [put]
func (h *Handler) UpdateParticipation(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req UpdateParticipationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.FromError(w, "update participation", err)
		return
	}

	err := h.service.UpdateMemberParticipationStatus(r.Context(), actor.ID, chi.URLParam(r, "id"), chi.URLParam(r, "memberId"), req.Status)
	if err != nil {
		response.FromError(w, "update participation", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Participation status updated"})
}

func (h *Handler) present(actorID string, g *Group) *GroupResponse {
	resp := g.ToResponse()
	access := AccessFor(actorID, g)
	readiness := CheckReadiness(g)
	resp.Access = &access
	resp.Readiness = &readiness
	return resp
}

func addStatus(result AddMemberResult) int {
	if result.Success {
		return http.StatusCreated
	}
	return http.StatusOK
}
