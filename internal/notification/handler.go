package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupapply/pkg/middleware"
	"github.com/fkhayef/groupapply/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/unread-count", h.GetUnreadCount)
	r.Post("/{id}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)

	return r
}

// List handles GET /notifications
// @Summary      List my notifications
// @Description  Newest first, with an optional unread_only filter
// @Tags         notifications
// @Produce      json
// @Param        unread_only query bool false "Only unread notifications"
// @Success      200 {object} response.APIResponse{data=[]Notification}
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	notifications := h.service.GetNotifications(r.Context(), actor.ID)
	if unreadOnly {
		unread := make([]*Notification, 0, len(notifications))
		for _, n := range notifications {
			if !n.Read {
				unread = append(unread, n)
			}
		}
		notifications = unread
	}

	response.Cacheable(w, h.service.ttl)
	response.JSONWithMeta(w, http.StatusOK, notifications, &response.Meta{Total: len(notifications)})
}

// GetUnreadCount handles GET /notifications/unread-count
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	response.Cacheable(w, h.service.ttl)
	response.JSON(w, http.StatusOK, map[string]int{"unread_count": h.service.GetUnreadCount(r.Context(), actor.ID)})
}

// MarkAsRead handles POST /notifications/{id}/read
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	if err := h.service.MarkAsRead(r.Context(), chi.URLParam(r, "id"), actor.ID); err != nil {
		response.FromError(w, "mark notification as read", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead handles POST /notifications/read-all
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	if err := h.service.MarkAllAsRead(r.Context(), actor.ID); err != nil {
		response.FromError(w, "mark all notifications as read", err)
		return
	}

	response.NoStore(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
