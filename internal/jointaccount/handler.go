package jointaccount

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/dongsplit/pkg/middleware"
	"github.com/fkhayef/dongsplit/pkg/request"
	"github.com/fkhayef/dongsplit/pkg/response"
)

// Handler handles HTTP requests for joint account operations
type Handler struct {
	service *Service
}

// NewHandler creates a new joint account handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for joint account endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	// Subscription management
	r.Post("/{id}/subscribers", h.Subscribe)
	r.Delete("/{id}/subscribers/me", h.Leave)

	return r
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrJointAccountNotFound), errors.Is(err, ErrNotSubscribed):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrOwnerCannotLeave):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /joint-accounts
// @Summary      Create a joint account
// @Description  The creator becomes the owner and first subscriber
// @Tags         joint-accounts
// @Accept       json
// @Produce      json
// @Param        request body CreateJointAccountRequest true "Joint account"
// @Success      201 {object} response.APIResponse{data=JointAccount}
// @Failure      400 {object} response.APIResponse
// @Router       /joint-accounts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req CreateJointAccountRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ja, err := h.service.Create(r.Context(), actor.ID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create joint account")
		return
	}

	response.JSON(w, http.StatusCreated, ja)
}

// List handles GET /joint-accounts
// @Summary      List joint accounts
// @Tags         joint-accounts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]JointAccount}
// @Router       /joint-accounts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	accounts, err := h.service.List(r.Context(), actor.ID)
	if err != nil {
		response.InternalError(w, "Failed to list joint accounts")
		return
	}
	if accounts == nil {
		accounts = []*JointAccount{}
	}

	response.JSON(w, http.StatusOK, accounts)
}

// GetByID handles GET /joint-accounts/{id}
// @Summary      Get a joint account
// @Tags         joint-accounts
// @Produce      json
// @Param        id path int true "Joint account ID"
// @Success      200 {object} response.APIResponse{data=JointAccount}
// @Failure      404 {object} response.APIResponse
// @Router       /joint-accounts/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, ok := request.PathID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Invalid joint account ID")
		return
	}

	ja, err := h.service.Get(r.Context(), actor.ID, id)
	if err != nil {
		writeError(w, err, "Failed to get joint account")
		return
	}

	response.JSON(w, http.StatusOK, ja)
}

// Subscribe handles POST /joint-accounts/{id}/subscribers
// @Summary      Add a subscriber
// @Tags         joint-accounts
// @Accept       json
// @Produce      json
// @Param        id path int true "Joint account ID"
// @Param        request body SubscribeRequest true "Subscriber"
// @Success      201 {object} response.APIResponse{data=Subscription}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /joint-accounts/{id}/subscribers [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, ok := request.PathID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Invalid joint account ID")
		return
	}

	var req SubscribeRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	sub, err := h.service.Subscribe(r.Context(), actor.ID, id, &req)
	if err != nil {
		writeError(w, err, "Failed to add subscriber")
		return
	}

	response.JSON(w, http.StatusCreated, sub)
}

// Leave handles DELETE /joint-accounts/{id}/subscribers/me
// @Summary      Leave a joint account
// @Tags         joint-accounts
// @Param        id path int true "Joint account ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /joint-accounts/{id}/subscribers/me [delete]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, ok := request.PathID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Invalid joint account ID")
		return
	}

	if err := h.service.Leave(r.Context(), actor.ID, id); err != nil {
		writeError(w, err, "Failed to leave joint account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
