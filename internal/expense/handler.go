package expense

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/dongsplit/internal/expense/split"
	"github.com/fkhayef/dongsplit/internal/relation"
	"github.com/fkhayef/dongsplit/pkg/middleware"
	"github.com/fkhayef/dongsplit/pkg/request"
	"github.com/fkhayef/dongsplit/pkg/response"
)

// Handler handles HTTP requests for dong operations
type Handler struct {
	service *Service
}

// NewHandler creates a new dong handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for dong endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}/pong", h.UpdatePong)
	r.Delete("/{id}", h.Delete)

	return r
}

// splitErrorCodes maps split admission errors to response codes
var splitErrorCodes = []struct {
	err  error
	code string
}{
	{split.ErrInvalidRelation, "INVALID_RELATION"},
	{split.ErrInvalidCategory, "INVALID_CATEGORY"},
	{split.ErrInvalidJointAccount, "INVALID_JOINT_ACCOUNT"},
	{split.ErrAmountMismatch, "AMOUNT_MISMATCH"},
	{split.ErrUnknownMode, "UNKNOWN_SPLIT_MODE"},
	{split.ErrNoParticipants, "NO_PARTICIPANTS"},
	{split.ErrNonPositivePong, "INVALID_PONG"},
	{split.ErrNegativeAmount, "NEGATIVE_AMOUNT"},
	{split.ErrMissingCoefficient, "MISSING_COEFFICIENT"},
	{split.ErrZeroCoefficientSum, "ZERO_COEFFICIENT_SUM"},
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	for _, e := range splitErrorCodes {
		if errors.Is(err, e.err) {
			response.Unprocessable(w, e.code, err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, ErrDongNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidPong):
		response.Unprocessable(w, "INVALID_PONG", err.Error())
	case errors.Is(err, ErrSplitImmutable):
		response.Conflict(w, err.Error())
	case errors.Is(err, relation.ErrSelfRelationNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /dongs
// @Summary      Create a dong
// @Description  Record an expense split between the actor's contacts. Joint account dongs are replicated to every other subscriber in the background.
// @Tags         dongs
// @Accept       json
// @Produce      json
// @Param        request body CreateDongRequest true "Dong creation request"
// @Success      201 {object} response.APIResponse{data=CreateDongResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /dongs [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req CreateDongRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.CreateDong(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to create dong")
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

// List handles GET /dongs
// @Summary      List dongs
// @Tags         dongs
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]Dong}
// @Failure      401 {object} response.APIResponse
// @Router       /dongs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	page, perPage := request.Page(r)
	dongs, total, err := h.service.ListDongs(r.Context(), actor, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list dongs")
		return
	}
	if dongs == nil {
		dongs = []*Dong{}
	}

	response.JSONWithMeta(w, http.StatusOK, dongs, response.NewMeta(page, perPage, total))
}

// GetByID handles GET /dongs/{id}
// @Summary      Get a dong
// @Tags         dongs
// @Produce      json
// @Param        id path int true "Dong ID"
// @Success      200 {object} response.APIResponse{data=PersistedDong}
// @Failure      404 {object} response.APIResponse
// @Router       /dongs/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, ok := request.PathID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Invalid dong ID")
		return
	}

	pd, err := h.service.GetDong(r.Context(), actor, id)
	if err != nil {
		writeError(w, err, "Failed to get dong")
		return
	}

	response.JSON(w, http.StatusOK, pd)
}

// UpdatePong handles PATCH /dongs/{id}/pong
// @Summary      Change the total of a solo dong
// @Description  Only dongs whose single debtor and payer is the actor can be edited
// @Tags         dongs
// @Accept       json
// @Produce      json
// @Param        id path int true "Dong ID"
// @Param        request body UpdatePongRequest true "New pong"
// @Success      200 {object} response.APIResponse{data=PersistedDong}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /dongs/{id}/pong [patch]
func (h *Handler) UpdatePong(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, ok := request.PathID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Invalid dong ID")
		return
	}

	var req UpdatePongRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	pd, err := h.service.UpdatePong(r.Context(), actor, id, req.Pong)
	if err != nil {
		writeError(w, err, "Failed to update dong")
		return
	}

	response.JSON(w, http.StatusOK, pd)
}

// Delete handles DELETE /dongs/{id}
// @Summary      Delete a dong
// @Description  Soft-deletes the dong and every joint account replica of it
// @Tags         dongs
// @Param        id path int true "Dong ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /dongs/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, ok := request.PathID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Invalid dong ID")
		return
	}

	if err := h.service.DeleteDong(r.Context(), actor, id); err != nil {
		writeError(w, err, "Failed to delete dong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
