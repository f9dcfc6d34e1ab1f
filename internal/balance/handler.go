package balance

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/dongsplit/pkg/middleware"
	"github.com/fkhayef/dongsplit/pkg/response"
)

// Handler handles HTTP requests for balances
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// List handles GET /balances
// @Summary      Net balances
// @Description  Net position of every contact across the user's dongs. Positive = they paid more than their share.
// @Tags         balances
// @Produce      json
// @Param        currency query string false "ISO currency code"
// @Success      200 {object} response.APIResponse{data=[]NetBalance}
// @Failure      400 {object} response.APIResponse
// @Router       /balances [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	balances, err := h.service.List(r.Context(), actor.ID, r.URL.Query().Get("currency"))
	if err != nil {
		if errors.Is(err, ErrInvalidCurrency) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get balances")
		return
	}
	if balances == nil {
		balances = []*NetBalance{}
	}

	response.JSON(w, http.StatusOK, balances)
}
