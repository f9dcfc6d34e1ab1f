package score

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/dongsplit/pkg/middleware"
	"github.com/fkhayef/dongsplit/pkg/response"
)

// Handler handles HTTP requests for scores
type Handler struct {
	accumulator *Accumulator
}

// NewHandler creates a new score handler
func NewHandler(accumulator *Accumulator) *Handler {
	return &Handler{accumulator: accumulator}
}

// Routes returns the router for score endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Summary)
	return r
}

// Summary handles GET /scores
// @Summary      Get score total
// @Tags         scores
// @Produce      json
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /scores [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	summary, err := h.accumulator.Summary(r.Context(), actor.ID)
	if err != nil {
		response.InternalError(w, "Failed to get score")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}
