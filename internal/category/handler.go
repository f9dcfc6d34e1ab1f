package category

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/dongsplit/pkg/middleware"
	"github.com/fkhayef/dongsplit/pkg/response"
)

// Handler handles HTTP requests for categories
type Handler struct {
	matcher *Matcher
}

// NewHandler creates a new category handler
func NewHandler(matcher *Matcher) *Handler {
	return &Handler{matcher: matcher}
}

// Routes returns the router for category endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	return r
}

// List handles GET /categories
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Category}
// @Failure      401 {object} response.APIResponse
// @Router       /categories [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	cats, err := h.matcher.List(r.Context(), actor.ID)
	if err != nil {
		response.InternalError(w, "Failed to list categories")
		return
	}
	if cats == nil {
		cats = []*Category{}
	}

	response.JSON(w, http.StatusOK, cats)
}

// Create handles POST /categories
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        request body CreateCategoryRequest true "Category"
// @Success      201 {object} response.APIResponse{data=Category}
// @Failure      400 {object} response.APIResponse
// @Router       /categories [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		response.BadRequest(w, "title is required")
		return
	}

	c, err := h.matcher.Create(r.Context(), actor.ID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create category")
		return
	}

	response.JSON(w, http.StatusCreated, c)
}
