package relation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/dongsplit/pkg/middleware"
	"github.com/fkhayef/dongsplit/pkg/request"
	"github.com/fkhayef/dongsplit/pkg/response"
)

// Handler handles HTTP requests for the contact book
type Handler struct {
	resolver *Resolver
}

// NewHandler creates a new relation handler
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Routes returns the router for relation endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Add)

	return r
}

// List handles GET /relations
// @Summary      List contacts
// @Description  Get the authenticated user's contact book
// @Tags         relations
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ContactRelation}
// @Failure      401 {object} response.APIResponse
// @Router       /relations [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	rels, err := h.resolver.List(r.Context(), actor.ID)
	if err != nil {
		response.InternalError(w, "Failed to list contacts")
		return
	}
	if rels == nil {
		rels = []*ContactRelation{}
	}

	response.JSON(w, http.StatusOK, rels)
}

// Add handles POST /relations
// @Summary      Add a contact
// @Tags         relations
// @Accept       json
// @Produce      json
// @Param        request body AddContactRequest true "Contact"
// @Success      201 {object} response.APIResponse{data=ContactRelation}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /relations [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req AddContactRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	rel, err := h.resolver.AddContact(r.Context(), actor.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidContact), errors.Is(err, ErrInvalidType):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrSelfRelationNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to add contact")
		}
		return
	}

	response.JSON(w, http.StatusCreated, rel)
}
