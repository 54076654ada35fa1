// Package tribes serves tribe CRUD. Deletes are soft by default and
// reversible through the restore endpoint.
package tribes

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	tribestore "github.com/dalemusser/flockhub/internal/app/store/tribes"
	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/flockhub/internal/app/system/httpjson"
	"github.com/dalemusser/flockhub/internal/app/system/paging"
	"github.com/dalemusser/flockhub/internal/app/system/timeouts"
	"github.com/dalemusser/flockhub/internal/domain/models"
)

type Handler struct {
	Tribes *tribestore.Store
	Log    *zap.Logger
}

func NewHandler(tribes *tribestore.Store, log *zap.Logger) *Handler {
	return &Handler{Tribes: tribes, Log: log}
}

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid id")
	}
	return id, nil
}

// List handles GET /tribes with paging and search over name and description.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := paging.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tribes, total, err := h.Tribes.List(ctx, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, paging.NewEnvelope(tribes, p, total))
}

type tribeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /tribes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req tribeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Name == "" {
		httpjson.Error(w, h.Log, apperr.BadRequest("name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tr, err := h.Tribes.Create(ctx, models.Tribe{
		Name:        htmlsanitize.Sanitize(req.Name),
		Description: htmlsanitize.Sanitize(req.Description),
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, tr)
}

// Get handles GET /tribes/{id}. Soft-deleted tribes read as not found.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tr, err := h.Tribes.GetByID(ctx, id, false)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, tr)
}

type tribeUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update handles PUT /tribes/{id}. Absent fields keep their stored values.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req tribeUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	sanitizeOpt(req.Name)
	sanitizeOpt(req.Description)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tr, err := h.Tribes.Update(ctx, id, tribestore.Update{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, tr)
}

// Delete handles DELETE /tribes/{id}. The default is a soft delete;
// ?hard=true removes the document.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	hard := query.Get(r, "hard") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tribes.Delete(ctx, id, hard); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}

// Restore handles POST /tribes/{id}/restore and returns the revived tribe.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tr, err := h.Tribes.Restore(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, tr)
}

func sanitizeOpt(s *string) {
	if s != nil {
		*s = htmlsanitize.Sanitize(*s)
	}
}
