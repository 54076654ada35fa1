// Package lifegroups serves lifegroup CRUD. The roster (members field)
// is never written here: member mutations and the reconciler own it.
package lifegroups

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	lifegroupstore "github.com/dalemusser/flockhub/internal/app/store/lifegroups"
	memberstore "github.com/dalemusser/flockhub/internal/app/store/members"
	tribestore "github.com/dalemusser/flockhub/internal/app/store/tribes"
	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/flockhub/internal/app/system/httpjson"
	"github.com/dalemusser/flockhub/internal/app/system/paging"
	"github.com/dalemusser/flockhub/internal/app/system/timeouts"
	"github.com/dalemusser/flockhub/internal/domain/models"
)

type Handler struct {
	Lifegroups *lifegroupstore.Store
	Tribes     *tribestore.Store
	Members    *memberstore.Store
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, log *zap.Logger) *Handler {
	return &Handler{
		Lifegroups: lifegroupstore.New(db),
		Tribes:     tribestore.New(db),
		Members:    memberstore.New(db),
		Log:        log,
	}
}

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid id")
	}
	return id, nil
}

// List handles GET /lifegroups with paging and search over name and
// description.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := paging.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groups, total, err := h.Lifegroups.List(ctx, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, paging.NewEnvelope(groups, p, total))
}

type lifegroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TribeID     string `json:"tribe_id"`
	LeaderID    string `json:"leader_id"`
}

// Create handles POST /lifegroups. The tribe and the leader member must
// both exist and be live.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req lifegroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Name == "" {
		httpjson.Error(w, h.Log, apperr.BadRequest("name is required"))
		return
	}
	tribeID, err := primitive.ObjectIDFromHex(req.TribeID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.BadRequest("invalid tribe_id"))
		return
	}
	leaderID, err := primitive.ObjectIDFromHex(req.LeaderID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.BadRequest("invalid leader_id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Tribes.GetByID(ctx, tribeID, false); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if _, err := h.Members.GetByID(ctx, leaderID, false); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	lg, err := h.Lifegroups.Create(ctx, models.Lifegroup{
		Name:        htmlsanitize.Sanitize(req.Name),
		Description: htmlsanitize.Sanitize(req.Description),
		TribeID:     tribeID,
		LeaderID:    leaderID,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, lg)
}

// Get handles GET /lifegroups/{id} and embeds the tribe, the leader, and
// the full documents of the rostered members.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	lg, err := h.Lifegroups.GetByID(ctx, id, false)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	details := models.LifegroupDetails{Lifegroup: lg}
	if tr, err := h.Tribes.GetByID(ctx, lg.TribeID, true); err == nil {
		details.Tribe = &tr
	}
	if leader, err := h.Members.GetByID(ctx, lg.LeaderID, true); err == nil {
		details.Leader = &leader
	}
	docs, err := h.Members.ListByLifegroup(ctx, lg.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	details.MemberDocs = docs

	httpjson.Respond(w, http.StatusOK, details)
}

type lifegroupUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	TribeID     *string `json:"tribe_id"`
	LeaderID    *string `json:"leader_id"`
}

// Update handles PUT /lifegroups/{id}. Absent fields keep their stored
// values; a new tribe or leader must exist and be live.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req lifegroupUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	sanitizeOpt(req.Name)
	sanitizeOpt(req.Description)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upd := lifegroupstore.Update{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.TribeID != nil {
		tribeID, err := primitive.ObjectIDFromHex(*req.TribeID)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.BadRequest("invalid tribe_id"))
			return
		}
		if _, err := h.Tribes.GetByID(ctx, tribeID, false); err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		upd.TribeID = &tribeID
	}
	if req.LeaderID != nil {
		leaderID, err := primitive.ObjectIDFromHex(*req.LeaderID)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.BadRequest("invalid leader_id"))
			return
		}
		if _, err := h.Members.GetByID(ctx, leaderID, false); err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		upd.LeaderID = &leaderID
	}

	lg, err := h.Lifegroups.Update(ctx, id, upd)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, lg)
}

// Delete handles DELETE /lifegroups/{id}. The default is a soft delete;
// ?hard=true removes the document. Members keep their lifegroup_id so a
// restore brings the group back intact.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	hard := query.Get(r, "hard") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Lifegroups.Delete(ctx, id, hard); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}

// Restore handles POST /lifegroups/{id}/restore and returns the revived
// lifegroup.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	lg, err := h.Lifegroups.Restore(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, lg)
}

func sanitizeOpt(s *string) {
	if s != nil {
		*s = htmlsanitize.Sanitize(*s)
	}
}
