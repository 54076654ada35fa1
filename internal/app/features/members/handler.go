// Package members serves member CRUD. Mutations that touch a member's
// lifegroup assignment also update the affected lifegroup rosters; the
// member document is always written first, and roster state is derived.
package members

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	lifegroupstore "github.com/dalemusser/flockhub/internal/app/store/lifegroups"
	memberstore "github.com/dalemusser/flockhub/internal/app/store/members"
	"github.com/dalemusser/flockhub/internal/app/store/queries/roster"
	tribestore "github.com/dalemusser/flockhub/internal/app/store/tribes"
	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/flockhub/internal/app/system/httpjson"
	"github.com/dalemusser/flockhub/internal/app/system/paging"
	"github.com/dalemusser/flockhub/internal/app/system/timeouts"
	"github.com/dalemusser/flockhub/internal/domain/models"
)

type Handler struct {
	DB         *mongo.Database
	Members    *memberstore.Store
	Tribes     *tribestore.Store
	Lifegroups *lifegroupstore.Store
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, log *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Members:    memberstore.New(db),
		Tribes:     tribestore.New(db),
		Lifegroups: lifegroupstore.New(db),
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

// List handles GET /members with paging and search over names and address.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := paging.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, total, err := h.Members.List(ctx, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, paging.NewEnvelope(members, p, total))
}

type memberRequest struct {
	FirstName   string    `json:"first_name"`
	MiddleName  string    `json:"middle_name"`
	LastName    string    `json:"last_name"`
	Address     string    `json:"address"`
	Birthday    time.Time `json:"birthday"`
	TribeID     string    `json:"tribe_id"`
	LifegroupID string    `json:"lifegroup_id"`
}

// Create handles POST /members. An initial lifegroup assignment is
// validated against a live lifegroup and mirrored into its roster.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		httpjson.Error(w, h.Log, apperr.BadRequest("first_name and last_name are required"))
		return
	}
	tribeID, err := primitive.ObjectIDFromHex(req.TribeID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.BadRequest("invalid tribe_id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Tribes.GetByID(ctx, tribeID, false); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var lifegroupID *primitive.ObjectID
	if req.LifegroupID != "" {
		id, err := primitive.ObjectIDFromHex(req.LifegroupID)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.BadRequest("invalid lifegroup_id"))
			return
		}
		if _, err := h.Lifegroups.GetByID(ctx, id, false); err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		lifegroupID = &id
	}

	m, err := h.Members.Create(ctx, models.Member{
		FirstName:   htmlsanitize.Sanitize(req.FirstName),
		MiddleName:  htmlsanitize.Sanitize(req.MiddleName),
		LastName:    htmlsanitize.Sanitize(req.LastName),
		Address:     htmlsanitize.Sanitize(req.Address),
		Birthday:    req.Birthday,
		TribeID:     tribeID,
		LifegroupID: lifegroupID,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	// Member state is authoritative; a roster write failure is left for
	// the reconciler to catch up on.
	if lifegroupID != nil {
		if err := roster.MemberAssigned(ctx, h.DB, m.ID, *lifegroupID); err != nil {
			h.Log.Warn("roster update failed after member create",
				zap.String("member_id", m.ID.Hex()), zap.Error(err))
		}
	}
	httpjson.Respond(w, http.StatusCreated, m)
}

// Get handles GET /members/{id} and embeds the member's tribe.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.Members.GetByID(ctx, id, false)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	details := models.MemberDetails{Member: m}
	if tr, err := h.Tribes.GetByID(ctx, m.TribeID, true); err == nil {
		details.Tribe = &tr
	}
	httpjson.Respond(w, http.StatusOK, details)
}

type memberUpdateRequest struct {
	FirstName   *string    `json:"first_name"`
	MiddleName  *string    `json:"middle_name"`
	LastName    *string    `json:"last_name"`
	Address     *string    `json:"address"`
	Birthday    *time.Time `json:"birthday"`
	TribeID     *string    `json:"tribe_id"`
	LifegroupID *string    `json:"lifegroup_id"` // "" clears the assignment
}

// Update handles PUT /members/{id}. A changed lifegroup assignment moves
// the member between rosters; sending lifegroup_id as "" clears it.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req memberUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	sanitizeOpt(req.FirstName)
	sanitizeOpt(req.MiddleName)
	sanitizeOpt(req.LastName)
	sanitizeOpt(req.Address)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	before, err := h.Members.GetByID(ctx, id, false)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	upd := memberstore.Update{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Address:    req.Address,
		Birthday:   req.Birthday,
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
	if req.LifegroupID != nil {
		if *req.LifegroupID == "" {
			upd.ClearLifegroup = true
		} else {
			lgID, err := primitive.ObjectIDFromHex(*req.LifegroupID)
			if err != nil {
				httpjson.Error(w, h.Log, apperr.BadRequest("invalid lifegroup_id"))
				return
			}
			if _, err := h.Lifegroups.GetByID(ctx, lgID, false); err != nil {
				httpjson.Error(w, h.Log, err)
				return
			}
			upd.LifegroupID = &lgID
		}
	}

	m, err := h.Members.Update(ctx, id, upd)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if req.LifegroupID != nil {
		if err := roster.MemberMoved(ctx, h.DB, m.ID, before.LifegroupID, m.LifegroupID); err != nil {
			h.Log.Warn("roster update failed after member update",
				zap.String("member_id", m.ID.Hex()), zap.Error(err))
		}
	}
	httpjson.Respond(w, http.StatusOK, m)
}

// Delete handles DELETE /members/{id}. The default is a soft delete;
// ?hard=true removes the document. Either way the member leaves its
// lifegroup roster.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	hard := query.Get(r, "hard") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// The roster side effect needs the assignment the member had before
	// the delete; a repeat delete reads nothing and skips it.
	before, getErr := h.Members.GetByID(ctx, id, false)

	if err := h.Members.Delete(ctx, id, hard); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if getErr == nil && before.LifegroupID != nil {
		if err := roster.MemberRemoved(ctx, h.DB, id, *before.LifegroupID); err != nil {
			h.Log.Warn("roster update failed after member delete",
				zap.String("member_id", id.Hex()), zap.Error(err))
		}
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}

// Restore handles POST /members/{id}/restore. A restored member that
// still carries a lifegroup assignment rejoins that roster.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.Members.Restore(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if m.LifegroupID != nil {
		if err := roster.MemberAssigned(ctx, h.DB, m.ID, *m.LifegroupID); err != nil {
			h.Log.Warn("roster update failed after member restore",
				zap.String("member_id", m.ID.Hex()), zap.Error(err))
		}
	}
	httpjson.Respond(w, http.StatusOK, m)
}

func sanitizeOpt(s *string) {
	if s != nil {
		*s = htmlsanitize.Sanitize(*s)
	}
}
