// Package users serves the account CRUD surface. Unlike the other
// entities, users have no soft delete: DELETE removes the document.
package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/flockhub/internal/app/store/users"
	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/authutil"
	"github.com/dalemusser/flockhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/flockhub/internal/app/system/httpjson"
	"github.com/dalemusser/flockhub/internal/app/system/paging"
	"github.com/dalemusser/flockhub/internal/app/system/timeouts"
	"github.com/dalemusser/flockhub/internal/domain/models"
)

type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, log *zap.Logger) *Handler {
	return &Handler{Users: users, Log: log}
}

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid id")
	}
	return id, nil
}

// List handles GET /users with paging and search over full name and email.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := paging.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, total, err := h.Users.List(ctx, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, paging.NewEnvelope(users, p, total))
}

type createRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
}

// Create handles POST /users. Success is 200 with the created user; the
// password never appears in the response.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, h.Log, apperr.BadRequest("email and password are required"))
		return
	}
	if req.Password != req.ConfirmPassword {
		httpjson.Error(w, h.Log, apperr.BadRequest("passwords do not match"))
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		httpjson.Error(w, h.Log, apperr.BadRequest("%s", err.Error()))
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Pre-check for a friendly conflict; the unique index still backstops
	// concurrent creates.
	if exists, err := h.Users.EmailExists(ctx, req.Email); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	} else if exists {
		httpjson.Error(w, h.Log, apperr.Conflict("a user with this email already exists"))
		return
	}

	u, err := h.Users.Create(ctx, models.User{
		Email:        req.Email,
		FullName:     htmlsanitize.Sanitize(req.FullName),
		PasswordHash: hash,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

// Get handles GET /users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

type updateRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

// Update handles PUT /users/{id}. Absent fields keep their stored values.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.FullName != nil {
		clean := htmlsanitize.Sanitize(*req.FullName)
		req.FullName = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Update(ctx, id, userstore.Update{
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ResetPassword handles PATCH /users/{id}: an administrative password
// reset that does not require the old password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req resetPasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Password != req.ConfirmPassword {
		httpjson.Error(w, h.Log, apperr.BadRequest("passwords do not match"))
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		httpjson.Error(w, h.Log, apperr.BadRequest("%s", err.Error()))
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}

// Delete handles DELETE /users/{id}. This is a hard delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}
