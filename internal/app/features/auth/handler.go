// Package auth serves login, token refresh, profile, and password change.
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/flockhub/internal/app/store/users"
	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	sysauth "github.com/dalemusser/flockhub/internal/app/system/auth"
	"github.com/dalemusser/flockhub/internal/app/system/authutil"
	"github.com/dalemusser/flockhub/internal/app/system/httpjson"
	"github.com/dalemusser/flockhub/internal/app/system/ratelimit"
	"github.com/dalemusser/flockhub/internal/app/system/timeouts"
	"github.com/dalemusser/flockhub/internal/domain/models"
)

// Handler holds the auth feature's dependencies.
type Handler struct {
	Users   *userstore.Store
	Tokens  *sysauth.TokenService
	Limiter *ratelimit.LoginLimiter
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, tokens *sysauth.TokenService, log *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Tokens:  tokens,
		Limiter: ratelimit.NewLoginLimiter(),
		Log:     log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User models.User `json:"user"`
	sysauth.TokenPair
}

// Login handles POST /auth/login. Credential failures are reported as
// Unauthorized without distinguishing unknown email from wrong password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, h.Log, apperr.BadRequest("email and password are required"))
		return
	}
	if ok, reason := h.Limiter.Check(r, req.Email); !ok {
		httpjson.Error(w, h.Log, apperr.New(http.StatusTooManyRequests, "%s", reason))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetCredentials(ctx, req.Email)
	if err != nil {
		if apperr.Status(err) == http.StatusNotFound {
			err = apperr.Unauthorized("invalid email or password")
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		httpjson.Error(w, h.Log, apperr.Unauthorized("invalid email or password"))
		return
	}

	pair, err := h.Tokens.IssuePair(u.ID.Hex())
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	h.Limiter.ResetEmail(req.Email)
	u.PasswordHash = ""
	httpjson.Respond(w, http.StatusOK, loginResponse{User: u, TokenPair: pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh: exchanges a valid refresh token for
// a rotated access/refresh pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.RefreshToken == "" {
		httpjson.Error(w, h.Log, apperr.BadRequest("refresh_token is required"))
		return
	}

	pair, err := h.Tokens.ExchangeRefreshToken(req.RefreshToken)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, pair)
}

// Profile handles GET /auth/profile: returns the authenticated user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(sysauth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Unauthorized("invalid token subject"))
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

type changePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword handles PATCH /auth/change-password for the
// authenticated user.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(sysauth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Unauthorized("invalid token subject"))
		return
	}

	var req changePasswordRequest
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
