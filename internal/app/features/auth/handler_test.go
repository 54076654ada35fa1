package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/flockhub/internal/app/features/auth"
	userstore "github.com/dalemusser/flockhub/internal/app/store/users"
	sysauth "github.com/dalemusser/flockhub/internal/app/system/auth"
	"github.com/dalemusser/flockhub/internal/testutil"
)

func newHandler(t *testing.T) (*auth.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := sysauth.NewTokenService("test-secret-at-least-32-bytes-long!!", 15*time.Minute, 24*time.Hour)
	return auth.NewHandler(userstore.New(db), tokens, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestLogin_Success(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "jane@example.com", "correct-horse-9")

	req := testutil.JSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "Jane@Example.com",
		"password": "correct-horse-9",
	})
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		User struct {
			ID    string `json:"_id"`
			Email string `json:"email"`
		} `json:"user"`
		AccessToken  string `json:"access_token"`
		ExpiresIn    int64  `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	if resp.User.ID != u.ID.Hex() {
		t.Errorf("user id: got %q, want %q", resp.User.ID, u.ID.Hex())
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected both tokens in the response")
	}
	if resp.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in: got %d", resp.ExpiresIn)
	}
	if resp.TokenType != "bearer" {
		t.Errorf("token_type: got %q, want %q", resp.TokenType, "bearer")
	}

	// The access token verifies back to the same user
	userID, err := h.Tokens.VerifyAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if userID != u.ID.Hex() {
		t.Errorf("token subject: got %q, want %q", userID, u.ID.Hex())
	}

	// The hash never leaks
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("response leaked password_hash")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "jane@example.com", "correct-horse-9")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"email": "jane@example.com", "password": "wrong"}},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "correct-horse-9"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/login", tc.body))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.Login(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRefresh_RotatesPair(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "jane@example.com", "correct-horse-9")
	pair, err := h.Tokens.IssuePair(u.ID.Hex())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Refresh(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var rotated sysauth.TokenPair
	testutil.DecodeJSON(t, rec, &rotated)
	if rotated.AccessToken == pair.AccessToken || rotated.RefreshToken == pair.RefreshToken {
		t.Error("expected a fresh token pair")
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "jane@example.com", "correct-horse-9")
	access, _, err := h.Tokens.IssueAccessToken(u.ID.Hex())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Refresh(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": access,
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestProfile(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "jane@example.com", "correct-horse-9")

	rec := httptest.NewRecorder()
	h.Profile(rec, testutil.AuthRequest(t, http.MethodGet, "/auth/profile", nil, u.ID.Hex()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Email string `json:"email"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if got.Email != "jane@example.com" {
		t.Errorf("email: got %q, want %q", got.Email, "jane@example.com")
	}
}

func TestChangePassword(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "jane@example.com", "old-password-1")

	rec := httptest.NewRecorder()
	h.ChangePassword(rec, testutil.AuthRequest(t, http.MethodPatch, "/auth/change-password", map[string]string{
		"password":         "new-password-1",
		"confirm_password": "new-password-1",
	}, u.ID.Hex()))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	// New password now logs in
	rec = httptest.NewRecorder()
	h.Login(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "new-password-1",
	}))
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestChangePassword_Mismatch(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "jane@example.com", "old-password-1")

	rec := httptest.NewRecorder()
	h.ChangePassword(rec, testutil.AuthRequest(t, http.MethodPatch, "/auth/change-password", map[string]string{
		"password":         "new-password-1",
		"confirm_password": "different-1",
	}, u.ID.Hex()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "jane@example.com", "correct-horse-9")

	body := map[string]string{"email": "jane@example.com", "password": "wrong"}
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.Login(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/login", body))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got %d, want %d", i+1, rec.Code, http.StatusUnauthorized)
		}
	}

	rec := httptest.NewRecorder()
	h.Login(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/login", body))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("throttled attempt: got %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}
