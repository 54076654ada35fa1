package auth

import (
	"testing"
	"time"
)

func newTestService() *TokenService {
	return NewTokenService("test-secret-at-least-32-bytes-long!!", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	tok, expiresIn, err := svc.IssueAccessToken("64f0c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if expiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expiresIn = %d, want %d", expiresIn, int64((15*time.Minute).Seconds()))
	}

	userID, err := svc.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if userID != "64f0c0ffee0000000000abcd" {
		t.Errorf("userID = %q, want %q", userID, "64f0c0ffee0000000000abcd")
	}
}

func TestVerifyRejectsRefreshTokenAsAccess(t *testing.T) {
	svc := newTestService()

	tok, _, err := svc.IssueRefreshToken("64f0c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	if _, err := svc.VerifyAccessToken(tok); err == nil {
		t.Error("VerifyAccessToken accepted a refresh token")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService()

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	tok, _, err := svc.IssueAccessToken("64f0c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.VerifyAccessToken(tok); err == nil {
		t.Error("VerifyAccessToken accepted an expired token")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestService()

	tok, _, err := svc.IssueAccessToken("64f0c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	tampered := tok[:len(tok)-4] + "AAAA"
	if _, err := svc.VerifyAccessToken(tampered); err == nil {
		t.Error("VerifyAccessToken accepted a tampered token")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewTokenService("a-completely-different-secret-value", 15*time.Minute, 24*time.Hour)

	tok, _, err := other.IssueAccessToken("64f0c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := svc.VerifyAccessToken(tok); err == nil {
		t.Error("VerifyAccessToken accepted a token signed with another secret")
	}
}

func TestExchangeRefreshToken(t *testing.T) {
	svc := newTestService()

	pair, err := svc.IssuePair("64f0c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want %q", pair.TokenType, "bearer")
	}

	rotated, err := svc.ExchangeRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ExchangeRefreshToken: %v", err)
	}
	if rotated.AccessToken == pair.AccessToken {
		t.Error("exchange returned the same access token")
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("exchange returned the same refresh token")
	}

	userID, err := svc.VerifyAccessToken(rotated.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken after exchange: %v", err)
	}
	if userID != "64f0c0ffee0000000000abcd" {
		t.Errorf("userID = %q, want %q", userID, "64f0c0ffee0000000000abcd")
	}
}

func TestExchangeRejectsAccessToken(t *testing.T) {
	svc := newTestService()

	tok, _, err := svc.IssueAccessToken("64f0c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := svc.ExchangeRefreshToken(tok); err == nil {
		t.Error("ExchangeRefreshToken accepted an access token")
	}
}
