// Package auth is the token service: it issues, verifies, and rotates the
// signed bearer tokens that protect the API, and provides the middleware
// that loads the authenticated user id into the request context.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dalemusser/flockhub/internal/app/system/apperr"
)

// Token kinds carried in the "typ" claim. An access token can never be
// exchanged and a refresh token can never authorize a request.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims is the signed claim set for both token kinds.
type Claims struct {
	Kind string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is the result of login and refresh-token exchange.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	AccessExpiresIn  int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
}

// TokenService signs and verifies bearer tokens. It is purely functional
// over the secret and the clock; nothing is persisted.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewTokenService builds a token service with the given signing secret and
// lifetimes.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *TokenService) issue(userID, kind string, ttl time.Duration) (string, int64, error) {
	now := s.now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return tok, int64(ttl.Seconds()), nil
}

// IssueAccessToken mints a short-lived access token for the user.
// The second return value is the lifetime in seconds.
func (s *TokenService) IssueAccessToken(userID string) (string, int64, error) {
	return s.issue(userID, KindAccess, s.accessTTL)
}

// IssueRefreshToken mints a refresh token for the user.
func (s *TokenService) IssueRefreshToken(userID string) (string, int64, error) {
	return s.issue(userID, KindRefresh, s.refreshTTL)
}

// IssuePair mints a fresh access/refresh pair for the user.
func (s *TokenService) IssuePair(userID string) (TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresIn:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresIn: refreshExp,
		TokenType:        "bearer",
	}, nil
}

// verify parses tokenString and checks signature, expiry, and kind.
// Every failure collapses into Unauthorized so callers can't distinguish
// tampered from expired.
func (s *TokenService) verify(tokenString, kind string) (string, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return "", apperr.Unauthorized("invalid or expired token")
	}
	if claims.Kind != kind || claims.Subject == "" {
		return "", apperr.Unauthorized("invalid or expired token")
	}
	return claims.Subject, nil
}

// VerifyAccessToken checks an access token and returns the user id it was
// issued for.
func (s *TokenService) VerifyAccessToken(tokenString string) (string, error) {
	return s.verify(tokenString, KindAccess)
}

// ExchangeRefreshToken verifies a refresh token and mints a new
// access/refresh pair (rotation). The old refresh token is not revoked;
// it simply ages out at its original expiry.
func (s *TokenService) ExchangeRefreshToken(tokenString string) (TokenPair, error) {
	userID, err := s.verify(tokenString, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return s.IssuePair(userID)
}
