// Package session reads the caller's bearer token and keeps the small
// per-user state the pages share, such as the selected patient.
package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/vacina-dashboard/internal/model"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

const CookieName = "token"

// Claims are the fields of the registry token used by the dashboard. The
// signature is not checked here; the backend verifies every call.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is one authenticated caller.
type Session struct {
	Token  string
	Claims *Claims
}

// Key identifies the session's stored state.
func (s *Session) Key() string { return s.Claims.Subject }

func (s *Session) Username() string { return s.Claims.Subject }

// Elevated reports whether the role claim allows admin-only UI.
func (s *Session) Elevated() bool { return s.Claims.Role == model.RoleAdmin }

var parser = jwt.NewParser()

// Decode reads the token payload without verifying it. Tokens without a
// subject or past their expiry are rejected.
func Decode(token string, now time.Time) (*Session, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("failed to decode token: %w", err))
	}
	if claims.Subject == "" {
		return nil, apperrors.Unauthorized(fmt.Errorf("token has no subject"))
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return nil, apperrors.Unauthorized(fmt.Errorf("token expired at %s", claims.ExpiresAt.Time))
	}
	return &Session{Token: token, Claims: claims}, nil
}

// TokenFrom returns the bearer token of r, falling back to the token cookie.
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// FromRequest decodes the caller's session.
func FromRequest(r *http.Request, now time.Time) (*Session, error) {
	token := TokenFrom(r)
	if token == "" {
		return nil, apperrors.Unauthorized(fmt.Errorf("missing token"))
	}
	return Decode(token, now)
}
