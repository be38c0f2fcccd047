// Package auth verifies connection tokens and extracts the caller identity.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "sid"

// Verifier turns a token into an identity.
type Verifier interface {
	Verify(token string) (chat.Identity, error)
}

// Claims is the token payload. Issuance happens elsewhere.
type Claims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

var _ Verifier = (*JWTVerifier)(nil)

func (v *JWTVerifier) Verify(token string) (chat.Identity, error) {
	if token == "" {
		return chat.Identity{}, appErrors.ErrMissingToken
	}
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return chat.Identity{}, appErrors.Wrap(appErrors.CodeUnauthorized, "invalid token", err)
	}
	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return chat.Identity{}, appErrors.ErrInvalidToken
	}
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = id
	}
	return chat.Identity{ID: id, Name: name}, nil
}

// Sign issues a token for identity. Used by tests and local tooling.
func (v *JWTVerifier) Sign(who chat.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: who.ID,
		Name:   who.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   who.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// TokenFromRequest reads the token from the query string, the Authorization
// header or the session cookie, in that order.
func TokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
