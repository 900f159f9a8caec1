package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenValidator checks an already parsed access token and extracts the principal.
// Tokens must carry exp and jti, a UUID subject and a known role claim.
type TokenValidator struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	Algorithm jwa.SignatureAlgorithm
}

// Principal validates tok against issuer, audience, expiry and algorithm, then
// maps its claims to a Principal.
func (v TokenValidator) Principal(tok jwt.Token, algorithm jwa.SignatureAlgorithm, now time.Time) (Principal, error) {
	if tok == nil {
		return Principal{}, errors.New("auth: token is nil")
	}
	if algorithm == "" {
		return Principal{}, errors.New("auth: token missing algorithm")
	}
	if v.Algorithm != "" && algorithm != v.Algorithm {
		return Principal{}, fmt.Errorf("auth: unexpected token algorithm %s", algorithm)
	}

	opts := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
		jwt.WithRequiredClaim(jwt.JwtIDKey),
		jwt.WithRequiredClaim(roleClaim),
	}
	if v.ClockSkew > 0 {
		opts = append(opts, jwt.WithAcceptableSkew(v.ClockSkew))
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}
	if err := jwt.Validate(tok, opts...); err != nil {
		return Principal{}, err
	}

	if _, err := uuid.Parse(tok.Subject()); err != nil {
		return Principal{}, fmt.Errorf("auth: subject is not a user id: %w", err)
	}
	raw, _ := tok.Get(roleClaim)
	role, _ := raw.(string)
	if !ValidRole(role) {
		return Principal{}, fmt.Errorf("auth: unknown role %q", role)
	}
	return Principal{
		UserID:    tok.Subject(),
		Role:      role,
		TokenID:   tok.JwtID(),
		ExpiresAt: tok.Expiration(),
	}, nil
}
