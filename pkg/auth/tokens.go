package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes short-lived access tokens from the refresh tokens
// exchanged for a new pair.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Claims are the JWT claims carried by issued tokens.
// The subject is the user ID.
type Claims struct {
	Kind     TokenKind `json:"typ"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Pair is an access token with the refresh token that renews it.
type Pair struct {
	Access  string
	Refresh string
}

// Tokens issues and verifies HS256-signed tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    map[TokenKind]time.Duration
}

// NewTokens creates a Tokens signer from a finalized Config.
func NewTokens(cfg *Config) *Tokens {
	return &Tokens{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl: map[TokenKind]time.Duration{
			AccessToken:  cfg.TokenTTLDuration(),
			RefreshToken: cfg.RefreshTTLDuration(),
		},
	}
}

// Issue signs an access token for id.
func (t *Tokens) Issue(id Identity) (string, error) {
	return t.sign(AccessToken, id)
}

// IssuePair signs a fresh access and refresh token for id.
func (t *Tokens) IssuePair(id Identity) (Pair, error) {
	access, err := t.sign(AccessToken, id)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := t.sign(RefreshToken, Identity{ID: id.ID})
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

func (t *Tokens) sign(kind TokenKind, id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind:     kind,
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl[kind])),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify parses token and checks its signature, issuer, expiry, and kind.
// Every failure wraps ErrInvalidToken.
func (t *Tokens) Verify(token string, want TokenKind) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != want {
		return nil, fmt.Errorf("%w: %s token presented where %s token expected", ErrInvalidToken, claims.Kind, want)
	}
	return claims, nil
}
