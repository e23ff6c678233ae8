// Package auth signs and verifies the tokens that identify a user.
//
// TWO TOKENS, TWO SECRETS:
// Every login produces a pair.
//
//	accessToken   short-lived (minutes), sent on every request, never stored
//	refreshToken  long-lived (days), only used to mint a new pair, its hash is
//	              stored on the user row so exactly one is valid at a time
//
// Each kind is signed with its own HMAC secret and carries its own audience,
// so a refresh token can never be replayed as an access token (or the other
// way round) even if both secrets leaked at different times.
//
// Token structure (HS256):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Payload: {"iss":"watchwonders","aud":["access"],"sub":"<userID>","exp":...,"iat":...,"jti":"..."}
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
)

const (
	issuer = "watchwonders"

	audienceAccess  = "access"
	audienceRefresh = "refresh"

	minSecretLength = 16
)

// TokenConfig configures both signers.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// signer signs and validates one kind of token.
type signer struct {
	secret   []byte
	audience string
	ttl      time.Duration
}

// TokenService issues and validates access and refresh tokens.
// It is stateless; persisting the refresh token hash is the caller's job.
type TokenService struct {
	access  signer
	refresh signer
}

// NewTokenService validates cfg and builds the two signers.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.AccessSecret) < minSecretLength {
		return nil, fmt.Errorf("auth: access token secret must be at least %d characters", minSecretLength)
	}
	if len(cfg.RefreshSecret) < minSecretLength {
		return nil, fmt.Errorf("auth: refresh token secret must be at least %d characters", minSecretLength)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}

	return &TokenService{
		access:  signer{secret: []byte(cfg.AccessSecret), audience: audienceAccess, ttl: cfg.AccessTTL},
		refresh: signer{secret: []byte(cfg.RefreshSecret), audience: audienceRefresh, ttl: cfg.RefreshTTL},
	}, nil
}

// AccessTTL is the access token lifetime, used for cookie Max-Age.
func (s *TokenService) AccessTTL() time.Duration { return s.access.ttl }

// RefreshTTL is the refresh token lifetime, used for cookie Max-Age.
func (s *TokenService) RefreshTTL() time.Duration { return s.refresh.ttl }

// GeneratePair signs a fresh access/refresh pair for userID.
func (s *TokenService) GeneratePair(userID string) (TokenPair, error) {
	accessToken, err := s.access.sign(userID, s.access.ttl)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := s.refresh.sign(userID, s.refresh.ttl)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateAccess returns the user id carried by a valid access token.
// Any failure is an apperror.ErrUnauthenticated.
func (s *TokenService) ValidateAccess(tokenStr string) (string, error) {
	return s.access.validate(tokenStr)
}

// ValidateRefresh returns the user id carried by a valid refresh token.
// It only checks the signature and lifetime; whether the token is the one
// currently stored for the user is decided by the caller.
func (s *TokenService) ValidateRefresh(tokenStr string) (string, error) {
	return s.refresh.validate(tokenStr)
}

// sign creates a token for userID valid for d.
// The jti makes two tokens minted within the same second distinct, which
// the stored-hash comparison in the refresh flow relies on.
func (k signer) sign(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{k.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", k.audience, err)
	}
	return signed, nil
}

// validate checks signature, algorithm, issuer, audience and expiry.
// Passing jwt.WithValidMethods rejects "none" and any asymmetric algorithm.
func (k signer) validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", apperror.Unauthenticated(fmt.Sprintf("%s token is missing", k.audience))
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return k.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(k.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Unauthenticated(fmt.Sprintf("%s token expired", k.audience))
		}
		return "", apperror.Unauthenticated(fmt.Sprintf("invalid %s token", k.audience))
	}

	c, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", apperror.Unauthenticated(fmt.Sprintf("invalid %s token", k.audience))
	}

	return c.Subject, nil
}
