// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/access"
	"github.com/mediahub/mediahub/pkg/errutil"
)

// Token purposes. A token minted for one purpose never verifies for another.
const (
	PurposeAccess = "access"
	PurposeReset  = "reset"
)

// Token defaults.
const (
	DefaultIssuer        = "mediahub"
	DefaultIdentityTTL   = 24 * time.Hour
	DefaultResetTokenTTL = time.Hour
	MinSigningKeyLength  = 32
)

// IdentityClaims is the payload of an identity token.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email    string      `json:"email"`
	NickName string      `json:"nickName"`
	Role     access.Role `json:"role"`
	Purpose  string      `json:"purpose"`
}

// Principal converts verified claims into the authorization view.
func (c *IdentityClaims) Principal() (access.Principal, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return access.Principal{}, invalidToken(err)
	}
	return access.Principal{ID: id, Email: c.Email, NickName: c.NickName, Role: c.Role}, nil
}

// ResetClaims is the payload of a password-reset token.
type ResetClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// IdentityID returns the subject of the reset token.
func (c *ResetClaims) IdentityID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, invalidToken(err)
	}
	return id, nil
}

// TokenID returns the jti of the reset token.
func (c *ResetClaims) TokenID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.ID)
	if err != nil {
		return ulid.ULID{}, invalidToken(err)
	}
	return id, nil
}

// IssuedToken is a freshly signed reset token together with the values
// needed to persist its record.
type IssuedToken struct {
	Token     string
	ID        ulid.ULID
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 tokens with a single secret.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) { s.issuer = issuer }
}

// WithTokenClock sets the time source used for iat, exp and expiry checks.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService. The secret must be at least
// MinSigningKeyLength bytes.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < MinSigningKeyLength {
		return nil, oops.Code("TOKEN_KEY_TOO_SHORT").
			With("min_length", MinSigningKeyLength).
			Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
	}
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueIdentityToken signs an access token for p that expires after ttl.
func (s *TokenService) IssueIdentityToken(p access.Principal, ttl time.Duration) (string, error) {
	now := s.now()
	claims := IdentityClaims{
		RegisteredClaims: s.registered(p.ID, now, ttl),
		Email:            p.Email,
		NickName:         p.NickName,
		Role:             p.Role,
		Purpose:          PurposeAccess,
	}
	return s.sign(claims)
}

// VerifyIdentityToken checks signature, issuer, expiry and purpose.
func (s *TokenService) VerifyIdentityToken(token string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeAccess {
		return nil, invalidToken(oops.With("purpose", claims.Purpose).Errorf("unexpected token purpose"))
	}
	return claims, nil
}

// IssueResetToken signs a single-use reset token for identityID.
func (s *TokenService) IssueResetToken(identityID ulid.ULID, ttl time.Duration) (*IssuedToken, error) {
	now := s.now()
	rc := s.registered(identityID, now, ttl)
	token, err := s.sign(ResetClaims{RegisteredClaims: rc, Purpose: PurposeReset})
	if err != nil {
		return nil, err
	}
	id, err := ulid.Parse(rc.ID)
	if err != nil {
		return nil, oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return &IssuedToken{Token: token, ID: id, ExpiresAt: rc.ExpiresAt.Time}, nil
}

// VerifyResetToken checks signature, issuer, expiry and purpose.
func (s *TokenService) VerifyResetToken(token string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeReset {
		return nil, invalidToken(oops.With("purpose", claims.Purpose).Errorf("unexpected token purpose"))
	}
	return claims, nil
}

func (s *TokenService) registered(subject ulid.ULID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        ulid.Make().String(),
		Subject:   subject.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	if token == "" {
		return invalidToken(oops.Errorf("token is empty"))
	}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return errutil.Wrap(errutil.KindUnauthorized, "Token expired",
			oops.Code("TOKEN_EXPIRED").Wrap(err))
	default:
		return invalidToken(err)
	}
}

func invalidToken(cause error) error {
	return errutil.Wrap(errutil.KindUnauthorized, "Invalid token",
		oops.Code("TOKEN_INVALID").Wrap(cause))
}
