// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/access"
	"github.com/mediahub/mediahub/pkg/errutil"
)

// Client-facing messages.
const (
	msgUserNotFound      = "User not found"
	msgIncorrectPassword = "Incorrect Password"
	msgEmailTaken        = "Email already in use"
	msgNickNameTaken     = "Nickname already in use"
	msgTokenRevoked      = "Token revoked"
)

// Sentinel errors for constructor validation.
var (
	ErrNilIdentityRepository   = errors.New("identity repository is required")
	ErrNilResetRepository      = errors.New("password reset repository is required")
	ErrNilRevocationRepository = errors.New("revocation repository is required")
	ErrNilTransactor           = errors.New("transactor is required")
	ErrNilHasher               = errors.New("password hasher is required")
	ErrNilTokenService         = errors.New("token service is required")
	ErrNilNotifier             = errors.New("notifier is required")
)

// Result is returned by Register and Login.
type Result struct {
	Identity *Identity
	Token    string
}

// Service provides registration, login, token authentication and logout.
type Service struct {
	identities  IdentityRepository
	revocations RevocationRepository
	tx          Transactor
	hasher      PasswordHasher
	tokens      *TokenService
	opts        options
}

// NewService creates a new Service.
func NewService(
	identities IdentityRepository,
	revocations RevocationRepository,
	tx Transactor,
	hasher PasswordHasher,
	tokens *TokenService,
	opts ...Option,
) (*Service, error) {
	switch {
	case identities == nil:
		return nil, ErrNilIdentityRepository
	case revocations == nil:
		return nil, ErrNilRevocationRepository
	case tx == nil:
		return nil, ErrNilTransactor
	case hasher == nil:
		return nil, ErrNilHasher
	case tokens == nil:
		return nil, ErrNilTokenService
	}
	return &Service{
		identities:  identities,
		revocations: revocations,
		tx:          tx,
		hasher:      hasher,
		tokens:      tokens,
		opts:        applyOptions(opts),
	}, nil
}

// Register validates in, creates the identity and issues its first token.
// The first identity ever stored becomes ADMIN; every later one is MEMBER.
func (s *Service) Register(ctx context.Context, in RegisterInput) (_ *Result, err error) {
	ctx, done := s.opts.startOp(ctx, "register")
	defer done(&err)

	if err = ValidateRegistration(in); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	nickName := strings.TrimSpace(in.NickName)

	if err = s.checkAvailable(ctx, email, nickName); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	var identity *Identity
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.identities.LockRegistrations(ctx); err != nil {
			return oops.Code("AUTH_REGISTER_FAILED").With("operation", "lock registrations").Wrap(err)
		}
		count, err := s.identities.Count(ctx)
		if err != nil {
			return oops.Code("AUTH_REGISTER_FAILED").With("operation", "count identities").Wrap(err)
		}
		role := access.RoleMember
		if count == 0 {
			role = access.RoleAdmin
		}

		identity, err = NewIdentity(email, nickName, in.FirstName, in.LastName, hash, role)
		if err != nil {
			return oops.Code("AUTH_REGISTER_FAILED").With("operation", "build identity").Wrap(err)
		}
		if err := s.identities.Create(ctx, identity); err != nil {
			return createError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueIdentityToken(identity.Principal(), s.opts.identityTTL)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "issue token").Wrap(err)
	}

	s.opts.logger.InfoContext(ctx, "identity registered",
		"identity_id", identity.ID.String(),
		"role", identity.Role.String(),
	)
	return &Result{Identity: identity, Token: token}, nil
}

// checkAvailable reports a Conflict when email or nickname is already used.
// The unique constraints remain the final arbiter; this only gives the
// common case a friendlier path.
func (s *Service) checkAvailable(ctx context.Context, email, nickName string) error {
	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return emailTaken(ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_REGISTER_FAILED").With("operation", "get identity by email").Wrap(err)
	}

	if _, err := s.identities.GetByNickName(ctx, nickName); err == nil {
		return nickNameTaken(ErrNickNameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_REGISTER_FAILED").With("operation", "get identity by nickname").Wrap(err)
	}
	return nil
}

func createError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return emailTaken(err)
	case errors.Is(err, ErrNickNameTaken):
		return nickNameTaken(err)
	default:
		return oops.Code("AUTH_REGISTER_FAILED").With("operation", "create identity").Wrap(err)
	}
}

func emailTaken(cause error) error {
	return errutil.Conflict("email", msgEmailTaken,
		oops.Code("AUTH_EMAIL_TAKEN").With("field", "email").Wrap(cause))
}

func nickNameTaken(cause error) error {
	return errutil.Conflict("nickName", msgNickNameTaken,
		oops.Code("AUTH_NICKNAME_TAKEN").With("field", "nickName").Wrap(cause))
}

// Login authenticates by email or nickname and issues an identity token.
// Legacy credential hashes are upgraded on success.
func (s *Service) Login(ctx context.Context, identifier, password string) (_ *Result, err error) {
	ctx, done := s.opts.startOp(ctx, "login")
	defer done(&err)

	if err = ValidateLogin(identifier, password); err != nil {
		return nil, err
	}

	identity, err := s.identities.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errutil.Wrap(errutil.KindNotFound, msgUserNotFound,
				oops.Code("AUTH_IDENTITY_NOT_FOUND").Wrap(err))
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "get identity").Wrap(err)
	}

	valid, err := s.hasher.Verify(password, identity.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("identity_id", identity.ID.String()).
			Wrap(err)
	}
	if !valid {
		return nil, errutil.Wrap(errutil.KindUnauthorized, msgIncorrectPassword,
			oops.Code("AUTH_INVALID_CREDENTIALS").
				With("identity_id", identity.ID.String()).
				Errorf("password mismatch"))
	}

	if s.hasher.NeedsUpgrade(identity.PasswordHash) {
		s.upgradeHash(ctx, identity, password)
	}

	token, err := s.tokens.IssueIdentityToken(identity.Principal(), s.opts.identityTTL)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "issue token").Wrap(err)
	}
	return &Result{Identity: identity, Token: token}, nil
}

// upgradeHash rehashes a legacy credential. Failure leaves the old hash in
// place and does not fail the login.
func (s *Service) upgradeHash(ctx context.Context, identity *Identity, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.identities.UpdatePassword(ctx, identity.ID, hash)
	}
	if err != nil {
		s.opts.logger.WarnContext(ctx, "best-effort password hash upgrade failed",
			"identity_id", identity.ID.String(),
			"operation", "upgrade_hash",
			"error", err.Error(),
		)
		return
	}
	identity.PasswordHash = hash
}

// Authenticate verifies an identity token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (_ access.Principal, err error) {
	ctx, done := s.opts.startOp(ctx, "authenticate")
	defer done(&err)

	claims, err := s.tokens.VerifyIdentityToken(token)
	if err != nil {
		return access.Principal{}, err
	}
	p, err := claims.Principal()
	if err != nil {
		return access.Principal{}, err
	}

	rt, err := NewRevokedToken(claims)
	if err != nil {
		return access.Principal{}, invalidToken(err)
	}
	revoked, err := s.revocations.IsRevoked(ctx, rt.ID)
	if err != nil {
		return access.Principal{}, oops.Code("AUTH_AUTHENTICATE_FAILED").
			With("operation", "check revocation").
			Wrap(err)
	}
	if revoked {
		return access.Principal{}, errutil.Wrap(errutil.KindUnauthorized, msgTokenRevoked,
			oops.Code("TOKEN_REVOKED").With("jti", rt.ID.String()).Errorf("token was revoked"))
	}
	return p, nil
}

// Logout revokes token until it would have expired. A token that is
// already invalid or expired cannot authenticate anyway, so it is accepted
// without action.
func (s *Service) Logout(ctx context.Context, token string) (err error) {
	ctx, done := s.opts.startOp(ctx, "logout")
	defer done(&err)

	if strings.TrimSpace(token) == "" {
		fields := FieldErrors{}
		fields.Add("refreshToken", "Refresh token is required")
		return fields.Err()
	}

	claims, verr := s.tokens.VerifyIdentityToken(token)
	if verr != nil {
		s.opts.logger.DebugContext(ctx, "logout with unusable token", "error", verr.Error())
		return nil
	}
	rt, rerr := NewRevokedToken(claims)
	if rerr != nil {
		s.opts.logger.DebugContext(ctx, "logout with unusable token", "error", rerr.Error())
		return nil
	}

	if err = s.revocations.Revoke(ctx, rt); err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "revoke token").
			With("identity_id", rt.IdentityID.String()).
			Wrap(err)
	}
	return nil
}

// ListIdentities returns every identity. Only ADMIN principals may list.
func (s *Service) ListIdentities(ctx context.Context) (_ []*Identity, err error) {
	ctx, done := s.opts.startOp(ctx, "list_identities")
	defer done(&err)

	p, err := access.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err = access.RequireRole(p, access.RoleAdmin); err != nil {
		return nil, err
	}

	identities, err := s.identities.List(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_LIST_FAILED").With("operation", "list identities").Wrap(err)
	}
	return identities, nil
}
