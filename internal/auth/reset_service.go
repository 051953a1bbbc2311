// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/mediahub/mediahub/pkg/errutil"
)

// PasswordResetService handles the password reset lifecycle.
type PasswordResetService struct {
	identities IdentityRepository
	resets     PasswordResetRepository
	tx         Transactor
	hasher     PasswordHasher
	tokens     *TokenService
	notifier   Notifier
	opts       options

	wg sync.WaitGroup
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(
	identities IdentityRepository,
	resets PasswordResetRepository,
	tx Transactor,
	hasher PasswordHasher,
	tokens *TokenService,
	notifier Notifier,
	opts ...Option,
) (*PasswordResetService, error) {
	switch {
	case identities == nil:
		return nil, ErrNilIdentityRepository
	case resets == nil:
		return nil, ErrNilResetRepository
	case tx == nil:
		return nil, ErrNilTransactor
	case hasher == nil:
		return nil, ErrNilHasher
	case tokens == nil:
		return nil, ErrNilTokenService
	case notifier == nil:
		return nil, ErrNilNotifier
	}
	return &PasswordResetService{
		identities: identities,
		resets:     resets,
		tx:         tx,
		hasher:     hasher,
		tokens:     tokens,
		notifier:   notifier,
		opts:       applyOptions(opts),
	}, nil
}

// RequestReset issues a reset token for the identity registered under
// email and hands it to the Notifier in the background. The result is the
// same whether or not the email is known; the token is never returned.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (err error) {
	ctx, done := s.opts.startOp(ctx, "request_reset")
	defer done(&err)

	email = strings.TrimSpace(email)
	if email == "" {
		fields := FieldErrors{}
		fields.Add("email", "Email is required")
		return fields.Err()
	}

	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.opts.logger.DebugContext(ctx, "password reset requested for unknown email",
				"code", "AUTH_IDENTITY_NOT_FOUND")
			return nil
		}
		return oops.Code("RESET_REQUEST_FAILED").With("operation", "get identity by email").Wrap(err)
	}

	issued, err := s.tokens.IssueResetToken(identity.ID, s.opts.resetTTL)
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").With("operation", "issue reset token").Wrap(err)
	}
	if err = s.resets.Create(ctx, NewPasswordReset(identity.ID, issued)); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").With("operation", "store reset").Wrap(err)
	}

	s.dispatch(ctx, identity, issued.Token)
	return nil
}

// dispatch sends the link without blocking the caller. Failures are
// logged only.
func (s *PasswordResetService) dispatch(ctx context.Context, identity *Identity, token string) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, s.opts.notifyWait)
		defer cancel()

		if err := s.notifier.SendPasswordResetLink(ctx, identity.Email, token); err != nil {
			errutil.LogError(ctx, s.opts.logger, "password reset notification failed",
				oops.Code("RESET_NOTIFY_FAILED").
					With("identity_id", identity.ID.String()).
					Wrap(err))
		}
	}()
}

// Wait blocks until all in-flight notification dispatches finish.
func (s *PasswordResetService) Wait() {
	s.wg.Wait()
}

// CompleteReset replaces the credential of the token's identity. The
// token's record is consumed in the same transaction, so a token can be
// used at most once.
func (s *PasswordResetService) CompleteReset(ctx context.Context, token, newPassword string) (err error) {
	ctx, done := s.opts.startOp(ctx, "complete_reset")
	defer done(&err)

	if err = ValidateNewPassword("newPassword", newPassword); err != nil {
		return err
	}

	claims, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return err
	}
	identityID, err := claims.IdentityID()
	if err != nil {
		return err
	}
	resetID, err := claims.TokenID()
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").With("operation", "hash password").Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		record, err := s.resets.Consume(ctx, resetID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalidToken(oops.With("reset_id", resetID.String()).
					Errorf("reset token already used or unknown"))
			}
			return oops.Code("RESET_PASSWORD_FAILED").With("operation", "consume reset").Wrap(err)
		}
		if record.IdentityID != identityID || !record.Matches(token) {
			return invalidToken(oops.With("reset_id", resetID.String()).
				Errorf("reset record does not match token"))
		}

		if err := s.identities.UpdatePassword(ctx, identityID, hash); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errutil.Wrap(errutil.KindNotFound, msgUserNotFound,
					oops.Code("AUTH_IDENTITY_NOT_FOUND").With("identity_id", identityID.String()).Wrap(err))
			}
			return oops.Code("RESET_PASSWORD_FAILED").With("operation", "update password").Wrap(err)
		}

		if err := s.resets.DeleteByIdentity(ctx, identityID); err != nil {
			return oops.Code("RESET_PASSWORD_FAILED").With("operation", "delete outstanding resets").Wrap(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.opts.logger.InfoContext(ctx, "password reset completed", "identity_id", identityID.String())
	return nil
}
