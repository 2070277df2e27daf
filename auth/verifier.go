// Package auth resolves bearer credentials into authenticated identities.
package auth

import (
	"context"
	"errors"

	"github.com/upb/gemini-chat/backend/firebase"
	"go.uber.org/zap"
)

// ErrInvalidCredential is the single outcome for every rejected credential.
// It never reaches a client; callers translate it into an unauthorized response.
var ErrInvalidCredential = errors.New("invalid credential")

// Identity is the authenticated principal behind a request
type Identity struct {
	Subject        string
	Email          string
	EmailVerified  bool
	SignInProvider string
}

// TokenValidator validates ID tokens against the identity authority
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*firebase.ParsedClaims, error)
}

// CredentialVerifier turns a bearer credential into an Identity
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Verifier checks every credential with the identity authority.
// Results are never cached.
type Verifier struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewVerifier creates a Verifier backed by the given token validator
func NewVerifier(validator TokenValidator, logger *zap.Logger) *Verifier {
	return &Verifier{
		validator: validator,
		logger:    logger,
	}
}

// Verify validates token and returns the identity it asserts
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidCredential
	}

	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		v.logger.Debug("credential rejected",
			zap.String("unverified_sub", firebase.UnverifiedSubject(token)),
			zap.Error(err))
		return nil, ErrInvalidCredential
	}

	if claims.UID == "" {
		return nil, ErrInvalidCredential
	}

	return &Identity{
		Subject:        claims.UID,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		SignInProvider: claims.SignInProvider,
	}, nil
}

// RejectAll is a CredentialVerifier that rejects every credential.
// Used when no identity authority is configured.
type RejectAll struct{}

// Verify always fails with ErrInvalidCredential
func (RejectAll) Verify(context.Context, string) (*Identity, error) {
	return nil, ErrInvalidCredential
}
