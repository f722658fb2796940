// Package auth verifies bearer credentials and resolves them to stored
// identities. Token minting is external; this package only parses and
// validates.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// UserResolver looks up the identity a verified subject refers to.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Verifier validates HS256 bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
	users  UserResolver
	now    func() time.Time
}

// NewVerifier constructs a Verifier. now defaults to time.Now.
func NewVerifier(secret string, users UserResolver, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: []byte(secret), users: users, now: now}
}

// Verify parses and validates a bearer token and resolves its subject.
// Outcomes map onto the handshake taxonomy: TOKEN_MISSING for an absent
// credential, TOKEN_EXPIRED / TOKEN_INVALID for verifier rejections, and
// IDENTITY_NOT_FOUND when the subject no longer resolves.
func (v *Verifier) Verify(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.New(apperr.CodeTokenMissing, "credential is required")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.CodeTokenExpired, "credential has expired", err)
		}
		return nil, apperr.Wrap(apperr.CodeTokenInvalid, "credential is invalid", err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, apperr.New(apperr.CodeTokenInvalid, "credential has no subject")
	}

	user, err := v.users.GetByID(ctx, subject)
	if err != nil {
		return nil, err
	}
	return user, nil
}
