// Package auth supplies the signed-in signal the cart manager polls. The
// transports decide whether a request is signed in and carry the answer in
// the request context.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"
)

type signedInKey struct{}

func WithSignedIn(ctx context.Context, signedIn bool) context.Context {
	return context.WithValue(ctx, signedInKey{}, signedIn)
}

func SignedIn(ctx context.Context) bool {
	v, _ := ctx.Value(signedInKey{}).(bool)
	return v
}

// ContextSource reports the flag set by WithSignedIn.
type ContextSource struct{}

func (ContextSource) IsAuthenticated(ctx context.Context) bool {
	return SignedIn(ctx)
}

type StaticSource bool

func (s StaticSource) IsAuthenticated(context.Context) bool {
	return bool(s)
}

// TokenVerifier accepts a fixed set of bearer tokens issued by the identity
// provider in front of the service.
type TokenVerifier struct {
	tokens [][]byte
}

func NewTokenVerifier(tokens []string) *TokenVerifier {
	v := &TokenVerifier{}
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			v.tokens = append(v.tokens, []byte(t))
		}
	}
	return v
}

func (v *TokenVerifier) Verify(token string) bool {
	if token == "" {
		return false
	}
	ok := false
	for _, t := range v.tokens {
		if subtle.ConstantTimeCompare(t, []byte(token)) == 1 {
			ok = true
		}
	}
	return ok
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
