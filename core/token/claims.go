package token

import (
	"context"
	"errors"
)

type ctxKey int

const (
	claimsKey ctxKey = iota + 1
	bearerKey
)

func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetClaims(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}

func SetBearer(ctx context.Context, bearer string) context.Context {
	return context.WithValue(ctx, bearerKey, bearer)
}

// GetBearer returns the raw bearer token forwarded on upstream calls, or
// the empty string when the request was anonymous.
func GetBearer(ctx context.Context) string {
	v, _ := ctx.Value(bearerKey).(string)
	return v
}
