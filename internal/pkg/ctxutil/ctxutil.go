package ctxutil

import (
	"context"

	"github.com/storefront/orderflow/internal/domain/user"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func GetPrincipal(ctx context.Context) *user.Principal {
	if p, ok := ctx.Value(principalKey{}).(*user.Principal); ok {
		return p
	}
	return nil
}
