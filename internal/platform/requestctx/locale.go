// Package requestctx carries request-scoped values across layers.
package requestctx

import "context"

type localeContextKey struct{}

// WithLocale stores the caller's resolved locale in context.
func WithLocale(ctx context.Context, locale string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// LocaleFromContext returns the locale stored in context, or "" when unset.
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(localeContextKey{}).(string)
	return value
}
