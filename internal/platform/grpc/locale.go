package grpc

import (
	"context"
	"strings"

	"github.com/louisbranch/proposals/internal/platform/errors/i18n"
	"github.com/louisbranch/proposals/internal/platform/requestctx"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// LocaleMetadataKey carries the caller's Accept-Language preference.
const LocaleMetadataKey = "accept-language"

// LocaleFromIncoming resolves the caller's locale from incoming metadata.
// It returns "" when the caller sent no preference.
func LocaleFromIncoming(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(LocaleMetadataKey)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return ""
	}
	return i18n.MatchLocale(values[0])
}

// LocaleUnaryInterceptor stores the caller's resolved locale in the request
// context for handlers to read through requestctx.
func LocaleUnaryInterceptor() gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if locale := LocaleFromIncoming(ctx); locale != "" {
			ctx = requestctx.WithLocale(ctx, locale)
		}
		return handler(ctx, req)
	}
}
