package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthInterceptor marks the call signed in when its authorization metadata
// carries a bearer token the verifier accepts. Unsigned calls still proceed;
// only adding to the cart requires a signed-in caller.
func AuthInterceptor(v *auth.TokenVerifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		signedIn := false
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			for _, h := range md.Get("authorization") {
				if v.Verify(auth.BearerToken(h)) {
					signedIn = true
					break
				}
			}
		}
		return handler(auth.WithSignedIn(ctx, signedIn), req)
	}
}

func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("took", time.Since(start)),
		)
		return resp, err
	}
}
