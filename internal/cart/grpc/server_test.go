package grpc

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"
	"time"

	cartv1 "github.com/dwikikusuma/storefront-cart/api/cart/v1"
	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/auth"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/memory"
	"github.com/dwikikusuma/storefront-cart/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const (
	session = "c2b4a1f0-5d6e-4f70-8a9b-0c1d2e3f4a5b"
	token   = "s3cret"
)

func newClient(t *testing.T) *cartv1.CartServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	sessions := app.NewSessions(memory.NewCartStore(), auth.ContextSource{}, app.Options{NotificationTTL: time.Hour}, logger.Discard())
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingInterceptor(logger.Discard()),
		AuthInterceptor(auth.NewTokenVerifier([]string{token})),
	))
	cartv1.RegisterCartServiceServer(srv, NewServer(sessions))
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		sessions.Close()
	})
	return cartv1.NewCartServiceClient(conn)
}

func signedIn(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func mouse() cartv1.Product {
	return cartv1.Product{ID: "p1", Title: "Wireless Mouse", Price: "500"}
}

func TestServer_CartLifecycle(t *testing.T) {
	c := newClient(t)
	ctx := signedIn(context.Background())

	cart, err := c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: mouse(), Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), cart.Count)

	cart, err = c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: mouse(), Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(3), cart.Lines[0].Quantity)
	assert.Equal(t, "1500", cart.Lines[0].LineTotal)
	assert.Equal(t, "1500", cart.Subtotal)

	_, err = c.SetItemQuantity(ctx, &cartv1.SetItemQuantityRequest{SessionID: session, ProductID: "p1", Quantity: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	cart, err = c.SetItemQuantity(ctx, &cartv1.SetItemQuantityRequest{SessionID: session, ProductID: "p1", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, int32(5), cart.Count)

	notes, err := c.ListNotifications(ctx, &cartv1.SessionRequest{SessionID: session})
	require.NoError(t, err)
	require.Len(t, notes.Notifications, 2)
	assert.Equal(t, "success", notes.Notifications[0].Kind)
	assert.Equal(t, "Wireless Mouse added to cart", notes.Notifications[0].Message)

	notes, err = c.DismissNotification(ctx, &cartv1.DismissNotificationRequest{SessionID: session, NotificationID: notes.Notifications[0].ID})
	require.NoError(t, err)
	assert.Len(t, notes.Notifications, 1)

	cart, err = c.RemoveItem(ctx, &cartv1.RemoveItemRequest{SessionID: session, ProductID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, int32(0), cart.Count)

	_, err = c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: mouse(), Quantity: 1})
	require.NoError(t, err)
	cart, err = c.ClearCart(ctx, &cartv1.SessionRequest{SessionID: session})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	cart, err = c.GetCart(ctx, &cartv1.SessionRequest{SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, session, cart.SessionID)
	assert.Empty(t, cart.Lines)
}

func TestServer_AddRequiresSignIn(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: mouse(), Quantity: 1})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer nope")
	_, err = c.AddItem(bad, &cartv1.AddItemRequest{SessionID: session, Product: mouse(), Quantity: 1})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	cart, err := c.GetCart(ctx, &cartv1.SessionRequest{SessionID: session})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	notes, err := c.ListNotifications(ctx, &cartv1.SessionRequest{SessionID: session})
	require.NoError(t, err)
	require.Len(t, notes.Notifications, 2)
	assert.Equal(t, "error", notes.Notifications[0].Kind)
}

func TestServer_InvalidArguments(t *testing.T) {
	c := newClient(t)
	ctx := signedIn(context.Background())

	_, err := c.GetCart(ctx, &cartv1.SessionRequest{SessionID: "nope"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	p := mouse()
	p.Price = "five hundred"
	_, err = c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: p, Quantity: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	p = mouse()
	p.Title = ""
	_, err = c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: p, Quantity: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_QuantityNeverWraps(t *testing.T) {
	c := newClient(t)
	ctx := signedIn(context.Background())

	cart, err := c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: mouse(), Quantity: math.MaxInt32})
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), cart.Count)

	_, err = c.AddItem(ctx, &cartv1.AddItemRequest{SessionID: session, Product: mouse(), Quantity: math.MaxInt32})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	cart, err = c.GetCart(ctx, &cartv1.SessionRequest{SessionID: session})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(math.MaxInt32), cart.Lines[0].Quantity)
	assert.Equal(t, int32(math.MaxInt32), cart.Count)
}

func TestMapErr(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{app.ErrInvalidInput, codes.InvalidArgument},
		{app.ErrInvalidQuantity, codes.InvalidArgument},
		{app.ErrInvalidSession, codes.InvalidArgument},
		{app.ErrNotAuthenticated, codes.Unauthenticated},
		{errors.Join(app.ErrPersistence, errors.New("disk")), codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.NotFound, "x"), codes.NotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, status.Code(MapErr(tc.err)), "err %v", tc.err)
	}
	assert.NoError(t, MapErr(nil))
}
