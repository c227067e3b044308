package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	cartv1 "github.com/dwikikusuma/storefront-cart/api/cart/v1"
	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	cartgrpc "github.com/dwikikusuma/storefront-cart/internal/cart/grpc"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/auth"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/memory"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
	"github.com/dwikikusuma/storefront-cart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront-cart/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "s3cret"

type client struct {
	t       *testing.T
	srv     *httptest.Server
	session string
	token   string
}

func newTestServer(t *testing.T, ready func(context.Context) error) *client {
	t.Helper()
	log := logger.Discard()
	sessions := app.NewSessions(memory.NewCartStore(), auth.ContextSource{}, app.Options{NotificationTTL: time.Hour}, log)
	checkout := checkoutapp.NewService(adapter.NewCartSessionReader(sessions), checkoutapp.Options{Shipping: decimal.NewFromInt(10)}, log)

	srv := httptest.NewServer(NewRouter(Deps{
		Cart:     cartgrpc.NewServer(sessions),
		Checkout: checkout,
		Verifier: auth.NewTokenVerifier([]string{token}),
		Log:      log,
		Ready:    ready,
	}))
	t.Cleanup(func() {
		srv.Close()
		sessions.Close()
	})
	return &client{t: t, srv: srv}
}

func (c *client) do(method, path, body string) (int, []byte) {
	c.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	if c.session != "" {
		req.Header.Set(SessionHeader, c.session)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, raw
}

func decodeAs[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (c *client) newSession() {
	code, raw := c.do(http.MethodPost, "/api/v1/sessions", "")
	require.Equal(c.t, http.StatusCreated, code)
	c.session = decodeAs[map[string]string](c.t, raw)["session_id"]
	require.NotEmpty(c.t, c.session)
}

const mouseBody = `{"product":{"id":"p1","title":"Wireless Mouse","price":500},"quantity":1}`

func TestRouter_CartFlow(t *testing.T) {
	c := newTestServer(t, nil)
	c.newSession()

	code, raw := c.do(http.MethodPost, "/api/v1/cart/items", mouseBody)
	require.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHENTICATED", decodeAs[errorBody](t, raw).Error.Code)

	c.token = token
	code, raw = c.do(http.MethodPost, "/api/v1/cart/items", mouseBody)
	require.Equal(t, http.StatusOK, code, string(raw))
	assert.Equal(t, int32(1), decodeAs[cartv1.Cart](t, raw).Count)

	code, raw = c.do(http.MethodPost, "/api/v1/cart/items", `{"product":{"id":"p1","title":"Wireless Mouse","price":"500"},"quantity":2}`)
	require.Equal(t, http.StatusOK, code)
	cart := decodeAs[cartv1.Cart](t, raw)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(3), cart.Lines[0].Quantity)

	code, _ = c.do(http.MethodPut, "/api/v1/cart/items/p1", `{"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, raw = c.do(http.MethodPut, "/api/v1/cart/items/p1", `{"quantity":4}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int32(4), decodeAs[cartv1.Cart](t, raw).Count)

	code, raw = c.do(http.MethodGet, "/api/v1/cart/notifications", "")
	require.Equal(t, http.StatusOK, code)
	notes := decodeAs[cartv1.NotificationList](t, raw).Notifications
	require.Len(t, notes, 3)
	assert.Equal(t, "error", notes[0].Kind)
	assert.Equal(t, "Please login to add products to cart", notes[0].Message)

	code, raw = c.do(http.MethodDelete, "/api/v1/cart/notifications/"+strconv.FormatUint(notes[0].ID, 10), "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeAs[cartv1.NotificationList](t, raw).Notifications, 2)

	code, _ = c.do(http.MethodDelete, "/api/v1/cart/notifications/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, raw = c.do(http.MethodDelete, "/api/v1/cart/items/p1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeAs[cartv1.Cart](t, raw).Lines)

	_, _ = c.do(http.MethodPost, "/api/v1/cart/items", mouseBody)
	code, raw = c.do(http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeAs[cartv1.Cart](t, raw).Lines)
}

func TestRouter_BadRequests(t *testing.T) {
	c := newTestServer(t, nil)
	c.token = token

	code, raw := c.do(http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ARGUMENT", decodeAs[errorBody](t, raw).Error.Code)

	c.newSession()
	code, _ = c.do(http.MethodPost, "/api/v1/cart/items", `{"product":`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodPost, "/api/v1/cart/items", `{"product":{"id":"p1","title":"","price":1}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_AddItemRequiresPrice(t *testing.T) {
	c := newTestServer(t, nil)
	c.newSession()
	c.token = token

	code, raw := c.do(http.MethodPost, "/api/v1/cart/items", `{"product":{"id":"p1","title":"Wireless Mouse"},"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "product price is required", decodeAs[errorBody](t, raw).Error.Message)

	code, raw = c.do(http.MethodPost, "/api/v1/cart/items", `{"product":{"id":"p1","title":"Wireless Mouse","price":null},"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, raw = c.do(http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeAs[cartv1.Cart](t, raw).Lines)

	code, raw = c.do(http.MethodPost, "/api/v1/cart/items", `{"product":{"id":"p2","title":"Sticker","price":0},"quantity":1}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	assert.Equal(t, int32(1), decodeAs[cartv1.Cart](t, raw).Count)
}

const checkoutForm = `{"firstName":"Asha","lastName":"Rao","email":"asha@example.com","phone":"9876543210",
"address":"12 MG Road","city":"Kochi","state":"Kerala","zipCode":"682001","country":"India"}`

func TestRouter_Checkout(t *testing.T) {
	c := newTestServer(t, nil)
	c.newSession()
	c.token = token

	code, raw := c.do(http.MethodPost, "/api/v1/checkout", checkoutForm)
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "FAILED_PRECONDITION", decodeAs[errorBody](t, raw).Error.Code)

	_, _ = c.do(http.MethodPost, "/api/v1/cart/items", mouseBody)

	code, raw = c.do(http.MethodPost, "/api/v1/checkout", `{"firstName":"Asha","email":"nope"}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	body := decodeAs[errorBody](t, raw)
	assert.Equal(t, "INVALID_FORM", body.Error.Code)
	assert.Equal(t, "Please enter a valid email address", body.Error.Fields["email"])
	assert.Equal(t, "This field is required", body.Error.Fields["lastName"])

	code, raw = c.do(http.MethodPost, "/api/v1/checkout", checkoutForm)
	require.Equal(t, http.StatusOK, code, string(raw))
	order := decodeAs[orderResponse](t, raw)
	assert.Equal(t, "500.00", order.Subtotal)
	assert.Equal(t, "510.00", order.Total)
	assert.True(t, strings.HasPrefix(order.Link, "https://wa.me/917575837112?text="))
	assert.Contains(t, order.Message, "- Wireless Mouse (₹500.00) (Qty: 1)")

	code, raw = c.do(http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeAs[cartv1.Cart](t, raw).Lines)
}

func TestRouter_Probes(t *testing.T) {
	c := newTestServer(t, func(context.Context) error { return errors.New("redis down") })

	code, _ := c.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	ok := newTestServer(t, nil)
	code, _ = ok.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, code)
}
