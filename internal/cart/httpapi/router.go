// Package httpapi serves the cart and checkout over JSON REST. Cart calls go
// through the same service contract the gRPC transport exposes, so both
// surfaces share validation and error mapping.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	cartv1 "github.com/dwikikusuma/storefront-cart/api/cart/v1"
	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/auth"
	"github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const (
	SessionHeader = "X-Session-ID"
	maxBodyBytes  = 1 << 20
)

type Checkout interface {
	Place(ctx context.Context, sessionID string, form domain.Form) (domain.Order, error)
}

type Deps struct {
	Cart     cartv1.CartServiceServer
	Checkout Checkout
	Verifier *auth.TokenVerifier
	Log      *slog.Logger
	// Ready reports whether backing stores are reachable. Nil means always
	// ready.
	Ready func(context.Context) error
}

type handler struct {
	Deps
}

func NewRouter(d Deps) *mux.Router {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Verifier == nil {
		d.Verifier = auth.NewTokenVerifier(nil)
	}
	h := &handler{Deps: d}

	r := mux.NewRouter()
	r.Use(logRequests(d.Log))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate(d.Verifier))
	api.HandleFunc("/sessions", h.createSession).Methods(http.MethodPost)
	api.HandleFunc("/cart", h.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.clearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", h.addItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", h.setQuantity).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{id}", h.removeItem).Methods(http.MethodDelete)
	api.HandleFunc("/cart/notifications", h.listNotifications).Methods(http.MethodGet)
	api.HandleFunc("/cart/notifications/{id}", h.dismissNotification).Methods(http.MethodDelete)
	api.HandleFunc("/checkout", h.checkout).Methods(http.MethodPost)
	return r
}

func (h *handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ready(ctx); err != nil {
			h.Log.Warn("not ready", slog.Any("err", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handler) createSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": app.NewSessionID()})
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Cart.GetCart(r.Context(), &cartv1.SessionRequest{SessionID: sessionID(r)})
	respond(w, cart, err)
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Cart.ClearCart(r.Context(), &cartv1.SessionRequest{SessionID: sessionID(r)})
	respond(w, cart, err)
}

type productBody struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
}

type addItemBody struct {
	Product  productBody `json:"product"`
	Quantity int32       `json:"quantity"`
}

func (h *handler) addItem(w http.ResponseWriter, r *http.Request) {
	var body addItemBody
	if !decode(w, r, &body) {
		return
	}
	if body.Product.Price == nil {
		badRequest(w, "product price is required")
		return
	}

	cart, err := h.Cart.AddItem(r.Context(), &cartv1.AddItemRequest{
		SessionID: sessionID(r),
		Product: cartv1.Product{
			ID:          body.Product.ID,
			Title:       body.Product.Title,
			Price:       body.Product.Price.String(),
			Image:       body.Product.Image,
			Category:    body.Product.Category,
			Description: body.Product.Description,
		},
		Quantity: body.Quantity,
	})
	respond(w, cart, err)
}

type quantityBody struct {
	Quantity int32 `json:"quantity"`
}

func (h *handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var body quantityBody
	if !decode(w, r, &body) {
		return
	}

	cart, err := h.Cart.SetItemQuantity(r.Context(), &cartv1.SetItemQuantityRequest{
		SessionID: sessionID(r),
		ProductID: mux.Vars(r)["id"],
		Quantity:  body.Quantity,
	})
	respond(w, cart, err)
}

func (h *handler) removeItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Cart.RemoveItem(r.Context(), &cartv1.RemoveItemRequest{
		SessionID: sessionID(r),
		ProductID: mux.Vars(r)["id"],
	})
	respond(w, cart, err)
}

func (h *handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Cart.ListNotifications(r.Context(), &cartv1.SessionRequest{SessionID: sessionID(r)})
	respond(w, notes, err)
}

func (h *handler) dismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		badRequest(w, "notification id must be a positive integer")
		return
	}

	notes, err := h.Cart.DismissNotification(r.Context(), &cartv1.DismissNotificationRequest{
		SessionID:      sessionID(r),
		NotificationID: id,
	})
	respond(w, notes, err)
}

type orderResponse struct {
	Message  string `json:"message"`
	Link     string `json:"link"`
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	var form domain.Form
	if !decode(w, r, &form) {
		return
	}

	order, err := h.Checkout.Place(r.Context(), sessionID(r), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{
		Message:  order.Message,
		Link:     order.Link,
		Subtotal: order.Quote.Subtotal.StringFixed(2),
		Shipping: order.Quote.Shipping.StringFixed(2),
		Total:    order.Quote.Total.StringFixed(2),
	})
}

func sessionID(r *http.Request) string {
	return r.Header.Get(SessionHeader)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
