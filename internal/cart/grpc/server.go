package grpc

import (
	"context"
	"errors"
	"strings"

	cartv1 "github.com/dwikikusuma/storefront-cart/api/cart/v1"
	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Server struct {
	sessions *app.Sessions
}

var _ cartv1.CartServiceServer = (*Server)(nil)

func NewServer(sessions *app.Sessions) *Server {
	return &Server{sessions: sessions}
}

func (s *Server) GetCart(ctx context.Context, req *cartv1.SessionRequest) (*cartv1.Cart, error) {
	m, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, MapErr(err)
	}
	return toProto(m), nil
}

func (s *Server) AddItem(ctx context.Context, req *cartv1.AddItemRequest) (*cartv1.Cart, error) {
	p, err := fromProtoProduct(req.Product)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid product: %v", err)
	}

	m, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, MapErr(err)
	}

	if err := m.Add(ctx, p, int(req.Quantity)); err != nil {
		return nil, MapErr(err)
	}
	return toProto(m), nil
}

func (s *Server) RemoveItem(ctx context.Context, req *cartv1.RemoveItemRequest) (*cartv1.Cart, error) {
	m, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, MapErr(err)
	}

	if err := m.Remove(ctx, req.ProductID); err != nil {
		return nil, MapErr(err)
	}
	return toProto(m), nil
}

func (s *Server) SetItemQuantity(ctx context.Context, req *cartv1.SetItemQuantityRequest) (*cartv1.Cart, error) {
	m, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, MapErr(err)
	}

	if err := m.UpdateQuantity(ctx, req.ProductID, int(req.Quantity)); err != nil {
		return nil, MapErr(err)
	}
	return toProto(m), nil
}

func (s *Server) ClearCart(ctx context.Context, req *cartv1.SessionRequest) (*cartv1.Cart, error) {
	m, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, MapErr(err)
	}

	if err := m.Clear(ctx); err != nil {
		return nil, MapErr(err)
	}
	return toProto(m), nil
}

func (s *Server) ListNotifications(ctx context.Context, req *cartv1.SessionRequest) (*cartv1.NotificationList, error) {
	m, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, MapErr(err)
	}
	return toProtoNotifications(m.Notifications()), nil
}

func (s *Server) DismissNotification(ctx context.Context, req *cartv1.DismissNotificationRequest) (*cartv1.NotificationList, error) {
	m, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, MapErr(err)
	}
	m.DismissNotification(req.NotificationID)
	return toProtoNotifications(m.Notifications()), nil
}

// MapErr translates cart errors into gRPC status errors.
func MapErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, app.ErrInvalidQuantity),
		errors.Is(err, app.ErrInvalidSession):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrNotAuthenticated):
		return status.Error(codes.Unauthenticated, "please sign in to add products to cart")
	case errors.Is(err, app.ErrPersistence):
		return status.Error(codes.Unavailable, "cart storage unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func fromProtoProduct(p cartv1.Product) (domain.Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:          strings.TrimSpace(p.ID),
		Title:       p.Title,
		Price:       price,
		Image:       p.Image,
		Category:    p.Category,
		Description: p.Description,
	}, nil
}

func toProto(m *app.Manager) *cartv1.Cart {
	cart := m.Cart()
	lines := make([]cartv1.CartLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, cartv1.CartLine{
			Product: cartv1.Product{
				ID:          l.ID,
				Title:       l.Title,
				Price:       l.Price.String(),
				Image:       l.Image,
				Category:    l.Category,
				Description: l.Description,
			},
			Quantity:  int32(l.Quantity),
			LineTotal: l.Total().String(),
		})
	}

	return &cartv1.Cart{
		SessionID: m.SessionID(),
		Lines:     lines,
		Count:     int32(cart.Count()),
		Subtotal:  cart.Subtotal().String(),
	}
}

func toProtoNotifications(notes []domain.Notification) *cartv1.NotificationList {
	out := make([]cartv1.Notification, 0, len(notes))
	for _, n := range notes {
		out = append(out, cartv1.Notification{
			ID:              n.ID,
			Message:         n.Message,
			Kind:            n.Kind.String(),
			CreatedAtUnixMs: n.CreatedAt.UnixMilli(),
		})
	}
	return &cartv1.NotificationList{Notifications: out}
}
