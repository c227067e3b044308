// Package cartv1 defines the cart.v1.CartService gRPC contract. Messages are
// plain structs carried by a JSON codec, selected with the "json" content
// subtype.
package cartv1

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const ServiceName = "cart.v1.CartService"

type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(Codec{})
}

type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

type CartLine struct {
	Product   Product `json:"product"`
	Quantity  int32   `json:"quantity"`
	LineTotal string  `json:"line_total"`
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Count     int32      `json:"count"`
	Subtotal  string     `json:"subtotal"`
}

type Notification struct {
	ID              uint64 `json:"id"`
	Message         string `json:"message"`
	Kind            string `json:"kind"`
	CreatedAtUnixMs int64  `json:"created_at_unix_ms"`
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type AddItemRequest struct {
	SessionID string  `json:"session_id"`
	Product   Product `json:"product"`
	Quantity  int32   `json:"quantity"`
}

type RemoveItemRequest struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
}

type SetItemQuantityRequest struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type DismissNotificationRequest struct {
	SessionID      string `json:"session_id"`
	NotificationID uint64 `json:"notification_id"`
}

type CartServiceServer interface {
	GetCart(context.Context, *SessionRequest) (*Cart, error)
	AddItem(context.Context, *AddItemRequest) (*Cart, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*Cart, error)
	SetItemQuantity(context.Context, *SetItemQuantityRequest) (*Cart, error)
	ClearCart(context.Context, *SessionRequest) (*Cart, error)
	ListNotifications(context.Context, *SessionRequest) (*NotificationList, error)
	DismissNotification(context.Context, *DismissNotificationRequest) (*NotificationList, error)
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetCart", CartServiceServer.GetCart),
		unary("AddItem", CartServiceServer.AddItem),
		unary("RemoveItem", CartServiceServer.RemoveItem),
		unary("SetItemQuantity", CartServiceServer.SetItemQuantity),
		unary("ClearCart", CartServiceServer.ClearCart),
		unary("ListNotifications", CartServiceServer.ListNotifications),
		unary("DismissNotification", CartServiceServer.DismissNotification),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/cart/v1/cart.go",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](method string, call func(CartServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CartServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

func (c *CartServiceClient) GetCart(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*Cart, error) {
	out := new(Cart)
	if err := c.invoke(ctx, "GetCart", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*Cart, error) {
	out := new(Cart)
	if err := c.invoke(ctx, "AddItem", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*Cart, error) {
	out := new(Cart)
	if err := c.invoke(ctx, "RemoveItem", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) SetItemQuantity(ctx context.Context, in *SetItemQuantityRequest, opts ...grpc.CallOption) (*Cart, error) {
	out := new(Cart)
	if err := c.invoke(ctx, "SetItemQuantity", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) ClearCart(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*Cart, error) {
	out := new(Cart)
	if err := c.invoke(ctx, "ClearCart", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) ListNotifications(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*NotificationList, error) {
	out := new(NotificationList)
	if err := c.invoke(ctx, "ListNotifications", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) DismissNotification(ctx context.Context, in *DismissNotificationRequest, opts ...grpc.CallOption) (*NotificationList, error) {
	out := new(NotificationList)
	if err := c.invoke(ctx, "DismissNotification", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(Codec{}.Name())}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}
