package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront-cart/internal/adapter/catalog"
	"github.com/rl1809/storefront-cart/internal/core/service"
	"github.com/rl1809/storefront-cart/internal/port"
)

const (
	CartServiceName = "storefront.cart.v1.CartService"
	codecName       = "json"
)

// jsonCodec lets the cart service speak gRPC without generated protobuf
// types. Clients select it with grpc.CallContentSubtype("json").
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                               { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type GetCartRequest struct{}

type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type UpdateQuantityRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type RemoveItemRequest struct {
	ProductID int64 `json:"product_id"`
}

type ClearCartRequest struct{}

type CartResponse struct {
	Cart CartView `json:"cart"`
}

type CartServiceServer interface {
	GetCart(context.Context, *GetCartRequest) (*CartResponse, error)
	AddItem(context.Context, *AddItemRequest) (*CartResponse, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartResponse, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartResponse, error)
	ClearCart(context.Context, *ClearCartRequest) (*CartResponse, error)
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: CartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("GetCart", CartServiceServer.GetCart),
		unaryMethod("AddItem", CartServiceServer.AddItem),
		unaryMethod("UpdateQuantity", CartServiceServer.UpdateQuantity),
		unaryMethod("RemoveItem", CartServiceServer.RemoveItem),
		unaryMethod("ClearCart", CartServiceServer.ClearCart),
	},
	Streams: []grpc.StreamDesc{},
}

func unaryMethod[Req any](name string, call func(CartServiceServer, context.Context, *Req) (*CartResponse, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + CartServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CartServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

type GRPCHandler struct {
	cart    *service.CartService
	catalog port.Catalog
}

func NewGRPCHandler(cart *service.CartService, catalog port.Catalog) *GRPCHandler {
	return &GRPCHandler{cart: cart, catalog: catalog}
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *GetCartRequest) (*CartResponse, error) {
	return &CartResponse{Cart: newCartView(h.cart)}, nil
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	if req.ProductID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "product_id must be positive")
	}
	quantity := int(req.Quantity)
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, status.Error(codes.InvalidArgument, "quantity must be positive")
	}

	product, err := h.catalog.FetchProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, catalogStatus(err)
	}

	h.cart.AddToCart(ctx, product, quantity)
	return &CartResponse{Cart: newCartView(h.cart)}, nil
}

func (h *GRPCHandler) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
	h.cart.UpdateQuantity(ctx, req.ProductID, int(req.Quantity))
	return &CartResponse{Cart: newCartView(h.cart)}, nil
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	h.cart.RemoveFromCart(ctx, req.ProductID)
	return &CartResponse{Cart: newCartView(h.cart)}, nil
}

func (h *GRPCHandler) ClearCart(ctx context.Context, req *ClearCartRequest) (*CartResponse, error) {
	h.cart.ClearCart(ctx)
	return &CartResponse{Cart: newCartView(h.cart)}, nil
}

func catalogStatus(err error) error {
	var httpErr *catalog.HTTPError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return status.Error(codes.NotFound, "product not found")
	case errors.Is(err, catalog.ErrNetwork), errors.As(err, &httpErr):
		log.Printf("catalog request failed: %v", err)
		return status.Error(codes.Unavailable, "failed to fetch product")
	default:
		log.Printf("catalog request failed: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// CartServiceClient calls a remote cart service over the JSON codec.
type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

func (c *CartServiceClient) invoke(ctx context.Context, method string, in interface{}) (*CartResponse, error) {
	out := new(CartResponse)
	err := c.cc.Invoke(ctx, "/"+CartServiceName+"/"+method, in, out, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) GetCart(ctx context.Context) (*CartResponse, error) {
	return c.invoke(ctx, "GetCart", &GetCartRequest{})
}

func (c *CartServiceClient) AddItem(ctx context.Context, productID int64, quantity int32) (*CartResponse, error) {
	return c.invoke(ctx, "AddItem", &AddItemRequest{ProductID: productID, Quantity: quantity})
}

func (c *CartServiceClient) UpdateQuantity(ctx context.Context, productID int64, quantity int32) (*CartResponse, error) {
	return c.invoke(ctx, "UpdateQuantity", &UpdateQuantityRequest{ProductID: productID, Quantity: quantity})
}

func (c *CartServiceClient) RemoveItem(ctx context.Context, productID int64) (*CartResponse, error) {
	return c.invoke(ctx, "RemoveItem", &RemoveItemRequest{ProductID: productID})
}

func (c *CartServiceClient) ClearCart(ctx context.Context) (*CartResponse, error) {
	return c.invoke(ctx, "ClearCart", &ClearCartRequest{})
}
