package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "recipes.v1.RecipeCatalog"

	getRecipeMethod     = "/" + ServiceName + "/GetRecipe"
	searchRecipesMethod = "/" + ServiceName + "/SearchRecipes"
)

// RecipeCatalogServer is the read-only recipe catalog. Messages are well-known protobuf types so
// no generated code is needed.
type RecipeCatalogServer interface {
	GetRecipe(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	SearchRecipes(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

var RecipeCatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecipeCatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetRecipe", Handler: getRecipeHandler},
		{MethodName: "SearchRecipes", Handler: searchRecipesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "recipes/v1/catalog.proto",
}

func RegisterRecipeCatalogServer(s grpc.ServiceRegistrar, srv RecipeCatalogServer) {
	s.RegisterService(&RecipeCatalogServiceDesc, srv)
}

func getRecipeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecipeCatalogServer).GetRecipe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getRecipeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecipeCatalogServer).GetRecipe(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func searchRecipesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecipeCatalogServer).SearchRecipes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: searchRecipesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecipeCatalogServer).SearchRecipes(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type RecipeCatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewRecipeCatalogClient(cc grpc.ClientConnInterface) *RecipeCatalogClient {
	return &RecipeCatalogClient{cc: cc}
}

func (c *RecipeCatalogClient) GetRecipe(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getRecipeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecipeCatalogClient) SearchRecipes(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, searchRecipesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
