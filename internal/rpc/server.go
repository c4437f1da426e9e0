package rpc

import (
	"context"
	"encoding/json"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/models"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

var Module = fx.Options(
	fx.Provide(NewCatalogServer, NewGRPCServer),
	fx.Invoke(func(*grpc.Server) {}),
)

type CatalogServer struct {
	recipes *service.Recipes
	logger  *zap.SugaredLogger
}

func NewCatalogServer(recipes *service.Recipes, logger *zap.SugaredLogger) *CatalogServer {
	return &CatalogServer{recipes: recipes, logger: logger.Named("grpc")}
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, catalog *CatalogServer) *grpc.Server {
	grpcServer, healthServer := newGRPCServer(catalog)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCListen())
			if err != nil {
				return errors.Wrap(err, "listen grpc")
			}
			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					catalog.logger.Errorw("failed to serve", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			catalog.logger.Info("Stopping GRPC server.")
			healthServer.Shutdown()
			grpcServer.GracefulStop()
			return nil
		},
	})

	return grpcServer
}

func newGRPCServer(catalog *CatalogServer) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(catalog.logCalls))
	RegisterRecipeCatalogServer(grpcServer, catalog)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer, healthServer
}

func (s *CatalogServer) GetRecipe(ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	recipe, err := s.recipes.Get(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}

	out := &structpb.Struct{}
	if err := viewToProto(models.NewRecipeResp(recipe), out); err != nil {
		return nil, s.toStatus(err)
	}
	return out, nil
}

// SearchRecipes reads the optional "ingredient" and "title" string fields of the request.
func (s *CatalogServer) SearchRecipes(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	fields := in.GetFields()
	recipes, err := s.recipes.Search(ctx, fields["ingredient"].GetStringValue(), fields["title"].GetStringValue())
	if err != nil {
		return nil, s.toStatus(err)
	}

	out := &structpb.ListValue{}
	if err := viewToProto(models.NewRecipeListResp(recipes), out); err != nil {
		return nil, s.toStatus(err)
	}
	return out, nil
}

func (s *CatalogServer) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	s.logger.Infow("call", "method", info.FullMethod, "code", status.Code(err))
	return resp, err
}

// viewToProto renders a view struct through its JSON shape so both transports agree on field names.
func viewToProto(view interface{}, out proto.Message) error {
	b, err := json.Marshal(view)
	if err != nil {
		return errors.Wrap(err, "marshal view")
	}
	if err := protojson.Unmarshal(b, out); err != nil {
		return errors.Wrap(err, "unmarshal view")
	}
	return nil
}

func (s *CatalogServer) toStatus(err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		s.logger.Errorw("call failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}

	code := codes.Internal
	switch se.Kind {
	case service.KindValidation:
		code = codes.InvalidArgument
	case service.KindUnauthorized:
		code = codes.Unauthenticated
	case service.KindForbidden:
		code = codes.PermissionDenied
	case service.KindNotFound:
		code = codes.NotFound
	case service.KindConflict:
		code = codes.AlreadyExists
	}
	return status.Error(code, se.Message)
}
