package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName      = "foodbot.v1.FoodBot"
	handleFullMethod = "/" + ServiceName + "/Handle"
)

// FoodBotServer is the server API of foodbot.v1.FoodBot.
//
// Messages are google.protobuf.Struct:
//
//	request  {"user": string, "text": string, "direct": bool}
//	response {"replies": [{"text": string, "mention": bool}]}
type FoodBotServer interface {
	Handle(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterFoodBotServer(s grpc.ServiceRegistrar, srv FoodBotServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FoodBotServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Handle",
			Handler:    handleHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodbot/v1/foodbot.proto",
}

func handleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FoodBotServer).Handle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: handleFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FoodBotServer).Handle(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
