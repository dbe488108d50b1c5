package grpcserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"foodbot/command"
	"foodbot/infra/logging"
)

// Server adapts the command handler to gRPC.
type Server struct {
	handler *command.Handler
	log     *zap.Logger
}

func NewServer(h *command.Handler, log *zap.Logger) *Server {
	return &Server{handler: h, log: logging.OrNop(log)}
}

// NewGRPCServer returns a grpc.Server with s registered and request
// logging installed.
func NewGRPCServer(s *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.logUnary))
	g := grpc.NewServer(opts...)
	RegisterFoodBotServer(g, s)
	return g
}

// -------------------- Commands --------------------

func (s *Server) Handle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	msg, err := toMessage(req)
	if err != nil {
		return nil, err
	}

	replies, err := s.handler.Handle(ctx, msg)
	if err != nil && !errors.Is(err, command.ErrNoReply) {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return fromReplies(replies)
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := next(ctx, req)
	s.log.Info("grpc",
		zap.String("method", info.FullMethod),
		zap.Duration("took", time.Since(start)),
		zap.Stringer("code", status.Code(err)),
	)
	return resp, err
}

// -------------------- Converters --------------------

func toMessage(req *structpb.Struct) (command.Message, error) {
	fields := req.GetFields()
	msg := command.Message{
		User:   fields["user"].GetStringValue(),
		Text:   fields["text"].GetStringValue(),
		Direct: fields["direct"].GetBoolValue(),
	}
	if msg.Text == "" {
		return command.Message{}, status.Error(codes.InvalidArgument, "text is required")
	}
	return msg, nil
}

func fromReplies(replies []command.Reply) (*structpb.Struct, error) {
	list := make([]any, 0, len(replies))
	for _, r := range replies {
		list = append(list, map[string]any{
			"text":    r.Text,
			"mention": r.Mention,
		})
	}
	out, err := structpb.NewStruct(map[string]any{"replies": list})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
