package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"foodbot/command"
)

// Client calls foodbot.v1.FoodBot.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Handle(ctx context.Context, msg command.Message, opts ...grpc.CallOption) ([]command.Reply, error) {
	req, err := structpb.NewStruct(map[string]any{
		"user":   msg.User,
		"text":   msg.Text,
		"direct": msg.Direct,
	})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, handleFullMethod, req, out, opts...); err != nil {
		return nil, err
	}

	var replies []command.Reply
	for _, v := range out.GetFields()["replies"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		replies = append(replies, command.Reply{
			Text:    f["text"].GetStringValue(),
			Mention: f["mention"].GetBoolValue(),
		})
	}
	return replies, nil
}
