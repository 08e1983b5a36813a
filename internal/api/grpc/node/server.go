package node

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-node/internal/controller"
	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/logger"
)

// Service abstracts the controller operations the transport layer depends on.
type Service interface {
	Apply(ctx context.Context, cmd home.Command) error
	Snapshot() home.Snapshot
}

// Server implements NodeServiceServer.
type Server struct {
	// service routes commands and reports state.
	service Service
}

var _ NodeServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Write identifies and applies a parameter write.
// Writes to unknown parameters succeed without effect.
func (s *Server) Write(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	write, err := DecodeWrite(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	cmd, err := home.ParseCommand(write.Device, write.Param, write.Value)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logger.InfoKV(ctx, "Write received",
		"device", write.Device, "param", write.Param, "value", write.Value, "actor", write.Actor.String())

	if err = s.service.Apply(ctx, cmd); err != nil {
		if errors.Is(err, controller.ErrHardwareApply) {
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}

		return nil, status.Error(codes.Internal, "unable to apply write")
	}

	return EncodeSnapshot(s.service.Snapshot()), nil
}

// Snapshot returns the current node state.
func (s *Server) Snapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return EncodeSnapshot(s.service.Snapshot()), nil
}
