package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/pkg/core/apperror"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "rallyscore.v1.RallyService"

// RallyServer is the server API of the rally service. Messages are
// google.protobuf.Struct values carrying the JSON shapes of the HTTP API.
type RallyServer interface {
	ResolveRally(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	NewMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ApplyRally(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UndoRally(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RallyServiceDesc describes RallyService for grpc.Server.RegisterService
var RallyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RallyServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ResolveRally", RallyServer.ResolveRally),
		unaryMethod("NewMatch", RallyServer.NewMatch),
		unaryMethod("GetMatch", RallyServer.GetMatch),
		unaryMethod("ApplyRally", RallyServer.ApplyRally),
		unaryMethod("UndoRally", RallyServer.UndoRally),
		unaryMethod("History", RallyServer.History),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rallyscore/v1/rally.proto",
}

type unaryCall func(RallyServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RallyServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(RallyServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RegisterRallyServer registers the rally service on a gRPC server
func RegisterRallyServer(s grpc.ServiceRegistrar, srv RallyServer) {
	s.RegisterService(&RallyServiceDesc, srv)
}

// GRPCService implements RallyServer on top of the match sessions
type GRPCService struct {
	sessions Sessions
}

// NewGRPCService creates the gRPC rally service
func NewGRPCService(sessions Sessions) *GRPCService {
	return &GRPCService{sessions: sessions}
}

// ResolveRally resolves a rally against a caller-held state. Notation
// errors are returned in the Fail branch of the envelope, not as status.
func (g *GRPCService) ResolveRally(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ResolveRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return toStruct(resolve(g.sessions.Notation(), in))
}

// NewMatch creates a stored match
func (g *GRPCService) NewMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in service.NewMatchRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	m, err := g.sessions.NewMatch(ctx, in)
	if err != nil {
		return nil, err
	}
	return toStruct(m)
}

// GetMatch returns a stored match
func (g *GRPCService) GetMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in MatchRequest
	if err := decodeMatch(req, &in); err != nil {
		return nil, err
	}
	m, err := g.sessions.Get(ctx, in.MatchID)
	if err != nil {
		return nil, err
	}
	return toStruct(m)
}

// ApplyRally adds a rally to a stored match
func (g *GRPCService) ApplyRally(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ApplyRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	resp, err := apply(ctx, g.sessions, in)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// UndoRally removes the last rally of a match
func (g *GRPCService) UndoRally(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in MatchRequest
	if err := decodeMatch(req, &in); err != nil {
		return nil, err
	}
	state, err := g.sessions.Undo(ctx, in.MatchID)
	if err != nil {
		return nil, err
	}
	return toStruct(state)
}

// History lists the rallies of a match under the "rallies" key
func (g *GRPCService) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in MatchRequest
	if err := decodeMatch(req, &in); err != nil {
		return nil, err
	}
	rallies, err := g.sessions.History(ctx, in.MatchID)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]interface{}{"rallies": rallies})
}

func decodeMatch(req *structpb.Struct, in *MatchRequest) error {
	if err := fromStruct(req, in); err != nil {
		return err
	}
	return requireMatchID(*in)
}

// toStruct converts v to a Struct through its JSON encoding
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to encode response").WithCode(apperror.CodeInternal)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperror.Wrap(err, "response is not an object").WithCode(apperror.CodeInternal)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to build struct").WithCode(apperror.CodeInternal)
	}
	return s, nil
}

// fromStruct decodes a Struct into v through its JSON encoding
func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return apperror.Wrap(err, "failed to read request").WithCode(apperror.CodeInvalidInput)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperror.Wrap(err, "invalid request").WithCode(apperror.CodeInvalidInput)
	}
	return nil
}
