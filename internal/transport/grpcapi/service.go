// Package grpcapi exposes game simulations as the gRPC service
// dicesim.v1.Simulator. Requests and responses travel as
// google.protobuf.Struct so no generated stubs are needed; PlayRequest,
// TrialsRequest and their responses describe the fields.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/dicesim/internal/config"
	"github.com/xtding233/dicesim/internal/die"
	"github.com/xtding233/dicesim/internal/game"
	"github.com/xtding233/dicesim/internal/report"
	"github.com/xtding233/dicesim/internal/trials"
)

const (
	ServiceName      = "dicesim.v1.Simulator"
	playMethod       = "/" + ServiceName + "/Play"
	trialsMethod     = "/" + ServiceName + "/Trials"
	defaultMaxRolls  = 1_000_000
	defaultMaxTrials = 10_000
)

// PlayRequest asks for one game to be played.
type PlayRequest struct {
	Game    string `json:"game"`
	Rolls   *int   `json:"rolls,omitempty"` // nil keeps the game's own count
	Seed    string `json:"seed,omitempty"`  // decimal uint64; strings keep all 64 bits
	Top     int    `json:"top,omitempty"`
	Layout  string `json:"layout,omitempty"`
	PerRoll bool   `json:"per_roll,omitempty"`
}

// TrialsRequest asks for a batch of games to be summarized.
type TrialsRequest struct {
	Game   string `json:"game"`
	Goal   string `json:"goal,omitempty"`
	Trials int    `json:"trials"`
	Rolls  *int   `json:"rolls,omitempty"`
	Seed   string `json:"seed,omitempty"`
}

// TrialsResponse is the result of a TrialsRequest. Seed is the base seed the
// trials used, drawn at random when neither the request nor the game set one.
type TrialsResponse struct {
	Game  string       `json:"game"`
	Goal  trials.Goal  `json:"goal"`
	Seed  uint64       `json:"seed,string"`
	Stats trials.Stats `json:"stats"`
}

// SimulatorServer is the server API for dicesim.v1.Simulator.
type SimulatorServer interface {
	Play(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Trials(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes dicesim.v1.Simulator for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Play", Handler: unaryHandler(playMethod, SimulatorServer.Play)},
		{MethodName: "Trials", Handler: unaryHandler(trialsMethod, SimulatorServer.Trials)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dicesim/v1/simulator.proto",
}

type unaryMethod func(SimulatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SimulatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register adds s to a gRPC server.
func Register(gs grpc.ServiceRegistrar, s SimulatorServer) {
	gs.RegisterService(&ServiceDesc, s)
}

// Service implements SimulatorServer over a config.Loader.
type Service struct {
	loader    *config.Loader
	maxRolls  int
	maxTrials int
}

// NewService creates a Service. Non-positive limits fall back to defaults.
func NewService(loader *config.Loader, maxRolls, maxTrials int) *Service {
	if maxRolls <= 0 {
		maxRolls = defaultMaxRolls
	}
	if maxTrials <= 0 {
		maxTrials = defaultMaxTrials
	}
	return &Service{loader: loader, maxRolls: maxRolls, maxTrials: maxTrials}
}

func (s *Service) Play(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req PlayRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	res, err := s.resolve(req.Game, req.Rolls, req.Seed)
	if err != nil {
		return nil, err
	}
	rep, err := report.Play(res, report.Options{
		Top:     req.Top,
		Layout:  game.Layout(req.Layout),
		PerRoll: req.PerRoll,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(rep)
}

func (s *Service) Trials(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req TrialsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if req.Trials < 1 || req.Trials > s.maxTrials {
		return nil, status.Errorf(codes.InvalidArgument, "trials must be in [1, %d]", s.maxTrials)
	}
	goal, err := trials.ParseGoal(req.Goal)
	if err != nil {
		return nil, toStatus(err)
	}
	res, err := s.resolve(req.Game, req.Rolls, req.Seed)
	if err != nil {
		return nil, err
	}
	seed := res.BaseSeed()
	stats, err := trials.Run[string](ctx, res.Build, goal, trials.Params{Rolls: res.Rolls, Trials: req.Trials, Seed: seed}, nil)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(TrialsResponse{Game: req.Game, Goal: goal, Seed: seed, Stats: stats})
}

func (s *Service) resolve(name string, rolls *int, seed string) (config.Resolved, error) {
	var o config.Overrides
	if rolls != nil {
		if *rolls < 1 || *rolls > s.maxRolls {
			return config.Resolved{}, status.Errorf(codes.InvalidArgument, "rolls must be in [1, %d]", s.maxRolls)
		}
		o.Rolls = rolls
	}
	if seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return config.Resolved{}, status.Errorf(codes.InvalidArgument, "invalid seed %q", seed)
		}
		o.Seed = &v
	}
	res, err := s.loader.Load(name, o)
	if err != nil {
		return config.Resolved{}, toStatus(err)
	}
	if res.Rolls > s.maxRolls {
		return config.Resolved{}, status.Errorf(codes.InvalidArgument, "rolls exceed server limit %d", s.maxRolls)
	}
	return res, nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, config.ErrGameNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, die.ErrZeroWeight):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, config.ErrInvalidName),
		errors.Is(err, game.ErrUnknownLayout),
		errors.Is(err, game.ErrInvalidRollCount),
		errors.Is(err, trials.ErrInvalidParams):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// toStruct converts any JSON-encodable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into a JSON-tagged Go value.
func fromStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}
