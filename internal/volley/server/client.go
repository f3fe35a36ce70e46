package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/msto63/rallyscore/internal/volley"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/notation"
	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/internal/volley/store"
)

// RallyClient is a typed client for RallyService
type RallyClient struct {
	conn grpc.ClientConnInterface
}

// NewRallyClient creates a client on an existing connection
func NewRallyClient(conn grpc.ClientConnInterface) *RallyClient {
	return &RallyClient{conn: conn}
}

func (c *RallyClient) invoke(ctx context.Context, method string, in, out interface{}) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

// ResolveRally resolves a rally against state; nil state means a new match
func (c *RallyClient) ResolveRally(ctx context.Context, rally string, state *match.MatchState) (volley.Result, error) {
	var out volley.Result
	err := c.invoke(ctx, "ResolveRally", ResolveRequest{Rally: rally, State: state}, &out)
	return out, err
}

// NewMatch creates a stored match
func (c *RallyClient) NewMatch(ctx context.Context, req service.NewMatchRequest) (*store.Match, error) {
	out := new(store.Match)
	if err := c.invoke(ctx, "NewMatch", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMatch returns a stored match
func (c *RallyClient) GetMatch(ctx context.Context, id string) (*store.Match, error) {
	out := new(store.Match)
	if err := c.invoke(ctx, "GetMatch", MatchRequest{MatchID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Applied is the client view of an applied rally. The rally verdict is
// kept as raw JSON.
type Applied struct {
	MatchID  string           `json:"matchId"`
	Seq      int              `json:"seq"`
	Notation string           `json:"notation"`
	Rally    json.RawMessage  `json:"rally"`
	State    match.MatchState `json:"state"`
}

// ApplyRally adds a rally to a stored match. A notation failure is returned
// as the *notation.Reason error.
func (c *RallyClient) ApplyRally(ctx context.Context, id, rally string) (*Applied, error) {
	var out struct {
		Ok   *Applied         `json:"Ok,omitempty"`
		Fail *notation.Reason `json:"Fail,omitempty"`
	}
	if err := c.invoke(ctx, "ApplyRally", ApplyRequest{MatchID: id, Rally: rally}, &out); err != nil {
		return nil, err
	}
	if out.Fail != nil {
		return nil, out.Fail
	}
	if out.Ok == nil {
		return nil, volley.ErrEmptyResult
	}
	return out.Ok, nil
}

// UndoRally removes the last rally of a match
func (c *RallyClient) UndoRally(ctx context.Context, id string) (match.MatchState, error) {
	var out match.MatchState
	err := c.invoke(ctx, "UndoRally", MatchRequest{MatchID: id}, &out)
	return out, err
}

// History lists the rallies of a match
func (c *RallyClient) History(ctx context.Context, id string) ([]*store.RallyRecord, error) {
	var out struct {
		Rallies []*store.RallyRecord `json:"rallies"`
	}
	err := c.invoke(ctx, "History", MatchRequest{MatchID: id}, &out)
	return out.Rallies, err
}
