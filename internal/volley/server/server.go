// Package server exposes the scorekeeper over gRPC and WebSocket. Both
// transports speak the same JSON shapes: the Ok/Fail result envelope for
// rally resolution, and the match and outcome records of the session
// service.
package server

import (
	"context"
	"errors"

	"github.com/msto63/rallyscore/internal/volley"
	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/notation"
	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/internal/volley/store"
	"github.com/msto63/rallyscore/pkg/core/apperror"
)

// Sessions is the part of the match service the transports need
type Sessions interface {
	Notation() domain.Config
	NewMatch(ctx context.Context, req service.NewMatchRequest) (*store.Match, error)
	Get(ctx context.Context, id string) (*store.Match, error)
	Apply(ctx context.Context, id, text string) (*service.Outcome, error)
	History(ctx context.Context, id string) ([]*store.RallyRecord, error)
	Undo(ctx context.Context, id string) (match.MatchState, error)
}

// ResolveRequest asks for a stateless resolution against a caller-held state
type ResolveRequest struct {
	Rally string            `json:"rally"`
	State *match.MatchState `json:"state,omitempty"`
}

// ApplyRequest adds a rally to a stored match
type ApplyRequest struct {
	MatchID string `json:"matchId"`
	Rally   string `json:"rally"`
}

// MatchRequest names a stored match
type MatchRequest struct {
	MatchID string `json:"matchId"`
}

// ApplyResponse is either an outcome or a notation failure
type ApplyResponse struct {
	Outcome *service.Outcome `json:"Ok,omitempty"`
	Fail    *notation.Reason `json:"Fail,omitempty"`
}

// resolve runs the stateless entry point; a missing state means a new match
func resolve(cfg domain.Config, req ResolveRequest) volley.Result {
	state := match.New()
	if req.State != nil {
		state = *req.State
		if state.AwayTeam.PlayerStats == nil || state.HomeTeam.PlayerStats == nil {
			state = state.Clone()
			if state.AwayTeam.PlayerStats == nil {
				state.AwayTeam.PlayerStats = match.StatsByPlayer{}
			}
			if state.HomeTeam.PlayerStats == nil {
				state.HomeTeam.PlayerStats = match.StatsByPlayer{}
			}
		}
	}
	return volley.Resolve(cfg, req.Rally, state)
}

// apply runs a session rally and folds notation failures into the response
func apply(ctx context.Context, sessions Sessions, req ApplyRequest) (ApplyResponse, error) {
	if req.MatchID == "" {
		return ApplyResponse{}, apperror.New("matchId is required").WithCode(apperror.CodeInvalidInput)
	}

	out, err := sessions.Apply(ctx, req.MatchID, req.Rally)
	if err != nil {
		if r, ok := notation.AsReason(err); ok && apperror.HasCode(err, apperror.CodeRallySyntax) {
			return ApplyResponse{Fail: r}, nil
		}
		return ApplyResponse{}, err
	}
	return ApplyResponse{Outcome: out}, nil
}

func requireMatchID(req MatchRequest) error {
	if req.MatchID == "" {
		return apperror.New("matchId is required").WithCode(apperror.CodeInvalidInput)
	}
	return nil
}

// errorCode returns the apperror code of err, or INTERNAL
func errorCode(err error) apperror.Code {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return apperror.CodeInternal
}
