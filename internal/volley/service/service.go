// Package service manages scorekeeping sessions: it creates matches, folds
// rallies into their state through the pure core and keeps the rally
// history in a MatchStore.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/msto63/rallyscore/internal/volley"
	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/notation"
	"github.com/msto63/rallyscore/internal/volley/store"
	"github.com/msto63/rallyscore/pkg/core/apperror"
	"github.com/msto63/rallyscore/pkg/core/cache"
	"github.com/msto63/rallyscore/pkg/core/logging"
)

// Config holds service configuration
type Config struct {
	Notation domain.Config
	Logger   *logging.Logger
	Cache    cache.Config
}

// ErrMatchFinished rejects rallies for a match that has a winner
var ErrMatchFinished = apperror.New("match is finished").WithCode(apperror.CodeMatchFinished)

// Service is the match session service
type Service struct {
	store    store.MatchStore
	notation domain.Config
	logger   *logging.Logger
	matches  *cache.Cache[store.Match]

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewMatchRequest describes a match to create
type NewMatchRequest struct {
	Name     string `json:"name"`
	AwayName string `json:"awayName"`
	HomeName string `json:"homeName"`
}

// Outcome is the result of applying one rally to a match. Notation is the
// rally rendered with the configured prefixes.
type Outcome struct {
	MatchID  string           `json:"matchId"`
	Seq      int              `json:"seq"`
	Notation string           `json:"notation"`
	Rally    domain.Rally     `json:"rally"`
	State    match.MatchState `json:"state"`
}

// NewService creates a new match service
func NewService(s store.MatchStore, cfg Config) (*Service, error) {
	if s == nil {
		return nil, apperror.New("match store is required").WithCode(apperror.CodeInvalidConfig)
	}
	if cfg.Notation == (domain.Config{}) {
		cfg.Notation = domain.DefaultConfig()
	}
	if err := cfg.Notation.Validate(); err != nil {
		return nil, apperror.Wrap(err, "invalid notation config").WithCode(apperror.CodeInvalidConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("match-service")
	}
	if cfg.Cache == (cache.Config{}) {
		cfg.Cache = cache.DefaultConfig()
	}

	return &Service{
		store:    s,
		notation: cfg.Notation,
		logger:   logger,
		matches:  cache.New[store.Match](cfg.Cache),
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Notation returns the notation configuration in use
func (s *Service) Notation() domain.Config {
	return s.notation
}

// lock serializes read-modify-write sequences on one match
func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// NewMatch creates a match in its opening state
func (s *Service) NewMatch(ctx context.Context, req NewMatchRequest) (*store.Match, error) {
	m := &store.Match{
		ID:       uuid.New().String(),
		Name:     req.Name,
		AwayName: req.AwayName,
		HomeName: req.HomeName,
		State:    match.New(),
	}
	if m.AwayName == "" {
		m.AwayName = domain.Away.String()
	}
	if m.HomeName == "" {
		m.HomeName = domain.Home.String()
	}

	if err := s.store.CreateMatch(ctx, m); err != nil {
		return nil, err
	}
	s.matches.Set(m.ID, *m)

	s.logger.Info("Match created", "match_id", m.ID, "name", m.Name)
	return m, nil
}

// Get returns a match, served from the match cache when possible. Cache
// misses load under the match lock so a load never races a write.
func (s *Service) Get(ctx context.Context, id string) (*store.Match, error) {
	if m, ok := s.matches.Get(id); ok {
		return detach(m), nil
	}

	unlock := s.lock(id)
	defer unlock()
	return s.get(ctx, id)
}

// get is Get for callers that hold the match lock
func (s *Service) get(ctx context.Context, id string) (*store.Match, error) {
	m, err := s.matches.GetOrLoad(id, func() (store.Match, error) {
		m, err := s.store.GetMatch(ctx, id)
		if err != nil {
			return store.Match{}, err
		}
		return *m, nil
	})
	if err != nil {
		return nil, err
	}
	return detach(m), nil
}

// detach copies a cached match so callers cannot mutate the cached state
func detach(m store.Match) *store.Match {
	m.State = m.State.Clone()
	return &m
}

// Statistics reports store counters, if the store keeps them, and the
// match cache hit rate
func (s *Service) Statistics(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{}
	if st, ok := s.store.(interface {
		Statistics(ctx context.Context) (map[string]interface{}, error)
	}); ok {
		var err error
		if stats, err = st.Statistics(ctx); err != nil {
			return nil, err
		}
	}

	hits, misses, rate := s.matches.Stats()
	stats["cache_entries"] = s.matches.Len()
	stats["cache_hits"] = hits
	stats["cache_misses"] = misses
	stats["cache_hit_rate"] = rate
	return stats, nil
}

// List returns matches, most recently played first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*store.Match, error) {
	return s.store.ListMatches(ctx, limit, offset)
}

// Delete removes a match and its history
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	s.matches.Delete(id)
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Match deleted", "match_id", id)
	return nil
}

// Apply parses and scores one rally and stores it. A notation error is
// returned as RALLY_SYNTAX wrapping the *notation.Reason; a finished match
// rejects every rally with MATCH_FINISHED.
func (s *Service) Apply(ctx context.Context, id, text string) (*Outcome, error) {
	unlock := s.lock(id)
	defer unlock()

	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.State.Finished() {
		return nil, apperror.Wrap(ErrMatchFinished, "cannot apply rally").WithDetail("match_id", id)
	}

	next, rally, err := volley.ResolveRally(s.notation, text, m.State)
	if err != nil {
		s.logger.Debug("Rally rejected", "match_id", id, "rally", text, "error", err.Error())
		return nil, SyntaxError(err)
	}

	verdict, err := json.Marshal(rally.Who)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to encode verdict").WithCode(apperror.CodeInternal)
	}

	rec := &store.RallyRecord{
		MatchID:  id,
		Notation: canonical(s.notation, rally.Actions),
		PointTo:  rally.Who.PointTo,
		Verdict:  verdict,
		State:    next,
	}
	if err := s.store.AppendRally(ctx, rec); err != nil {
		s.matches.Delete(id)
		return nil, err
	}
	m.State = next.Clone()
	m.Rallies = rec.Seq
	m.UpdatedAt = rec.CreatedAt
	s.matches.Set(id, *m)

	s.logger.Info("Rally applied",
		"match_id", id,
		"seq", rec.Seq,
		"rally", rec.Notation,
		"point_to", rally.Who.PointTo.String(),
		"score", scoreLine(next),
	)
	if next.Finished() {
		s.logger.Info("Match finished", "match_id", id, "sets", setLine(next))
	}

	return &Outcome{MatchID: id, Seq: rec.Seq, Notation: rec.Notation, Rally: rally, State: next}, nil
}

// History returns the stored rallies of a match
func (s *Service) History(ctx context.Context, id string) ([]*store.RallyRecord, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListRallies(ctx, id)
}

// Undo removes the last rally of a match and returns the restored state
func (s *Service) Undo(ctx context.Context, id string) (match.MatchState, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.store.PopRally(ctx, id)
	if err != nil {
		s.matches.Delete(id)
		return match.MatchState{}, err
	}

	// Cache the restored match so no reader sees the popped rally again.
	if m, err := s.store.GetMatch(ctx, id); err == nil {
		s.matches.Set(id, *m)
	} else {
		s.matches.Delete(id)
	}

	s.logger.Info("Rally undone", "match_id", id, "score", scoreLine(state))
	return state, nil
}

// SyntaxError wraps a notation failure as RALLY_SYNTAX. The *notation.Reason
// stays reachable with errors.As.
func SyntaxError(err error) error {
	e := apperror.Wrap(err, "invalid rally").WithCode(apperror.CodeRallySyntax)
	if r, ok := notation.AsReason(err); ok {
		e.WithDetail("kind", string(r.Kind)).WithDetail("location", r.Location)
	}
	return e
}

func canonical(cfg domain.Config, actions []domain.Action) string {
	tokens := make([]string, len(actions))
	for i, a := range actions {
		tokens[i] = a.Notation(cfg)
	}
	return strings.Join(tokens, notation.Separator)
}

func scoreLine(s match.MatchState) string {
	return fmt.Sprintf("%d-%d", s.AwayTeam.Points, s.HomeTeam.Points)
}

func setLine(s match.MatchState) string {
	return fmt.Sprintf("%d-%d", s.AwayTeam.Sets, s.HomeTeam.Sets)
}
