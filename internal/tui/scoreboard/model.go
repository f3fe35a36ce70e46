// ============================================================================
// rallyscore - Volleyball Rally Scorekeeper
// ============================================================================
//
// Package:     scoreboard
// Description: Bubbletea model of the live scorekeeping board
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/notation"
	"github.com/msto63/rallyscore/internal/volley/store"
	"github.com/msto63/rallyscore/pkg/core/apperror"
	"github.com/msto63/rallyscore/pkg/core/version"
)

const (
	historySize = 5
	cmdTimeout  = 5 * time.Second
)

// Config holds board configuration
type Config struct {
	Title    string
	AwayName string
	HomeName string
}

// Model is the main Bubbletea model of the scoreboard
type Model struct {
	// State
	width   int
	busy    bool
	state   match.MatchState
	errLine string
	last    string
	history []string

	// Components
	input  textinput.Model
	scorer Scorer

	// Configuration
	title    string
	awayName string
	homeName string
}

// New creates a new scoreboard model
func New(scorer Scorer, cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "@1SA4 !2R5 !3E !4H1"
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	if cfg.AwayName == "" {
		cfg.AwayName = domain.Away.String()
	}
	if cfg.HomeName == "" {
		cfg.HomeName = domain.Home.String()
	}
	if cfg.Title == "" {
		cfg.Title = "rallyscore"
	}

	return Model{
		state:    match.New(),
		input:    ti,
		scorer:   scorer,
		title:    cfg.Title,
		awayName: cfg.AwayName,
		homeName: cfg.HomeName,
	}
}

// Init loads the opening state
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadState)
}

func (m Model) loadState() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()
	state, err := m.scorer.State(ctx)
	return stateLoadedMsg{state: state, err: err}
}

func (m Model) scoreRally(input string) tea.Cmd {
	scorer := m.scorer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		rally, state, err := scorer.Score(ctx, input)
		return rallyScoredMsg{input: input, rally: rally, state: state, err: err}
	}
}

func (m Model) undo() tea.Cmd {
	scorer := m.scorer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		state, err := scorer.Undo(ctx)
		return undoneMsg{state: state, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateLoadedMsg:
		if msg.err != nil {
			m.errLine = describeError("", msg.err)
			return m, nil
		}
		m.setState(msg.state)
		return m, nil

	case rallyScoredMsg:
		m.busy = false
		if msg.err != nil {
			m.errLine = describeError(msg.input, msg.err)
			return m, nil
		}
		m.errLine = ""
		m.input.SetValue("")
		m.last = describeRally(m.scorer.Notation(), msg.rally)
		m.history = append(m.history, m.last)
		if len(m.history) > historySize {
			m.history = m.history[len(m.history)-historySize:]
		}
		m.setState(msg.state)
		return m, nil

	case undoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errLine = describeError("", msg.err)
			return m, nil
		}
		m.errLine = ""
		m.last = ""
		if len(m.history) > 0 {
			m.history = m.history[:len(m.history)-1]
		}
		m.setState(msg.state)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// setState applies a new state and locks the input once the match is over
func (m *Model) setState(state match.MatchState) {
	m.state = state
	if state.Finished() {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyCtrlZ:
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.undo()

	case tea.KeyEnter:
		if m.busy || m.state.Finished() {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.busy = true
		return m, m.scoreRally(m.input.Value())
	}

	if m.state.Finished() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString(" ")
	b.WriteString(SubtitleStyle.Render("v" + version.Board))
	b.WriteString("\n\n")

	b.WriteString(m.renderScore())
	b.WriteString("\n")

	if m.state.Finished() {
		b.WriteString(FinishedStyle.Render("MATCH FINISHED"))
		b.WriteString("\n")
		b.WriteString(DisabledInputStyle.Render(m.input.View()))
	} else {
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Set %d, first to %d", m.state.SetNumber(), m.state.Ceiling())))
		b.WriteString("\n")
		b.WriteString(InputStyle.Render(m.input.View()))
	}
	b.WriteString("\n")

	if m.errLine != "" {
		b.WriteString(ErrorStyle.Render(m.errLine))
		b.WriteString("\n")
	}

	older := m.history
	if m.last != "" && len(older) > 0 {
		b.WriteString(LastRallyStyle.Render(m.last))
		b.WriteString("\n")
		older = older[:len(older)-1]
	}
	for i := len(older) - 1; i >= 0; i-- {
		b.WriteString(HistoryStyle.Render("  " + older[i]))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("enter: score rally  ctrl+z: undo  esc: quit"))
	return b.String()
}

// renderScore lays out home sets, home points, dash, away points, away sets
func (m Model) renderScore() string {
	home := m.state.HomeTeam
	away := m.state.AwayTeam

	names := lipgloss.JoinHorizontal(lipgloss.Top,
		TeamNameStyle.Render(m.homeName),
		TeamNameStyle.Render(m.awayName),
	)
	score := lipgloss.JoinHorizontal(lipgloss.Center,
		SetsStyle.Render(fmt.Sprintf("%d", home.Sets)),
		PointsStyle.Render(fmt.Sprintf("%d", home.Points)),
		DashStyle.Render("-"),
		PointsStyle.Render(fmt.Sprintf("%d", away.Points)),
		SetsStyle.Render(fmt.Sprintf("%d", away.Sets)),
	)
	return ScorePanelStyle.Render(lipgloss.JoinVertical(lipgloss.Center, names, score))
}

// describeRally summarizes an accepted rally in one line
func describeRally(cfg domain.Config, r domain.Rally) string {
	tokens := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		tokens[i] = a.Notation(cfg)
	}
	line := fmt.Sprintf("Point %s: %s", r.Who.PointTo, strings.Join(tokens, notation.Separator))

	switch {
	case r.Who.Scored != nil:
		line += fmt.Sprintf(" (%s by %c%d)", r.Who.Scored.ActionType.Kind(), cfg.Prefix(r.Who.Scored.Team), r.Who.Scored.Player)
	case r.Who.Faulted != nil:
		line += fmt.Sprintf(" (%s fault by %c%d)", r.Who.Faulted.ActionType.Kind(), cfg.Prefix(r.Who.Faulted.Team), r.Who.Faulted.Player)
	}
	return line
}

// describeError names the offending token of a rejected rally
func describeError(input string, err error) string {
	if r, ok := notation.AsReason(err); ok {
		if r.Kind == notation.KindNoActions {
			return r.ErrorMsg
		}
		tokens := strings.Split(strings.TrimSpace(input), notation.Separator)
		if r.Location >= 0 && r.Location < len(tokens) {
			return fmt.Sprintf("%s (token %d: %q)", r.ErrorMsg, r.Location+1, tokens[r.Location])
		}
		return fmt.Sprintf("%s (token %d)", r.ErrorMsg, r.Location+1)
	}
	if apperror.HasCode(err, apperror.CodeMatchFinished) {
		return "The match is finished"
	}
	if errors.Is(err, store.ErrNoRallies) {
		return "Nothing to undo"
	}
	return err.Error()
}
