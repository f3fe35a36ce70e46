package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ActionType is the closed set of things a player can do in a rally.
// Only the types in this package implement it.
type ActionType interface {
	// Code is the notation letter of the action
	Code() rune
	// Kind is the display name of the action
	Kind() string

	modifiers(cfg Config) string
}

// Serve starts every rally
type Serve struct {
	Position ServePosition
	Zone     Zone
}

// Receive is the first contact after a serve
type Receive struct {
	Height Height
	Zone   Zone
}

// Pass is any controlled contact that is not a receive
type Pass struct {
	Height Height
	Zone   Zone
}

// Set prepares an attack
type Set struct{}

// Hit is an attack
type Hit struct {
	Zone Zone
}

// Block is a block attempt. Team is the side named in the block token,
// which is independent of the acting token's prefix.
type Block struct {
	Team Team
	Zone Zone
}

// Freeball is an easy ball sent over the net
type Freeball struct {
	Zone Zone
}

func (Serve) Code() rune    { return 'S' }
func (Receive) Code() rune  { return 'R' }
func (Pass) Code() rune     { return 'P' }
func (Set) Code() rune      { return 'E' }
func (Hit) Code() rune      { return 'H' }
func (Block) Code() rune    { return 'B' }
func (Freeball) Code() rune { return 'F' }

func (Serve) Kind() string    { return "Serve" }
func (Receive) Kind() string  { return "Receive" }
func (Pass) Kind() string     { return "Pass" }
func (Set) Kind() string      { return "Set" }
func (Hit) Kind() string      { return "Hit" }
func (Block) Kind() string    { return "Block" }
func (Freeball) Kind() string { return "Freeball" }

func (a Serve) modifiers(Config) string {
	return letter(a.Position.Letter()) + a.Zone.String()
}

func (a Receive) modifiers(Config) string {
	return letter(a.Height.Letter()) + a.Zone.String()
}

func (a Pass) modifiers(Config) string {
	return letter(a.Height.Letter()) + a.Zone.String()
}

func (Set) modifiers(Config) string { return "" }

func (a Hit) modifiers(Config) string { return a.Zone.String() }

func (a Block) modifiers(cfg Config) string {
	return string(cfg.Prefix(a.Team)) + a.Zone.String()
}

func (a Freeball) modifiers(Config) string { return a.Zone.String() }

func letter(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

// Action is one parsed token: who did what
type Action struct {
	Team       Team
	Player     Player
	ActionType ActionType
}

// Notation renders the action back into its canonical token
func (a Action) Notation(cfg Config) string {
	var b strings.Builder
	b.WriteRune(cfg.Prefix(a.Team))
	b.WriteString(strconv.Itoa(int(a.Player)))
	if a.ActionType != nil {
		b.WriteRune(a.ActionType.Code())
		b.WriteString(a.ActionType.modifiers(cfg))
	}
	return b.String()
}

// String renders the action with the default prefixes
func (a Action) String() string {
	return a.Notation(DefaultConfig())
}

// MarshalJSON encodes the action for hosts and history output. The token
// text depends on the configured prefixes and is left to the caller.
func (a Action) MarshalJSON() ([]byte, error) {
	kind := ""
	if a.ActionType != nil {
		kind = a.ActionType.Kind()
	}
	return json.Marshal(struct {
		Team   Team   `json:"team"`
		Player Player `json:"player"`
		Kind   string `json:"kind"`
	}{a.Team, a.Player, kind})
}
