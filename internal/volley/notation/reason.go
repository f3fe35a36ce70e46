// File: reason.go
// Title: Rally Notation Failures
// Description: Defines Reason, the failure value of the notation parser.
//              Every Reason names the defect kind and the index of the
//              token where it was detected so a host can highlight it.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package notation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a notation defect
type Kind string

const (
	KindTeamPrefix          Kind = "TeamPrefix"
	KindPlayer              Kind = "Player"
	KindInvalidInput        Kind = "InvalidInput"
	KindFirstActionNotServe Kind = "FirstActionNotServe"
	KindServeNotFirstAction Kind = "ServeNotFirstAction"
	KindNoActions           Kind = "NoActions"
)

// Reason is a parse failure anchored to a token index
type Reason struct {
	Kind     Kind
	ErrorMsg string
	Location int
}

var messages = map[Kind]string{
	KindTeamPrefix:          "Expected team prefix here.",
	KindPlayer:              "Expected the players number here.",
	KindInvalidInput:        "There's a mistake somewhere in your input",
	KindFirstActionNotServe: "The first action must be a serve.",
	KindServeNotFirstAction: "A serve can only be used for the first action",
	KindNoActions:           "At least 1 action required.",
}

func newReason(kind Kind) *Reason {
	return &Reason{Kind: kind, ErrorMsg: messages[kind]}
}

// WithLocation returns a copy anchored at the given token index
func (r *Reason) WithLocation(location int) *Reason {
	c := *r
	c.Location = location
	return &c
}

// Error implements the error interface
func (r *Reason) Error() string {
	return fmt.Sprintf("%s at token %d: %s", r.Kind, r.Location, r.ErrorMsg)
}

// Is matches any Reason of the same kind
func (r *Reason) Is(target error) bool {
	t, ok := target.(*Reason)
	return ok && t.Kind == r.Kind
}

// MarshalJSON produces the host payload {kind, errorMsg, location}
func (r *Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     Kind   `json:"kind"`
		ErrorMsg string `json:"errorMsg"`
		Location int    `json:"location"`
	}{r.Kind, r.ErrorMsg, r.Location})
}

// UnmarshalJSON decodes the host payload
func (r *Reason) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind     Kind   `json:"kind"`
		ErrorMsg string `json:"errorMsg"`
		Location int    `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Kind, r.ErrorMsg, r.Location = raw.Kind, raw.ErrorMsg, raw.Location
	return nil
}

// AsReason extracts a Reason from an error chain
func AsReason(err error) (*Reason, bool) {
	var r *Reason
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// Sentinels for errors.Is checks
var (
	ErrTeamPrefix          = newReason(KindTeamPrefix)
	ErrPlayer              = newReason(KindPlayer)
	ErrInvalidInput        = newReason(KindInvalidInput)
	ErrFirstActionNotServe = newReason(KindFirstActionNotServe)
	ErrServeNotFirstAction = newReason(KindServeNotFirstAction)
	ErrNoActions           = newReason(KindNoActions)
)
