package domain

import "encoding/json"

// Scored identifies the action credited or blamed for a rally
type Scored struct {
	Team       Team
	Player     Player
	ActionType ActionType
}

// MarshalJSON encodes the scored action by kind
func (s Scored) MarshalJSON() ([]byte, error) {
	kind := ""
	if s.ActionType != nil {
		kind = s.ActionType.Kind()
	}
	return json.Marshal(struct {
		Team   Team   `json:"team"`
		Player Player `json:"player"`
		Action string `json:"action"`
	}{s.Team, s.Player, kind})
}

// WhoScored is the verdict of one rally. At least one of Scored and
// Faulted is set; PointTo is always meaningful.
type WhoScored struct {
	Scored  *Scored `json:"scored,omitempty"`
	Faulted *Scored `json:"faulted,omitempty"`
	PointTo Team    `json:"pointTo"`
}

// Rally is the parse and attribution result for one notation string
type Rally struct {
	Actions []Action  `json:"actions"`
	Who     WhoScored `json:"who"`
}
