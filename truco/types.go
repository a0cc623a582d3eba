package truco

import (
	"encoding/json"
	"time"

	"truco-lite/card"
)

// Status is the table state machine position.
type Status byte

const (
	StatusWaiting            Status = 0
	StatusPlaying            Status = 1
	StatusAwaitingRaise      Status = 2
	StatusHandElevenDecision Status = 3
	StatusResolvingTrick     Status = 4
	StatusRoundEnd           Status = 5
	StatusFinished           Status = 6
)

var StatusDictionary = map[Status]string{
	StatusWaiting:            "waiting",
	StatusPlaying:            "playing",
	StatusAwaitingRaise:      "awaitingRaiseResponse",
	StatusHandElevenDecision: "handElevenDecision",
	StatusResolvingTrick:     "resolvingTrick",
	StatusRoundEnd:           "roundEndAnimation",
	StatusFinished:           "finished",
}

func (s Status) String() string { return StatusDictionary[s] }

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Team tags. Seats alternate A/B by seat index. TeamDraw is only used in trick
// history entries; TeamNone means "unassigned" or "either".
type Team byte

const (
	TeamNone Team = 0
	TeamA    Team = 1
	TeamB    Team = 2
	TeamDraw Team = 3
)

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	case TeamDraw:
		return "draw"
	}
	return ""
}

func (t Team) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// Opponent returns the other playing team.
func (t Team) Opponent() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// teamForSeat assigns alternating teams by seat index: even -> A, odd -> B.
func teamForSeat(index int) Team {
	if index%2 == 0 {
		return TeamA
	}
	return TeamB
}

// Action names accepted by SubmitAction.
type Action string

const (
	ActionRaise          Action = "raise"
	ActionAccept         Action = "accept"
	ActionDecline        Action = "decline"
	ActionHandElevenPlay Action = "hand11_play"
	ActionHandElevenRun  Action = "hand11_run"
)

// PlayedCard is one entry of the current trick, in play order.
type PlayedCard struct {
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Card     card.Card `json:"card"`
}

// RaiseRequest is a pending stake escalation awaiting a response.
type RaiseRequest struct {
	Proposer      string `json:"proposer"`
	Target        string `json:"target"`
	ProposedValue int    `json:"proposedValue"`
	RequestID     string `json:"requestId"`
	ProposerTeam  Team   `json:"proposerTeam"`
}

// SpecialHandKind tags the two low-information round variants.
type SpecialHandKind byte

const (
	SpecialHandNormal SpecialHandKind = 1 // one team at the threshold minus one
	SpecialHandIron   SpecialHandKind = 2 // both teams at the threshold minus one
)

func (k SpecialHandKind) String() string {
	switch k {
	case SpecialHandNormal:
		return "normal"
	case SpecialHandIron:
		return "iron"
	}
	return ""
}

func (k SpecialHandKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// SpecialHandDecision is the deciding team's choice on a hand of eleven.
type SpecialHandDecision byte

const (
	DecisionNone SpecialHandDecision = 0
	DecisionPlay SpecialHandDecision = 1
	DecisionRun  SpecialHandDecision = 2
)

func (d SpecialHandDecision) String() string {
	switch d {
	case DecisionPlay:
		return "play"
	case DecisionRun:
		return "run"
	}
	return ""
}

func (d SpecialHandDecision) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// SpecialHand is active only when a team's score sits exactly at the
// match threshold minus one at round start.
type SpecialHand struct {
	Kind         SpecialHandKind     `json:"kind"`
	DecidingTeam Team                `json:"decidingTeam"`
	Decision     SpecialHandDecision `json:"decision"`
}

// RoundResult is the snapshot recorded for the UI when a trick or round ends.
type RoundResult struct {
	Winner       string       `json:"winner,omitempty"`
	WinnerTeam   Team         `json:"winnerTeam,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	Points       int          `json:"points"`
	Cards        []PlayedCard `json:"cards"`
	TrickHistory []Team       `json:"trickHistory"`
	ResolveError string       `json:"resolveError,omitempty"`
}

// Stake ladder: 1 -> 3 -> 6 -> 9 -> 12.
const MaxStake = 12

func nextStakeValue(v int) int {
	switch {
	case v <= 1:
		return 3
	case v == 3:
		return 6
	case v == 6:
		return 9
	default:
		return MaxStake
	}
}

// Default pacing, matching the original table feel.
const (
	defaultTrickRevealDelay = 1500 * time.Millisecond
	defaultRoundEndDelay    = 2500 * time.Millisecond
	defaultBotThinkDelay    = 850 * time.Millisecond
	defaultBotResponseDelay = 2 * time.Second
	defaultHandElevenDelay  = 1900 * time.Millisecond
	defaultRestartDelay     = 6 * time.Second
)
