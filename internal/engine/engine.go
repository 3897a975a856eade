package engine

import (
	"errors"
	"maps"
	"math"
	"slices"
	"strings"
)

var ErrEmptyMessage = errors.New("empty message")
var ErrUnknownOutcome = errors.New("unknown outcome")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Outcome is one of the three 1X2 match-result categories.
type Outcome string

const (
	OutcomeP1 Outcome = "p1" // home win
	OutcomeX  Outcome = "x"  // draw
	OutcomeP2 Outcome = "p2" // away win
)

func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(strings.ToLower(strings.TrimSpace(s))) {
	case OutcomeP1:
		return OutcomeP1, true
	case OutcomeX:
		return OutcomeX, true
	case OutcomeP2:
		return OutcomeP2, true
	default:
		return "", false
	}
}

// Tally is the stored vote count per outcome. Commands never mutate it;
// a viewer's own selection is tracked separately in State.Selections.
type Tally struct {
	P1 int `json:"p1"`
	X  int `json:"x"`
	P2 int `json:"p2"`
}

func (t Tally) Total() int { return t.P1 + t.X + t.P2 }

// Percentage is round(100*count/total), or 0 for an as-yet-unvoted room.
func Percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(total)))
}

// Percentages are rounded independently, so the three values may sum to
// 99, 100, or 101. That is accepted display behavior, not corrected here.
type Percentages struct {
	P1 int `json:"p1"`
	X  int `json:"x"`
	P2 int `json:"p2"`
}

func (t Tally) Percentages() Percentages {
	total := t.Total()
	return Percentages{
		P1: Percentage(t.P1, total),
		X:  Percentage(t.X, total),
		P2: Percentage(t.P2, total),
	}
}

type Message struct {
	ID     int    `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	SentAt string `json:"sent_at"` // hour:minute wall clock, formatted by the caller
	Own    bool   `json:"own"`
}

type State struct {
	RoomID     int                `json:"room_id"`
	Tally      Tally              `json:"tally"`
	Messages   []Message          `json:"messages"`
	Selections map[string]Outcome `json:"selections"`
	NextMsgID  int                `json:"-"`
}

// NewState seeds room state from the catalog tally and a fixed transcript.
func NewState(roomID int, tally Tally, seed []Message) State {
	return State{
		RoomID:     roomID,
		Tally:      tally,
		Messages:   slices.Clone(seed),
		Selections: map[string]Outcome{},
		NextMsgID:  len(seed) + 1,
	}
}

type CommandType string

const (
	CmdPostMessage CommandType = "PostMessage"
	CmdCastVote    CommandType = "CastVote"
)

type Command struct {
	Type    CommandType
	UserID  string
	Author  string
	Text    string
	SentAt  string
	Own     bool
	Outcome Outcome
}

type EventType string

const (
	EvtMessagePosted EventType = "MessagePosted"
	EvtVoteCast      EventType = "VoteCast"
)

type Event struct {
	Type    EventType
	Message Message
	UserID  string
	Outcome Outcome
}

// Apply runs one command against the state and returns the events plus the
// next state. The input state is never mutated, so snapshots handed out
// earlier stay valid.
func Apply(s State, cmd Command) ([]Event, State, error) {
	next := s
	next.Messages = slices.Clone(s.Messages)
	next.Selections = maps.Clone(s.Selections)

	switch cmd.Type {
	case CmdPostMessage:
		if strings.TrimSpace(cmd.Text) == "" {
			return nil, s, ErrEmptyMessage
		}
		msg := Message{
			ID:     next.NextMsgID,
			Author: cmd.Author,
			Text:   cmd.Text,
			SentAt: cmd.SentAt,
			Own:    cmd.Own,
		}
		next.Messages = append(next.Messages, msg)
		next.NextMsgID++
		return []Event{{Type: EvtMessagePosted, Message: msg}}, next, nil

	case CmdCastVote:
		outcome, ok := ParseOutcome(string(cmd.Outcome))
		if !ok {
			return nil, s, ErrUnknownOutcome
		}
		// Re-casting overwrites the previous selection. The stored tally is
		// left alone: percentages never include the viewer's own vote.
		next.Selections[cmd.UserID] = outcome
		return []Event{{Type: EvtVoteCast, UserID: cmd.UserID, Outcome: outcome}}, next, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
