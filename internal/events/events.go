package events

import "time"

type Type string

const (
	ScoreVerified = Type("score_verified")
	BadgeClaimed  = Type("badge_claimed")
)

// Event is a fact worth telling live-feed subscribers about.
type Event struct {
	Type         Type      `json:"type"`
	Wallet       string    `json:"wallet"`
	RoundID      string    `json:"roundId,omitempty"`
	Score        int       `json:"score,omitempty"`
	ReactionTime int       `json:"reactionTime,omitempty"`
	BadgeID      string    `json:"badgeId,omitempty"`
	At           time.Time `json:"at"`
}

const busSize = 256

type Bus struct {
	C chan Event
}

func NewBus() *Bus {
	return &Bus{
		C: make(chan Event, busSize),
	}
}

// Publish never blocks a request handler: when the bus is full the event is
// dropped and false is returned.
func (b *Bus) Publish(ev Event) bool {
	select {
	case b.C <- ev:
		return true
	default:
		return false
	}
}
