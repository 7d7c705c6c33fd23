// Package history encodes settled hands in the PHH (poker hand history)
// TOML format, one file per hand. The format is the lingua franca of hand
// analysis tooling, so exported files can be fed straight into external
// study tools.
package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
)

// Variant is the PHH variant code for pot-limit Omaha hold'em.
const Variant = "PO"

// Hand is a single hand in PHH form.
type Hand struct {
	Variant           string   `toml:"variant"`
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks,omitempty"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	SeatCount         int      `toml:"seat_count,omitempty"`
	HandID            string   `toml:"hand"`
	Time              string   `toml:"time,omitempty"`
	TimeZone          string   `toml:"time_zone,omitempty"`
}

// Encode writes the hand in PHH TOML form.
func Encode(w io.Writer, hand *Hand) error {
	if hand == nil {
		return fmt.Errorf("history: hand is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *Hand) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// FromState converts a retired hand state into PHH form. The action log,
// blinds and board are replayed into the PHH action vocabulary: "d dh"
// hole deals, "d db" board deals, "f"/"cc"/"cbr" player actions and "sm"
// showdown reveals.
func FromState(s *engine.HandState, at time.Time) (*Hand, error) {
	if !s.Settled {
		return nil, fmt.Errorf("history: hand %s is not settled", s.ID)
	}
	n := len(s.Players)

	hand := &Hand{
		Variant:           Variant,
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            s.BigBlind,
		SeatCount:         n,
		HandID:            s.ID,
		Time:              at.UTC().Format("15:04:05"),
		TimeZone:          "UTC",
	}
	for i := range s.Players {
		hand.Players = append(hand.Players, s.Players[i].Name)
		hand.StartingStacks = append(hand.StartingStacks, s.Players[i].StartStack)
		hand.FinishingStacks = append(hand.FinishingStacks, s.Players[i].Stack)
	}

	sbSeat, bbSeat := blindSeats(s)
	hand.BlindsOrStraddles[sbSeat] = s.SmallBlind
	hand.BlindsOrStraddles[bbSeat] = s.BigBlind

	for i := range s.Players {
		hand.Actions = append(hand.Actions,
			fmt.Sprintf("d dh p%d %s", i+1, holeString(s.Players[i].Hole)))
	}

	// Replay the log, tracking street bet levels so raises can be encoded
	// as their bet-to level, and dealing board cards at street boundaries.
	streetBets := make([]int, n)
	streetBets[sbSeat] = min(s.SmallBlind, s.Players[sbSeat].StartStack)
	streetBets[bbSeat] = min(s.BigBlind, s.Players[bbSeat].StartStack)
	currentBet := s.BigBlind
	street := engine.Preflop

	for _, entry := range s.Log {
		for street < entry.Street {
			street++
			if cards := boardFor(s, street); cards != "" {
				hand.Actions = append(hand.Actions, "d db "+cards)
			}
			streetBets = make([]int, n)
			currentBet = 0
		}

		player := fmt.Sprintf("p%d", entry.Seat+1)
		switch entry.Kind {
		case engine.KindFold:
			hand.Actions = append(hand.Actions, player+" f")
		case engine.KindCheck:
			hand.Actions = append(hand.Actions, player+" cc")
		default:
			streetBets[entry.Seat] += entry.Amount
			if streetBets[entry.Seat] > currentBet {
				currentBet = streetBets[entry.Seat]
				hand.Actions = append(hand.Actions, fmt.Sprintf("%s cbr %d", player, currentBet))
			} else {
				hand.Actions = append(hand.Actions, player+" cc")
			}
		}
	}

	// Board cards dealt after the last voluntary action (all-in runouts).
	for street < engine.River && len(s.Board) > street.BoardCards() {
		street++
		if cards := boardFor(s, street); cards != "" {
			hand.Actions = append(hand.Actions, "d db "+cards)
		}
	}

	if inHand := s.InHandSeats(); len(inHand) > 1 {
		for _, seat := range inHand {
			hand.Actions = append(hand.Actions,
				fmt.Sprintf("p%d sm %s", seat+1, holeString(s.Players[seat].Hole)))
		}
	}

	return hand, nil
}

// blindSeats returns the small and big blind seats under the heads-up rule
// that the button posts the small blind.
func blindSeats(s *engine.HandState) (sb, bb int) {
	n := len(s.Players)
	if n == 2 {
		return s.Button, (s.Button + 1) % n
	}
	return (s.Button + 1) % n, (s.Button + 2) % n
}

// boardFor returns the cards dealt for a street as a compact PHH string.
func boardFor(s *engine.HandState, street engine.Street) string {
	var cards []deck.Card
	switch street {
	case engine.Flop:
		if len(s.Board) >= 3 {
			cards = s.Board[0:3]
		}
	case engine.Turn:
		if len(s.Board) >= 4 {
			cards = s.Board[3:4]
		}
	case engine.River:
		if len(s.Board) >= 5 {
			cards = s.Board[4:5]
		}
	}
	if len(cards) == 0 {
		return ""
	}
	return holeString(cards)
}

// holeString joins cards without separators, PHH style: "AcKdQh2s".
func holeString(cards []deck.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}
