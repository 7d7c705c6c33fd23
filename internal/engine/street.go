package engine

import "fmt"

// Street represents the betting round of a hand.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// ParseStreet is the inverse of String.
func ParseStreet(name string) (Street, error) {
	for s := Preflop; s <= Showdown; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("engine: unknown street %q", name)
}

// BoardCards returns how many community cards are on the table once the
// street has been dealt.
func (s Street) BoardCards() int {
	switch s {
	case Preflop:
		return 0
	case Flop:
		return 3
	case Turn:
		return 4
	default:
		return 5
	}
}
