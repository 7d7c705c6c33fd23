// Package evaluator ranks Pot-Limit Omaha hands. Omaha hands use exactly
// two of the four hole cards and exactly three of the five board cards; the
// package evaluates all sixty combinations and keeps the best.
package evaluator

import (
	"sort"

	"github.com/lcrostarosa/ploscope/internal/deck"
)

// HandRank represents the strength of a five-card poker hand.
// The high 4 bits are the hand category, the remaining bits break ties.
// Higher values win.
type HandRank uint32

const (
	HighCard HandRank = iota << 28
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// Category returns the hand category (pair, flush, etc.).
func (hr HandRank) Category() HandRank {
	return hr & 0xF0000000
}

// String returns a human-readable hand description.
func (hr HandRank) String() string {
	switch hr.Category() {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Evaluate5 ranks exactly five cards.
func Evaluate5(cards []deck.Card) HandRank {
	if len(cards) != 5 {
		return 0
	}

	var counts [13]uint8
	flush := true
	suit := cards[0].Suit()
	var rankMask uint16
	for _, c := range cards {
		counts[c.Rank()]++
		rankMask |= 1 << c.Rank()
		if c.Suit() != suit {
			flush = false
		}
	}

	straightHigh := straightHighCard(rankMask)

	if flush {
		if straightHigh >= 0 {
			return StraightFlush | HandRank(straightHigh)
		}
		return Flush | packRanksDesc(counts)
	}

	if quad := rankWithCount(counts, 4); quad >= 0 {
		kicker := rankWithCountExcept(counts, 1, quad)
		return FourOfAKind | HandRank(quad)<<4 | HandRank(kicker)
	}

	if trips := rankWithCount(counts, 3); trips >= 0 {
		if pair := rankWithCount(counts, 2); pair >= 0 {
			return FullHouse | HandRank(trips)<<4 | HandRank(pair)
		}
		return ThreeOfAKind | HandRank(trips)<<8 | packKickers(counts, 2, trips, -1)
	}

	if straightHigh >= 0 {
		return Straight | HandRank(straightHigh)
	}

	if hi := rankWithCount(counts, 2); hi >= 0 {
		if lo := rankWithCountBelow(counts, 2, hi); lo >= 0 {
			kicker := kickerExcluding(counts, hi, lo)
			return TwoPair | HandRank(hi)<<8 | HandRank(lo)<<4 | HandRank(kicker)
		}
		return Pair | HandRank(hi)<<12 | packKickers(counts, 3, hi, -1)
	}

	return HighCard | packRanksDesc(counts)
}

// straightHighCard returns the high-card rank of a straight in the rank
// bitmask, or -1. The wheel (A-2-3-4-5) counts with the five high.
func straightHighCard(rankMask uint16) int {
	const wheel = 1<<12 | 1<<0 | 1<<1 | 1<<2 | 1<<3 // A 2 3 4 5
	for high := 12; high >= 4; high-- {
		run := uint16(0x1f) << (high - 4)
		if rankMask&run == run {
			return high
		}
	}
	if rankMask&wheel == wheel {
		return 3 // five-high
	}
	return -1
}

// rankWithCount returns the highest rank appearing exactly n times, or -1.
func rankWithCount(counts [13]uint8, n uint8) int {
	for r := 12; r >= 0; r-- {
		if counts[r] == n {
			return r
		}
	}
	return -1
}

func rankWithCountExcept(counts [13]uint8, n uint8, except int) int {
	for r := 12; r >= 0; r-- {
		if r != except && counts[r] == n {
			return r
		}
	}
	return -1
}

func rankWithCountBelow(counts [13]uint8, n uint8, below int) int {
	for r := below - 1; r >= 0; r-- {
		if counts[r] == n {
			return r
		}
	}
	return -1
}

func kickerExcluding(counts [13]uint8, a, b int) int {
	for r := 12; r >= 0; r-- {
		if r != a && r != b && counts[r] > 0 {
			return r
		}
	}
	return 0
}

// packKickers packs the n highest single ranks, excluding a and b, into
// descending nibbles.
func packKickers(counts [13]uint8, n, a, b int) HandRank {
	var packed HandRank
	found := 0
	for r := 12; r >= 0 && found < n; r-- {
		if r == a || r == b || counts[r] == 0 {
			continue
		}
		packed = packed<<4 | HandRank(r)
		found++
	}
	return packed
}

// packRanksDesc packs all five ranks into descending nibbles.
func packRanksDesc(counts [13]uint8) HandRank {
	var packed HandRank
	for r := 12; r >= 0; r-- {
		for i := uint8(0); i < counts[r]; i++ {
			packed = packed<<4 | HandRank(r)
		}
	}
	return packed
}

// holePairs enumerates the C(4,2) choices of hole cards; boardTriples the
// C(5,3) choices of board cards.
var holePairs = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

var boardTriples = [10][3]int{
	{0, 1, 2}, {0, 1, 3}, {0, 1, 4}, {0, 2, 3}, {0, 2, 4},
	{0, 3, 4}, {1, 2, 3}, {1, 2, 4}, {1, 3, 4}, {2, 3, 4},
}

// RankOmaha returns the best rank using exactly two of four hole cards and
// exactly three of five board cards.
func RankOmaha(hole []deck.Card, board []deck.Card) HandRank {
	if len(hole) != 4 || len(board) != 5 {
		return 0
	}

	var best HandRank
	five := make([]deck.Card, 5)
	for _, hp := range holePairs {
		five[0] = hole[hp[0]]
		five[1] = hole[hp[1]]
		for _, bt := range boardTriples {
			five[2] = board[bt[0]]
			five[3] = board[bt[1]]
			five[4] = board[bt[2]]
			if r := Evaluate5(five); r > best {
				best = r
			}
		}
	}
	return best
}

// BestFive returns the winning five cards for display, sorted by rank
// descending. It re-evaluates the sixty combinations, so it is for
// presentation, not hot paths.
func BestFive(hole []deck.Card, board []deck.Card) []deck.Card {
	if len(hole) != 4 || len(board) != 5 {
		return nil
	}

	var best HandRank
	var bestCards []deck.Card
	for _, hp := range holePairs {
		for _, bt := range boardTriples {
			five := []deck.Card{
				hole[hp[0]], hole[hp[1]],
				board[bt[0]], board[bt[1]], board[bt[2]],
			}
			if r := Evaluate5(five); r > best {
				best = r
				bestCards = five
			}
		}
	}
	sort.Slice(bestCards, func(i, j int) bool {
		return bestCards[i].Rank() > bestCards[j].Rank()
	})
	return bestCards
}
