// Package deck provides cards and a shuffled 52-card deck for Pot-Limit
// Omaha. The deck is a value type: dealing advances a cursor, so copies of a
// hand state keep an independent view of the remaining cards.
package deck

import (
	"fmt"
	"strings"
)

// Card identifies one of the 52 cards as an index. Rank is card%13
// (0 = two .. 12 = ace), suit is card/13 in club, diamond, heart, spade
// order.
type Card uint8

// NoCard is the zero value sentinel for an absent card.
const NoCard Card = 0xff

const (
	ranks = "23456789TJQKA"
	suits = "cdhs"
)

// NewCard builds a card from rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(suit*13 + rank)
}

// Rank returns the rank index, 0 = two through 12 = ace.
func (c Card) Rank() uint8 { return uint8(c) % 13 }

// Suit returns the suit index, 0 = clubs through 3 = spades.
func (c Card) Suit() uint8 { return uint8(c) / 13 }

// IsRed reports whether the card is a diamond or heart, for display.
func (c Card) IsRed() bool {
	suit := c.Suit()
	return suit == 1 || suit == 2
}

// String formats the card as rank then suit, e.g. "As" or "Td".
func (c Card) String() string {
	if c >= 52 {
		return "??"
	}
	return string(ranks[c.Rank()]) + string(suits[c.Suit()])
}

// ParseCard parses a two-character card like "As" or "td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return NoCard, fmt.Errorf("deck: invalid card %q", s)
	}
	rank := strings.IndexByte(ranks, s[0])
	if rank < 0 {
		rank = strings.IndexByte(ranks, byte(toUpper(s[0])))
	}
	suit := strings.IndexByte(suits, byte(toLower(s[1])))
	if rank < 0 || suit < 0 {
		return NoCard, fmt.Errorf("deck: invalid card %q", s)
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses a space-separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// FormatCards joins cards with single spaces, e.g. "As Kd 7c 2h".
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// CardSet is a 52-bit set of cards, used for fast membership tests when
// sampling runouts.
type CardSet uint64

// Add returns the set with c included.
func (s CardSet) Add(c Card) CardSet { return s | 1<<c }

// Contains reports whether c is in the set.
func (s CardSet) Contains(c Card) bool { return s&(1<<c) != 0 }

// NewCardSet builds a set from cards.
func NewCardSet(cards ...Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s = s.Add(c)
	}
	return s
}
