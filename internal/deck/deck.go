package deck

import (
	rand "math/rand/v2"
)

// HoleCards is the number of hole cards dealt per player in Omaha.
const HoleCards = 4

// Deck is a pre-shuffled 52-card deck with a deal cursor. It is a value
// type: copying a Deck copies the cursor, so the copy deals independently.
type Deck struct {
	cards [52]Card
	next  int
}

// New creates a deck shuffled with the provided source. The source is
// required so that shuffling is always explicit and reproducible in tests.
func New(rng *rand.Rand) Deck {
	if rng == nil {
		panic("deck: rng is required")
	}
	var d Deck
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	// Fisher-Yates.
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	return d
}

// Stacked creates an unshuffled deck that deals the given cards first,
// followed by the remaining cards in index order. Duplicate or invalid
// cards panic; this is a test and tooling constructor.
func Stacked(first ...Card) Deck {
	var d Deck
	var seen CardSet
	i := 0
	for _, c := range first {
		if c >= 52 || seen.Contains(c) {
			panic("deck: invalid stacked card " + c.String())
		}
		seen = seen.Add(c)
		d.cards[i] = c
		i++
	}
	for c := Card(0); c < 52; c++ {
		if !seen.Contains(c) {
			d.cards[i] = c
			i++
		}
	}
	return d
}

// Deal removes and returns the next n cards. It returns nil if fewer than
// n cards remain.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Undealt returns the cards still to be dealt, in deal order. Together
// with Dealt it captures the full deck order for snapshotting.
func (d *Deck) Undealt() []Card {
	out := make([]Card, len(d.cards)-d.next)
	copy(out, d.cards[d.next:])
	return out
}

// Dealt returns the cards dealt so far, in deal order.
func (d *Deck) Dealt() []Card {
	out := make([]Card, d.next)
	copy(out, d.cards[:d.next])
	return out
}
