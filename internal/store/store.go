// Package store persists hand snapshots as JSON files so a session can be
// resumed across process restarts. Writes are atomic: a reader sees either
// the previous snapshot or the new one, never a torn file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/fileutil"
)

// ErrNoSnapshot is returned by Load when no snapshot exists yet.
var ErrNoSnapshot = errors.New("store: no snapshot")

// snapshotVersion guards the on-disk schema; Load rejects versions it does
// not understand instead of misreading them.
const snapshotVersion = 1

const currentFile = "current.json"

// Store writes hand snapshots under a directory. The live hand is always
// at current.json; settled hands are additionally archived by hand id.
type Store struct {
	dir     string
	archive bool
}

// Option customises a Store.
type Option func(*Store)

// WithArchive keeps a per-hand copy of every settled hand alongside the
// live snapshot.
func WithArchive() Option {
	return func(s *Store) { s.archive = true }
}

// New creates the snapshot directory if needed and returns a Store.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

// Save writes a snapshot of the state. It satisfies the table's Saver
// interface.
func (s *Store) Save(state *engine.HandState) error {
	snap := encode(state)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal hand %s: %w", state.ID, err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(s.dir, currentFile), data, 0o644); err != nil {
		return fmt.Errorf("store: write snapshot: %w", err)
	}
	if s.archive && state.Settled {
		name := state.ID + ".json"
		if err := fileutil.WriteFileAtomic(filepath.Join(s.dir, name), data, 0o644); err != nil {
			return fmt.Errorf("store: archive hand %s: %w", state.ID, err)
		}
	}
	return nil
}

// Load reads the live snapshot back into an engine state.
func (s *Store) Load() (engine.HandState, error) {
	return s.load(currentFile)
}

// LoadHand reads an archived hand by id.
func (s *Store) LoadHand(id string) (engine.HandState, error) {
	return s.load(id + ".json")
}

func (s *Store) load(name string) (engine.HandState, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return engine.HandState{}, ErrNoSnapshot
	}
	if err != nil {
		return engine.HandState{}, fmt.Errorf("store: read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.HandState{}, fmt.Errorf("store: parse snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return engine.HandState{}, fmt.Errorf("store: unsupported snapshot version %d", snap.Version)
	}
	return decode(&snap)
}

// snapshot is the on-disk schema. Cards are stored in the human-readable
// "As Kd" form so snapshots double as inspectable artifacts.
type snapshot struct {
	Version int          `json:"version"`
	SavedAt time.Time    `json:"saved_at"`
	Hand    handSnapshot `json:"hand"`
}

type handSnapshot struct {
	ID         string           `json:"id"`
	Button     int              `json:"button"`
	SmallBlind int              `json:"small_blind"`
	BigBlind   int              `json:"big_blind"`
	Street     string           `json:"street"`
	Board      string           `json:"board"`
	Dealt      string           `json:"dealt_cards"`
	Undealt    string           `json:"undealt_cards"`
	Pot        int              `json:"pot"`
	CurrentBet int              `json:"current_bet"`
	LastRaise  int              `json:"last_raise"`
	LastRaiser int              `json:"last_raiser"`
	ToAct      int              `json:"to_act"`
	Acted      []bool           `json:"acted"`
	Settled    bool             `json:"settled"`
	Players    []playerSnapshot `json:"players"`
	Log        []logSnapshot    `json:"log"`
}

type playerSnapshot struct {
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	Stack      int    `json:"stack"`
	StartStack int    `json:"start_stack"`
	StreetBet  int    `json:"street_bet"`
	HandBet    int    `json:"hand_bet"`
	Hole       string `json:"hole"`
	Folded     bool   `json:"folded,omitempty"`
	AllIn      bool   `json:"all_in,omitempty"`
}

type logSnapshot struct {
	Seat   int    `json:"seat"`
	Kind   string `json:"action"`
	Amount int    `json:"amount"`
	Street string `json:"street"`
}

func encode(state *engine.HandState) *snapshot {
	hand := handSnapshot{
		ID:         state.ID,
		Button:     state.Button,
		SmallBlind: state.SmallBlind,
		BigBlind:   state.BigBlind,
		Street:     state.Street.String(),
		Board:      deck.FormatCards(state.Board),
		Dealt:      deck.FormatCards(state.Deck.Dealt()),
		Undealt:    deck.FormatCards(state.Deck.Undealt()),
		Pot:        state.Pot,
		CurrentBet: state.CurrentBet,
		LastRaise:  state.LastRaise,
		LastRaiser: state.LastRaiser,
		ToAct:      state.ToAct,
		Acted:      append([]bool(nil), state.Acted...),
		Settled:    state.Settled,
	}
	for i := range state.Players {
		p := &state.Players[i]
		hand.Players = append(hand.Players, playerSnapshot{
			Seat:       p.Seat,
			Name:       p.Name,
			Stack:      p.Stack,
			StartStack: p.StartStack,
			StreetBet:  p.StreetBet,
			HandBet:    p.HandBet,
			Hole:       deck.FormatCards(p.Hole),
			Folded:     p.Folded,
			AllIn:      p.AllIn,
		})
	}
	for _, entry := range state.Log {
		hand.Log = append(hand.Log, logSnapshot{
			Seat:   entry.Seat,
			Kind:   entry.Kind.String(),
			Amount: entry.Amount,
			Street: entry.Street.String(),
		})
	}
	return &snapshot{Version: snapshotVersion, SavedAt: time.Now().UTC(), Hand: hand}
}

func decode(snap *snapshot) (engine.HandState, error) {
	hand := &snap.Hand
	street, err := engine.ParseStreet(hand.Street)
	if err != nil {
		return engine.HandState{}, fmt.Errorf("store: %w", err)
	}
	board, err := deck.ParseCards(hand.Board)
	if err != nil {
		return engine.HandState{}, fmt.Errorf("store: board: %w", err)
	}
	dealt, err := deck.ParseCards(hand.Dealt)
	if err != nil {
		return engine.HandState{}, fmt.Errorf("store: dealt cards: %w", err)
	}
	undealt, err := deck.ParseCards(hand.Undealt)
	if err != nil {
		return engine.HandState{}, fmt.Errorf("store: undealt cards: %w", err)
	}
	if len(dealt)+len(undealt) != 52 {
		return engine.HandState{}, fmt.Errorf("store: snapshot deck has %d cards", len(dealt)+len(undealt))
	}

	state := engine.HandState{
		ID:         hand.ID,
		Button:     hand.Button,
		SmallBlind: hand.SmallBlind,
		BigBlind:   hand.BigBlind,
		Street:     street,
		Board:      board,
		Pot:        hand.Pot,
		CurrentBet: hand.CurrentBet,
		LastRaise:  hand.LastRaise,
		LastRaiser: hand.LastRaiser,
		ToAct:      hand.ToAct,
		Acted:      append([]bool(nil), hand.Acted...),
		Settled:    hand.Settled,
	}

	// Rebuild the deck in its original order with the cursor advanced
	// past the dealt cards.
	d := deck.Stacked(append(dealt, undealt...)...)
	d.Deal(len(dealt))
	state.Deck = d

	for _, ps := range hand.Players {
		hole, err := deck.ParseCards(ps.Hole)
		if err != nil {
			return engine.HandState{}, fmt.Errorf("store: hole cards for seat %d: %w", ps.Seat, err)
		}
		state.Players = append(state.Players, engine.Player{
			Seat:       ps.Seat,
			Name:       ps.Name,
			Stack:      ps.Stack,
			StartStack: ps.StartStack,
			StreetBet:  ps.StreetBet,
			HandBet:    ps.HandBet,
			Hole:       hole,
			Folded:     ps.Folded,
			AllIn:      ps.AllIn,
		})
	}

	for _, entry := range hand.Log {
		kind, err := engine.ParseActionKind(entry.Kind)
		if err != nil {
			return engine.HandState{}, fmt.Errorf("store: log: %w", err)
		}
		st, err := engine.ParseStreet(entry.Street)
		if err != nil {
			return engine.HandState{}, fmt.Errorf("store: log: %w", err)
		}
		state.Log = append(state.Log, engine.LogEntry{
			Seat:   entry.Seat,
			Kind:   kind,
			Amount: entry.Amount,
			Street: st,
		})
	}

	if err := state.CheckInvariants(); err != nil {
		return engine.HandState{}, fmt.Errorf("store: snapshot fails invariants: %w", err)
	}
	return state, nil
}
