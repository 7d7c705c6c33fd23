package simulator

import (
	"context"
	"strings"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	s := New(Config{Hands: 10})
	if s.cfg.Players != 4 {
		t.Errorf("Players = %d, want 4", s.cfg.Players)
	}
	if s.cfg.Stack != 1000 {
		t.Errorf("Stack = %d, want 1000", s.cfg.Stack)
	}
	if s.cfg.SmallBlind != 10 || s.cfg.BigBlind != 20 {
		t.Errorf("blinds = %d/%d, want 10/20", s.cfg.SmallBlind, s.cfg.BigBlind)
	}
	if s.cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", s.cfg.Workers)
	}
}

func TestRunPlaysAllHands(t *testing.T) {
	s := New(Config{Hands: 200, Players: 4, Seed: 1, Workers: 2})
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Hands != 200 {
		t.Errorf("Hands = %d, want 200", report.Hands)
	}
	if !report.ChipsConserved {
		t.Error("chips were not conserved")
	}
	if report.Showdowns+report.FoldWins != report.Hands {
		t.Errorf("showdowns %d + fold wins %d != hands %d",
			report.Showdowns, report.FoldWins, report.Hands)
	}
	if report.Actions == 0 {
		t.Error("no actions recorded")
	}
	if report.LargestPot < report.TotalPot/report.Hands {
		t.Errorf("largest pot %d below average", report.LargestPot)
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	run := func() *Report {
		s := New(Config{Hands: 50, Players: 3, Seed: 9, Workers: 3})
		report, err := s.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return report
	}
	a, b := run(), run()
	if *a != *b {
		t.Errorf("reports differ for identical seeds:\n%v\n%v", *a, *b)
	}
}

func TestRunHeadsUp(t *testing.T) {
	s := New(Config{Hands: 100, Players: 2, Seed: 3, Workers: 1})
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Hands != 100 {
		t.Errorf("Hands = %d, want 100", report.Hands)
	}
	if !report.ChipsConserved {
		t.Error("chips were not conserved")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(Config{Hands: 1000, Players: 4, Seed: 5})
	if _, err := s.Run(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestReportString(t *testing.T) {
	r := &Report{Hands: 10, Showdowns: 6, FoldWins: 4, Actions: 80,
		LargestPot: 400, TotalPot: 900, ChipsConserved: true}
	out := r.String()
	for _, want := range []string{"hands:        10", "showdowns:    6 (60.0%)", "conservation: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
