package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lcrostarosa/ploscope/internal/fileutil"
	"github.com/lcrostarosa/ploscope/internal/history"
	"github.com/lcrostarosa/ploscope/internal/store"
)

type ExportCmd struct {
	Snapshots string `kong:"default='.ploscope/snapshots',help='Snapshot directory to read'"`
	Out       string `kong:"default='.ploscope/hands',help='Directory for the PHH files'"`
}

func (c *ExportCmd) Run() error {
	st, err := store.New(c.Snapshots)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", c.Out, err)
	}

	entries, err := os.ReadDir(c.Snapshots)
	if err != nil {
		return err
	}

	exported := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == "current.json" {
			continue
		}
		id := strings.TrimSuffix(name, ".json")

		state, err := st.LoadHand(id)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		if !state.Settled {
			fmt.Fprintf(os.Stderr, "skipping %s: hand not settled\n", id)
			continue
		}

		// Use the snapshot's mtime as the hand time, best available.
		info, err := entry.Info()
		if err != nil {
			return err
		}
		hand, err := history.FromState(&state, info.ModTime())
		if err != nil {
			return fmt.Errorf("convert %s: %w", id, err)
		}
		data, err := history.EncodeToBytes(hand)
		if err != nil {
			return fmt.Errorf("encode %s: %w", id, err)
		}

		out := filepath.Join(c.Out, id+".phh")
		if err := fileutil.WriteFileAtomic(out, data, 0o644); err != nil {
			return err
		}
		exported++
	}

	fmt.Printf("exported %d hands to %s\n", exported, c.Out)
	return nil
}
