package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/fileutil"
)

// Recorder writes one PHH file per settled hand. It plugs into the table
// as a snapshot saver and ignores everything but retired hands, so live
// snapshots cost nothing.
type Recorder struct {
	dir    string
	logger *log.Logger
}

// NewRecorder creates the history directory if needed.
func NewRecorder(dir string, logger *log.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create %s: %w", dir, err)
	}
	return &Recorder{dir: dir, logger: logger.WithPrefix("history")}, nil
}

// Dir returns the history directory.
func (r *Recorder) Dir() string { return r.dir }

// Save records the hand once it is settled.
func (r *Recorder) Save(state *engine.HandState) error {
	if !state.Settled {
		return nil
	}
	hand, err := FromState(state, time.Now())
	if err != nil {
		return err
	}
	data, err := EncodeToBytes(hand)
	if err != nil {
		return fmt.Errorf("history: encode hand %s: %w", state.ID, err)
	}
	path := filepath.Join(r.dir, state.ID+".phh")
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("history: write %s: %w", path, err)
	}
	r.logger.Debug("hand recorded", "hand", state.ID, "path", path)
	return nil
}
