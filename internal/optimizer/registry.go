package optimizer

import (
	"fmt"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/progress"
)

// IsValidAlgorithm reports whether name is a recognized optimizer.algorithm
// value (§6).
func IsValidAlgorithm(name string) bool {
	switch name {
	case "local_search", "genetic", "or_tools":
		return true
	default:
		return false
	}
}

// New creates a Strategy by name, mirroring the teacher's
// NewScheduler/NewPriorityPolicy factory-by-name idiom. tracker may be nil,
// in which case strategies get a minimal-level tracker on the standard
// logrus logger, which still logs the end-of-run line.
func New(name string, cfg *config.Config, tracker *progress.Tracker) (Strategy, error) {
	if !IsValidAlgorithm(name) {
		return nil, fmt.Errorf("meshachvetz: unknown optimizer algorithm %q", name)
	}
	if tracker == nil {
		tracker = progress.NewTracker(progress.LevelMinimal, nil)
	}
	switch name {
	case "local_search":
		return NewLocalSearch(cfg, tracker), nil
	case "genetic":
		return NewGenetic(cfg, tracker), nil
	case "or_tools":
		return NewCPSearch(cfg, tracker), nil
	default:
		return nil, fmt.Errorf("meshachvetz: unhandled optimizer algorithm %q", name)
	}
}
