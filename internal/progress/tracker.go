// Package progress implements the log-level-gated iteration reporting
// tracker (C11). It holds per-run state scoped to a single optimization
// call — there is no global mutable state (§9) — and emits through a
// logrus.FieldLogger the way the teacher's cmd/root.go gates its own
// start-of-run banner on the configured log level.
package progress

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is one of the four gated verbosity levels (§4.9).
type Level int

const (
	LevelMinimal Level = iota
	LevelNormal
	LevelDetailed
	LevelDebug
)

// ParseLevel maps a config string to a Level, defaulting to LevelNormal for
// an unrecognized value.
func ParseLevel(s string) Level {
	switch s {
	case "minimal":
		return LevelMinimal
	case "normal":
		return LevelNormal
	case "detailed":
		return LevelDetailed
	case "debug":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// Tracker holds per-run progress state: iteration index, current/best
// score, elapsed time, and the iteration of the last improvement (used to
// derive stagnation). A Tracker is created fresh for each optimization
// call; it is never shared across runs (§9 "global mutable state: none").
//
// Emission never blocks the search loop: every call here is a synchronous,
// bounded logrus call with no I/O beyond the configured logger's writer,
// so the "non-blocking" requirement (§4.9) holds by construction rather
// than by an async queue.
type Tracker struct {
	level  Level
	logger logrus.FieldLogger

	startedAt         time.Time
	total             int
	lastImprovementAt int
	bestScore         float64
}

// NewTracker builds a Tracker at the given level. logger may be nil, in
// which case logrus.StandardLogger() is used.
func NewTracker(level Level, logger logrus.FieldLogger) *Tracker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Tracker{level: level, logger: logger}
}

// Start announces the beginning of a run of `total` planned iterations
// (minimal level emits nothing at start, per the §4.9 emission table).
func (t *Tracker) Start(algorithm string, total int) {
	t.startedAt = time.Now()
	t.total = total
	t.lastImprovementAt = 0
	t.bestScore = 0
	if t.level == LevelMinimal {
		return
	}
	t.logger.WithFields(logrus.Fields{
		"algorithm": algorithm,
		"total":     total,
	}).Info("optimization started")
}

// Iteration reports progress at iteration `current` (local search and CP
// count from 1; the genetic search passes its generation index, from 0) with the
// current and best scores so far. It is gated per §4.9: normal/detailed
// emit every 10% of total, debug emits every iteration, minimal never.
func (t *Tracker) Iteration(current int, score, best float64) {
	improved := best > t.bestScore
	if improved {
		t.bestScore = best
		t.lastImprovementAt = current
	}

	switch t.level {
	case LevelMinimal:
		return
	case LevelNormal, LevelDetailed:
		if !t.everyTenPercent(current) {
			return
		}
	case LevelDebug:
		// every iteration
	}

	elapsed := time.Since(t.startedAt)
	fields := logrus.Fields{
		"iteration":  current,
		"score":      score,
		"best":       best,
		"elapsed":    FormatDuration(elapsed),
		"eta":        FormatDuration(t.eta(elapsed, current)),
		"stagnation": current - t.lastImprovementAt,
	}
	if t.level == LevelDebug {
		fields["total"] = t.total
	}
	t.logger.WithFields(fields).Info("iteration")
}

// Improvement reports a strict best-score improvement; detailed level adds
// the delta, debug adds the delta plus the elapsed, eta, stagnation and
// total fields that Iteration reports.
func (t *Tracker) Improvement(current int, previousBest, newBest float64) {
	if t.level == LevelMinimal {
		return
	}
	fields := logrus.Fields{"iteration": current, "best": newBest}
	if t.level == LevelDetailed || t.level == LevelDebug {
		fields["delta"] = newBest - previousBest
	}
	if t.level == LevelDebug {
		elapsed := time.Since(t.startedAt)
		fields["elapsed"] = FormatDuration(elapsed)
		fields["eta"] = FormatDuration(t.eta(elapsed, current))
		fields["stagnation"] = current - t.lastImprovementAt
		fields["total"] = t.total
	}
	t.logger.WithFields(fields).Info("improvement")
}

// Finish announces the end of a run; every level emits this (§4.9).
func (t *Tracker) Finish(algorithm string, iterations int, initial, final float64) {
	elapsed := time.Since(t.startedAt)
	t.logger.WithFields(logrus.Fields{
		"algorithm":   algorithm,
		"iterations":  iterations,
		"initial":     initial,
		"final":       final,
		"improvement": final - initial,
		"elapsed":     FormatDuration(elapsed),
	}).Info("optimization finished")
}

func (t *Tracker) everyTenPercent(current int) bool {
	if t.total <= 0 {
		return false
	}
	step := t.total / 10
	if step <= 0 {
		return true
	}
	return current%step == 0
}

// eta computes elapsed*(total/current - 1), guarding against current=0.
func (t *Tracker) eta(elapsed time.Duration, current int) time.Duration {
	if current <= 0 || t.total <= 0 {
		return 0
	}
	factor := float64(t.total)/float64(current) - 1
	if factor < 0 {
		factor = 0
	}
	return time.Duration(float64(elapsed) * factor)
}

// FormatDuration implements §4.9's time formatting rule: seconds under a
// minute, minutes under an hour, else hours.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fmin", d.Minutes())
	default:
		return fmt.Sprintf("%.2fh", d.Hours())
	}
}
