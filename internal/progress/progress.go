package progress

import (
	"fmt"
	"time"

	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// Goal is the tracked interval.
type Goal struct {
	Start time.Time
	End   time.Time
}

// ParseGoal builds a Goal from two DateKeys interpreted in loc.
func ParseGoal(start, end string, loc *time.Location) (Goal, error) {
	s, err := timecalc.ParseDateKey(start, loc)
	if err != nil {
		return Goal{}, fmt.Errorf("goal start: %w", err)
	}
	e, err := timecalc.ParseDateKey(end, loc)
	if err != nil {
		return Goal{}, fmt.Errorf("goal end: %w", err)
	}
	if e.Before(s) {
		return Goal{}, fmt.Errorf("goal end %s is before start %s", end, start)
	}
	return Goal{Start: s, End: e}, nil
}

// Progress is the position of one instant within a Goal.
type Progress struct {
	TotalDays     int
	ElapsedDays   int
	RemainingDays int
	Percentage    float64
	// Phase is the milestone band, 1 through 5.
	Phase int
}

// Compute places now within goal. Day counts are rounded up, so any instant
// after the start of the first day counts that day as elapsed. The
// percentage is clamped to 0..100.
func Compute(goal Goal, now time.Time) Progress {
	total := timecalc.CeilDays(goal.End.Sub(goal.Start))
	elapsed := max(0, timecalc.CeilDays(now.Sub(goal.Start)))
	remaining := max(0, timecalc.CeilDays(goal.End.Sub(now)))

	pct := 100.0
	if total > 0 {
		pct = float64(elapsed) / float64(total) * 100
	} else if now.Before(goal.Start) {
		pct = 0
	}
	pct = min(max(pct, 0), 100)

	return Progress{
		TotalDays:     total,
		ElapsedDays:   elapsed,
		RemainingDays: remaining,
		Percentage:    pct,
		Phase:         PhaseOf(pct),
	}
}

// PhaseOf maps a percentage to its milestone band.
func PhaseOf(pct float64) int {
	switch {
	case pct >= 80:
		return 5
	case pct >= 60:
		return 4
	case pct >= 40:
		return 3
	case pct >= 20:
		return 2
	default:
		return 1
	}
}
