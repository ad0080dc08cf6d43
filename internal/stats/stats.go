package stats

import (
	"time"

	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// Summary bundles the dashboard counters.
type Summary struct {
	TotalActiveDays int
	CurrentStreak   int
	ThisMonthCount  int
}

// Compute derives every counter from rs. Nothing is cached.
func Compute(rs model.Records, today time.Time) Summary {
	return Summary{
		TotalActiveDays: TotalActiveDays(rs),
		CurrentStreak:   CurrentStreak(rs, today),
		ThisMonthCount:  ThisMonthCount(rs, today),
	}
}

// TotalActiveDays counts records with a level above zero.
func TotalActiveDays(rs model.Records) int {
	n := 0
	for _, r := range rs {
		if r.Active() {
			n++
		}
	}
	return n
}

// CurrentStreak counts consecutive active days ending today. An inactive
// today yields 0 whatever the history before it.
func CurrentStreak(rs model.Records, today time.Time) int {
	n := 0
	for d := timecalc.StartOfDay(today); rs.LevelOf(timecalc.DateKey(d)) > model.LevelNone; d = timecalc.AddDays(d, -1) {
		n++
	}
	return n
}

// ThisMonthCount counts active records in today's calendar month.
func ThisMonthCount(rs model.Records, today time.Time) int {
	first, last := timecalc.MonthRange(today)
	from, to := timecalc.DateKey(first), timecalc.DateKey(last)
	n := 0
	for key, r := range rs {
		if r.Active() && key >= from && key <= to {
			n++
		}
	}
	return n
}

// LongestStreak returns the longest run of consecutive active days.
func LongestStreak(rs model.Records) int {
	best, run := 0, 0
	var prev time.Time
	for _, key := range rs.SortedKeys() {
		if !rs[key].Active() {
			run = 0
			continue
		}
		d, err := timecalc.ParseDateKey(key, time.UTC)
		if err != nil {
			continue
		}
		if run > 0 && timecalc.AddDays(prev, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		prev = d
		best = max(best, run)
	}
	return best
}
