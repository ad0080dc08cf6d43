package grid

import (
	"time"

	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// Cell is one day square of the heatmap.
type Cell struct {
	Date    string
	Weekday time.Weekday
	Level   model.Level
	// IsFuture is set for days after today.
	IsFuture bool
	// InYear is false for the padding days before Jan 1 and after Dec 31.
	InYear bool
}

// Build lays out the heatmap for year as whole Sunday-first weeks. It starts
// at the Sunday on or before Jan 1 and keeps going past Dec 31 until the last
// week is complete, so len(cells) is always a multiple of 7. Padding days
// outside year are kept and flagged rather than omitted.
func Build(year int, rs model.Records, today time.Time) []Cell {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	todayKey := timecalc.DateKey(today)

	var cells []Cell
	for d := timecalc.SundayOnOrBefore(yearStart); !d.After(yearEnd) || d.Weekday() != time.Sunday; d = timecalc.AddDays(d, 1) {
		key := timecalc.DateKey(d)
		cells = append(cells, Cell{
			Date:     key,
			Weekday:  d.Weekday(),
			Level:    rs.LevelOf(key),
			IsFuture: key > todayKey,
			InYear:   d.Year() == year,
		})
	}
	return cells
}

// Weeks splits cells into 7-day columns.
func Weeks(cells []Cell) [][]Cell {
	weeks := make([][]Cell, 0, len(cells)/7)
	for i := 0; i+7 <= len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// MonthStarts returns, for every week column, the month whose first day
// falls in that week, or 0 when none does. Used for the month header row.
func MonthStarts(weeks [][]Cell) []time.Month {
	out := make([]time.Month, len(weeks))
	for i, w := range weeks {
		for _, c := range w {
			if !c.InYear || c.Date[8:] != "01" {
				continue
			}
			t, err := time.Parse(timecalc.DateKeyLayout, c.Date)
			if err == nil {
				out[i] = t.Month()
			}
		}
	}
	return out
}
