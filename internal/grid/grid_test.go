package grid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/heatlog/internal/grid"
	"github.com/Tiliavir/heatlog/internal/model"
)

func TestBuildWholeWeeks(t *testing.T) {
	today := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	for year := 1990; year <= 2060; year++ {
		cells := grid.Build(year, model.Records{}, today)
		require.NotEmpty(t, cells, "year %d", year)
		assert.Zero(t, len(cells)%7, "year %d has %d cells", year, len(cells))
		assert.Equal(t, time.Sunday, cells[0].Weekday, "year %d", year)
		assert.Equal(t, time.Saturday, cells[len(cells)-1].Weekday, "year %d", year)

		inYear := 0
		for _, c := range cells {
			if c.InYear {
				inYear++
			}
		}
		want := 365
		if time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
			want = 366
		}
		assert.Equal(t, want, inYear, "year %d", year)
	}
}

func TestBuildPadding(t *testing.T) {
	// 2026-01-01 is a Thursday and 2026-12-31 is a Thursday.
	cells := grid.Build(2026, model.Records{}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2025-12-28", cells[0].Date)
	assert.False(t, cells[0].InYear)
	assert.Equal(t, "2026-01-01", cells[4].Date)
	assert.True(t, cells[4].InYear)

	last := cells[len(cells)-1]
	assert.Equal(t, "2027-01-02", last.Date)
	assert.False(t, last.InYear)
	assert.Len(t, cells, 53*7)
}

func TestBuildJanFirstOnSunday(t *testing.T) {
	// 2023-01-01 is a Sunday, so there is no leading padding.
	cells := grid.Build(2023, model.Records{}, time.Now())
	assert.Equal(t, "2023-01-01", cells[0].Date)
	assert.True(t, cells[0].InYear)
}

func TestBuildLevelsAndFuture(t *testing.T) {
	rs := model.Records{
		"2026-01-01": {Date: "2026-01-01", Title: "a", Level: 3},
		"2026-01-02": {Date: "2026-01-02", Title: "b", Level: 0},
	}
	today := time.Date(2026, 1, 2, 23, 59, 0, 0, time.UTC)
	cells := grid.Build(2026, rs, today)

	byDate := map[string]grid.Cell{}
	for _, c := range cells {
		byDate[c.Date] = c
	}
	assert.Equal(t, model.Level3, byDate["2026-01-01"].Level)
	assert.False(t, byDate["2026-01-02"].IsFuture, "today is not in the future")
	assert.True(t, byDate["2026-01-03"].IsFuture)
	assert.False(t, byDate["2025-12-31"].IsFuture)
}

func TestBuildLevelZeroEqualsAbsent(t *testing.T) {
	today := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	withZero := grid.Build(2026, model.Records{
		"2026-03-03": {Date: "2026-03-03", Title: "rest", Level: 0},
	}, today)
	without := grid.Build(2026, model.Records{}, today)
	assert.Equal(t, without, withZero)
}

func TestBuildDeterministic(t *testing.T) {
	rs := model.Records{"2026-07-04": {Date: "2026-07-04", Title: "x", Level: 2}}
	today := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, grid.Build(2026, rs, today), grid.Build(2026, rs, today))
}

func TestWeeksAndMonthStarts(t *testing.T) {
	cells := grid.Build(2026, model.Records{}, time.Now())
	weeks := grid.Weeks(cells)
	require.Len(t, weeks, len(cells)/7)
	for _, w := range weeks {
		assert.Equal(t, time.Sunday, w[0].Weekday)
	}

	starts := grid.MonthStarts(weeks)
	assert.Equal(t, time.January, starts[0])
	seen := 0
	for _, m := range starts {
		if m != 0 {
			seen++
		}
	}
	assert.Equal(t, 12, seen)
}
