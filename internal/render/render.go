// Package render draws the heatmap and dashboard panels for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/heatlog/internal/grid"
	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/progress"
	"github.com/Tiliavir/heatlog/internal/stats"
)

const (
	filled = "■"
	future = "·"
	// cellWidth is one glyph plus a space.
	cellWidth = 2
	barWidth  = 30
)

// levelColors follows the usual contribution-graph palette, index = level.
var levelColors = [model.MaxLevel + 1]lipgloss.Color{
	"#2d333b",
	"#0e4429",
	"#006d32",
	"#26a641",
	"#39d353",
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	futureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

var weekdayLabels = [7]string{"", "Mon", "", "Wed", "", "Fri", ""}

func levelStyle(l model.Level) lipgloss.Style {
	if !l.Valid() {
		l = model.LevelNone
	}
	return lipgloss.NewStyle().Foreground(levelColors[l])
}

func cell(c grid.Cell) string {
	switch {
	case !c.InYear:
		return strings.Repeat(" ", cellWidth)
	case c.IsFuture:
		return futureStyle.Render(future) + " "
	default:
		return levelStyle(c.Level).Render(filled) + " "
	}
}

// Heatmap renders cells as 7 weekday rows by N week columns with a month
// header. Padding cells outside the year stay blank to keep columns aligned.
func Heatmap(year int, cells []grid.Cell) string {
	weeks := grid.Weeks(cells)
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d", year)))
	b.WriteString("\n")
	b.WriteString(monthHeader(weeks))
	b.WriteString("\n")

	for row := 0; row < 7; row++ {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-4s", weekdayLabels[row])))
		for _, w := range weeks {
			b.WriteString(cell(w[row]))
		}
		if row < 6 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func monthHeader(weeks [][]grid.Cell) string {
	starts := grid.MonthStarts(weeks)
	line := []rune(strings.Repeat(" ", 4+len(weeks)*cellWidth))
	for i, m := range starts {
		if m == 0 {
			continue
		}
		pos := 4 + i*cellWidth
		for j, r := range m.String()[:3] {
			if pos+j < len(line) {
				line[pos+j] = r
			}
		}
	}
	return labelStyle.Render(strings.TrimRight(string(line), " "))
}

// Legend renders the level scale.
func Legend() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Less "))
	for l := model.LevelNone; l <= model.MaxLevel; l++ {
		b.WriteString(levelStyle(l).Render(filled))
		b.WriteString(" ")
	}
	b.WriteString(labelStyle.Render("More"))
	return b.String()
}

func row(label string, value any) string {
	return labelStyle.Render(fmt.Sprintf("%-16s", label)) + valueStyle.Render(fmt.Sprint(value))
}

// Stats renders the dashboard counters.
func Stats(s stats.Summary, longest int) string {
	return panelStyle.Render(strings.Join([]string{
		row("Active days", s.TotalActiveDays),
		row("Current streak", s.CurrentStreak),
		row("Longest streak", longest),
		row("This month", s.ThisMonthCount),
	}, "\n"))
}

// PhaseLabel names a milestone band.
func PhaseLabel(phase int) string {
	switch phase {
	case 1:
		return "Getting started"
	case 2:
		return "Building momentum"
	case 3:
		return "Halfway there"
	case 4:
		return "Pushing through"
	case 5:
		return "Final stretch"
	default:
		return "Unknown"
	}
}

// Bar draws a percentage bar of barWidth cells.
func Bar(pct float64) string {
	n := int(pct / 100 * barWidth)
	n = min(max(n, 0), barWidth)
	return levelStyle(model.Level4).Render(strings.Repeat("█", n)) +
		futureStyle.Render(strings.Repeat("░", barWidth-n))
}

// Progress renders the goal progress panel.
func Progress(p progress.Progress, goal progress.Goal) string {
	return panelStyle.Render(strings.Join([]string{
		row("Goal", goal.Start.Format(time.DateOnly)+" → "+goal.End.Format(time.DateOnly)),
		Bar(p.Percentage) + " " + valueStyle.Render(fmt.Sprintf("%.1f%%", p.Percentage)),
		row("Elapsed days", fmt.Sprintf("%d / %d", p.ElapsedDays, p.TotalDays)),
		row("Remaining days", p.RemainingDays),
		row("Phase", fmt.Sprintf("%d · %s", p.Phase, PhaseLabel(p.Phase))),
	}, "\n"))
}

// Record renders one day's header line.
func Record(r model.DayRecord) string {
	head := titleStyle.Render(r.Date) + "  " + levelStyle(r.Level).Render(filled) + " " +
		valueStyle.Render(r.Title)
	if r.UpdatedAt != "" {
		head += labelStyle.Render("  updated " + r.UpdatedAt)
	}
	return head
}
