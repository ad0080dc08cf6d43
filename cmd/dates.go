package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// parseDateArg accepts "today", "yesterday" or anything NormalizeDateKey
// understands and returns a DateKey.
func parseDateArg(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return timecalc.DateKey(now), nil
	case "yesterday":
		return timecalc.DateKey(timecalc.AddDays(now, -1)), nil
	}
	key, err := timecalc.NormalizeDateKey(strings.TrimSpace(s), now.Location())
	if err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD, today or yesterday", s)
	}
	return key, nil
}

func nowIn(loc *time.Location) time.Time {
	return time.Now().In(loc)
}
