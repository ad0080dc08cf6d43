package model

import "sort"

// Level is the intensity recorded for a day. Zero means "no record".
type Level int

const (
	LevelNone Level = iota
	Level1
	Level2
	Level3
	Level4
)

// MaxLevel is the highest intensity tier.
const MaxLevel = Level4

// Valid reports whether l is inside the closed range 0..4.
func (l Level) Valid() bool {
	return l >= LevelNone && l <= MaxLevel
}

// DayRecord is a single journal entry for one calendar day.
type DayRecord struct {
	Date      string `json:"date,omitempty"`
	Title     string `json:"title"`
	Level     Level  `json:"level"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Active reports whether the record counts towards stats and the heatmap.
func (r DayRecord) Active() bool {
	return r.Level > LevelNone
}

// Records maps a DateKey to its DayRecord.
type Records map[string]DayRecord

// Get returns the record stored under key.
func (rs Records) Get(key string) (DayRecord, bool) {
	r, ok := rs[key]
	return r, ok
}

// LevelOf returns the level for key; a missing key reads as LevelNone.
func (rs Records) LevelOf(key string) Level {
	if r, ok := rs[key]; ok {
		return r.Level
	}
	return LevelNone
}

// Clone returns a shallow copy that can be handed to read-only consumers.
func (rs Records) Clone() Records {
	out := make(Records, len(rs))
	for k, v := range rs {
		out[k] = v
	}
	return out
}

// SortedKeys returns all date keys in ascending order.
func (rs Records) SortedKeys() []string {
	keys := make([]string, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
