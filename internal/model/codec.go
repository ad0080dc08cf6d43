package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// Collector gathers records whose raw keys still need normalizing. Two raw
// keys may land on the same DateKey; the record with the later UpdatedAt
// wins, and on a tie the one stored under the canonical key.
type Collector struct {
	loc *time.Location
	out Records
	raw map[string]string
}

// NewCollector returns a Collector normalizing dates in loc (nil = Local).
func NewCollector(loc *time.Location) *Collector {
	return &Collector{loc: loc, out: Records{}, raw: map[string]string{}}
}

// Add normalizes rawKey, forces rec.Date to it and keeps rec unless an
// earlier record for the same day is preferred. A level outside 0..4 is
// an error.
func (c *Collector) Add(rawKey string, rec DayRecord) error {
	key, err := timecalc.NormalizeDateKey(rawKey, c.loc)
	if err != nil {
		return fmt.Errorf("record key: %w", err)
	}
	if !rec.Level.Valid() {
		return fmt.Errorf("record %s: level %d out of range 0..%d", key, rec.Level, MaxLevel)
	}
	rec.Date = key
	if cur, ok := c.out[key]; ok && !replaces(rec, rawKey, cur, c.raw[key], key) {
		return nil
	}
	c.out[key] = rec
	c.raw[key] = rawKey
	return nil
}

// Records returns the collected mapping.
func (c *Collector) Records() Records {
	return c.out
}

// replaces reports whether next (from nextRaw) should win over cur (from
// curRaw) for the same DateKey.
func replaces(next DayRecord, nextRaw string, cur DayRecord, curRaw, key string) bool {
	if next.UpdatedAt != cur.UpdatedAt {
		return next.UpdatedAt > cur.UpdatedAt
	}
	if (nextRaw == key) != (curRaw == key) {
		return nextRaw == key
	}
	return nextRaw < curRaw
}

// DecodeRecords parses a serialized date->record mapping. Keys are
// normalized to YYYY-MM-DD, each record's Date is forced to its key and
// out-of-range levels are rejected.
func DecodeRecords(data []byte) (Records, error) {
	var raw map[string]DayRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := NewCollector(nil)
	for _, k := range keys {
		if err := c.Add(k, raw[k]); err != nil {
			return nil, err
		}
	}
	return c.Records(), nil
}

// EncodeRecords serializes the full mapping. A nil mapping encodes as {}.
func EncodeRecords(rs Records) ([]byte, error) {
	if rs == nil {
		rs = Records{}
	}
	return json.MarshalIndent(rs, "", "  ")
}
