package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/heatlog/internal/model"
)

func TestDecodeRecordsRejectsLevelOutOfRange(t *testing.T) {
	for _, data := range []string{
		`{"2026-01-01": {"title": "x", "level": 9}}`,
		`{"2026-01-02": {"title": "y", "level": -3}}`,
	} {
		_, err := model.DecodeRecords([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestDecodeRecordsCollidingKeysIsDeterministic(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "tie goes to canonical key",
			data: `{"2026-01-05": {"title": "a", "level": 1}, "2026/1/5": {"title": "b", "level": 1}}`,
			want: "a",
		},
		{
			name: "later updatedAt wins",
			data: `{"2026-01-05": {"title": "a", "level": 1, "updatedAt": "2026-01-05T08:00:00.000Z"},
				"2026/1/5": {"title": "b", "level": 1, "updatedAt": "2026-01-06T08:00:00.000Z"}}`,
			want: "b",
		},
		{
			name: "non-canonical tie is ordered by raw key",
			data: `{"2026.1.5": {"title": "dot", "level": 1}, "2026/1/5": {"title": "slash", "level": 1}}`,
			want: "dot",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				rs, err := model.DecodeRecords([]byte(tt.data))
				require.NoError(t, err)
				require.Len(t, rs, 1)
				require.Equal(t, tt.want, rs["2026-01-05"].Title, "decode %d", i)
			}
		})
	}
}

func TestCollectorOrderIndependent(t *testing.T) {
	a := model.DayRecord{Title: "a", Level: 1}
	b := model.DayRecord{Title: "b", Level: 2}

	c1 := model.NewCollector(nil)
	require.NoError(t, c1.Add("2026/1/5", b))
	require.NoError(t, c1.Add("2026-01-05", a))

	c2 := model.NewCollector(nil)
	require.NoError(t, c2.Add("2026-01-05", a))
	require.NoError(t, c2.Add("2026/1/5", b))

	assert.Equal(t, c1.Records(), c2.Records())
	assert.Equal(t, "a", c1.Records()["2026-01-05"].Title)
	assert.Equal(t, "2026-01-05", c1.Records()["2026-01-05"].Date)
}
