package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday_UsesLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	// 22:30 UTC is already the next day in Nairobi.
	now := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-06-01", Today(now, time.UTC).String())
	assert.Equal(t, "2025-06-02", Today(now, nairobi).String())
	assert.Equal(t, "2025-06-01", Today(now, nil).String())
}

func TestDate_Compare(t *testing.T) {
	a, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	b, err := ParseDate(" 2025-06-02 ")
	require.NoError(t, err)

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, a.AddDays(1).Equal(b))

	_, err = ParseDate("01/06/2025")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Day  Date  `json:"day"`
		Next *Date `json:"next"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2025-12-24","next":null}`), &payload))
	assert.Equal(t, "2025-12-24", payload.Day.String())
	assert.Nil(t, payload.Next)

	out, err := json.Marshal(payload.Day)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-12-24"`, string(out))

	err = json.Unmarshal([]byte(`{"day":"24-12-2025"}`), &payload)
	assert.Error(t, err)
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"time", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), "2025-03-09"},
		{"string", "2025-03-09", "2025-03-09"},
		{"timestamp string", "2025-03-09T00:00:00Z", "2025-03-09"},
		{"bytes", []byte("2025-03-09"), "2025-03-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.value))
			assert.Equal(t, tt.want, d.String())

			v, err := d.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
}
