package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Formats(t *testing.T) {
	want := Date{Year: 2026, Month: time.January, Day: 2}
	ts := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC).Unix()

	for _, s := range []string{
		"2026-01-02",
		"2026-01-02T00:00:00Z",
		"2026-01-02T23:59:59.999+09:00",
		"2026-01-02T10:00:00",
		time.Unix(ts, 0).UTC().Format(time.RFC3339),
	} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("02/01/2026")
	assert.Error(t, err)
}

func TestDate_Order(t *testing.T) {
	a := MustParseDate("2025-12-31")
	b := MustParseDate("2026-01-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, b, a.AddDays(1))
	assert.Equal(t, NewDate(2026, time.February, 1), NewDate(2026, time.January, 32))
}

func TestDate_JSON(t *testing.T) {
	var p PricePoint
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-01-02T00:00:00","close":101.5}`), &p))
	assert.Equal(t, "2026-01-02", p.Date.String())
	require.NotNil(t, p.Close)

	b, err := json.Marshal(MergedPoint{Date: p.Date, Price: p.Close})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-01-02","price":101.5}`, string(b))

	var missing PricePoint
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-01-02"}`), &missing))
	assert.Nil(t, missing.Close)
}

func TestDate_MapKey(t *testing.T) {
	m := map[Date]int{MustParseDate("2026-01-02T00:00:00Z"): 1}
	_, ok := m[MustParseDate("2026-01-02")]
	assert.True(t, ok)
}
