package fields_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/fields"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return m
}

func TestInt_FirstPresentAliasWins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"first alias", `{"W": 15, "Wins": 3}`, 15},
		{"second alias", `{"Wins": 10}`, 10},
		{"third alias", `{"wins": 7}`, 7},
		{"zero is present", `{"W": 0, "Wins": 9}`, 0},
		{"null skipped", `{"W": null, "Wins": 4}`, 4},
		{"numeric string", `{"wins": "12"}`, 12},
		{"float truncated", `{"wins": 12.0}`, 12},
		{"absent", `{"L": 3}`, 0},
		{"garbage", `{"W": "lots"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields.Int(decode(t, tt.raw), "W", "Wins", "wins")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString_FormatsNumbers(t *testing.T) {
	m := decode(t, `{"Round": 7, "round": "ignored", "code": "TEL", "pct": 83.5}`)

	assert.Equal(t, "7", fields.String(m, "Round", "round"))
	assert.Equal(t, "TEL", fields.String(m, "TeamCode", "code"))
	assert.Equal(t, "83.5", fields.String(m, "pct"))
	assert.Equal(t, "", fields.String(m, "missing"))
	assert.Equal(t, "", fields.String(nil, "missing"))
}

func TestFloatOK(t *testing.T) {
	m := decode(t, `{"a": 61.2, "b": "40.5", "c": "n/a"}`)

	f, ok := fields.FloatOK(m, "a")
	assert.True(t, ok)
	assert.InDelta(t, 61.2, f, 1e-9)

	f, ok = fields.FloatOK(m, "b")
	assert.True(t, ok)
	assert.InDelta(t, 40.5, f, 1e-9)

	_, ok = fields.FloatOK(m, "c")
	assert.False(t, ok)

	_, ok = fields.FloatOK(m, "missing")
	assert.False(t, ok)
}

func TestMapAndArray_TypeMismatchIsAbsent(t *testing.T) {
	m := decode(t, `{"stats": {"x": 1}, "games": [1, 2], "bad_games": "oops", "bad_stats": []}`)

	assert.NotNil(t, fields.Map(m, "stats"))
	assert.Nil(t, fields.Map(m, "bad_stats"))
	assert.Equal(t, map[string]interface{}{"x": float64(1)}, fields.Map(m, "bad_stats", "stats"))

	assert.Len(t, fields.Array(m, "games"), 2)
	assert.Nil(t, fields.Array(m, "bad_games"))
	assert.Nil(t, fields.Array(nil, "games"))
}

func TestFloatOK_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		v    interface{}
	}{
		{"NaN string", "NaN"},
		{"Inf string", "Inf"},
		{"negative infinity string", "-infinity"},
		{"padded infinity string", " +Infinity "},
		{"NaN json number", json.Number("NaN")},
		{"Inf json number", json.Number("Inf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := map[string]interface{}{"pct": tt.v}

			_, ok := fields.FloatOK(m, "pct")
			assert.False(t, ok)
			assert.Equal(t, 0.0, fields.Float(m, "pct"))
			assert.Equal(t, 0, fields.Int(m, "pct"))
		})
	}
}
