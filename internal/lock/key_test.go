package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		values []string
		want   string
	}{
		{name: "no values", op: "transfer", values: nil, want: "transfer"},
		{name: "single value", op: "deposit", values: []string{"acc-1"}, want: "deposit:acc-1"},
		{name: "multiple values in order", op: "transfer", values: []string{"a", "b"}, want: "transfer:a:b"},
		{name: "empty value becomes placeholder", op: "deposit", values: []string{""}, want: "deposit:unknown"},
		{name: "blank value becomes placeholder", op: "transfer", values: []string{"a", "  "}, want: "transfer:a:unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.op, tt.values...))
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, Key("withdraw", "x", "y"), Key("withdraw", "x", "y"))
	assert.NotEqual(t, Key("deposit", "x"), Key("withdraw", "x"))
}

func TestPairKey(t *testing.T) {
	// Both directions of a pair contend on the same key.
	assert.Equal(t, PairKey("transfer", "a", "b"), PairKey("transfer", "b", "a"))
	assert.Equal(t, "transfer:a:b", PairKey("transfer", "b", "a"))

	// Distinct pairs stay in distinct contention domains.
	assert.NotEqual(t, PairKey("transfer", "a", "b"), PairKey("transfer", "a", "c"))

	// Same identifier twice is a valid, stable key.
	assert.Equal(t, "transfer:a:a", PairKey("transfer", "a", "a"))
}
