package lock

import "strings"

// unknownValue substitutes key segments that could not be resolved, so key
// construction itself never fails.
const unknownValue = "unknown"

// Key derives a deterministic lock key of the form "name:value1:value2:...".
// Two operations contend iff their keys are equal.
func Key(name string, values ...string) string {
	parts := make([]string, 0, len(values)+1)
	parts = append(parts, name)

	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			v = unknownValue
		}

		parts = append(parts, v)
	}

	return strings.Join(parts, ":")
}

// PairKey derives a lock key for an operation over a pair of identifiers,
// ordering the pair lexicographically so that both directions of a transfer
// contend on the same key. This makes opposite-direction transfers between
// the same two accounts serialize instead of racing on disjoint keys.
func PairKey(name, first, second string) string {
	if first > second {
		first, second = second, first
	}

	return Key(name, first, second)
}
