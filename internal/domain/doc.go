// Package domain holds the Account and Transaction aggregates and the fixed
// business error taxonomy. Aggregates own their invariants: a balance never
// goes negative and a transaction's lifecycle only moves forward.
package domain
