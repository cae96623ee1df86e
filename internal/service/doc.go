// Package service orchestrates account and transfer commands. Every command
// wraps its unit of work in the distributed lock guard before touching the
// stores, so the lock is held for the full read-mutate-write sequence.
package service
