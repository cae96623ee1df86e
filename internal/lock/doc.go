// Package lock provides the distributed mutual-exclusion guard for account
// operations: deterministic key derivation and scoped acquire/execute/release
// over a shared Redis instance. Operations contending on the same key execute
// strictly serially across all service instances.
package lock
