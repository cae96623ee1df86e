// Package log defines the leveled, structured logging facade used by the
// remittance service. Concrete backends (see the zap package) implement
// Logger; code that only emits logs depends on this package alone.
package log
