package model

import "fmt"

// Microseconds is a virtual-time span, adopted for human-readable logging
// anywhere a raw integer count of microseconds would otherwise be printed
// (diagnostic logs, overrun warnings).
type Microseconds int64

// Humanized returns a compact string with an automatically chosen unit
// (µs, ms, s).
func (d Microseconds) Humanized() string {
	v := float64(d)
	switch {
	case d >= 1_000_000 || d <= -1_000_000:
		return fmt.Sprintf("%.2fs", v/1_000_000)
	case d >= 1_000 || d <= -1_000:
		return fmt.Sprintf("%.2fms", v/1_000)
	default:
		return fmt.Sprintf("%dµs", int64(d))
	}
}

// Milliseconds returns the span as fractional milliseconds.
func (d Microseconds) Milliseconds() float64 { return float64(d) / 1_000 }

// Seconds returns the span as fractional seconds.
func (d Microseconds) Seconds() float64 { return float64(d) / 1_000_000 }
