package ir

import (
	"fmt"
	"time"
)

// Layout is the canonical text form of an instant in MMS tables.
const Layout = "2006/01/02 15:04:05"

// DispatchInterval is the market's scheduling granularity.
const DispatchInterval = 5 * time.Minute

// marketDayLag shifts an instant back so that 04:05:00 is the first interval
// of its own calendar day and 04:00:00 the last of the previous one.
const marketDayLag = 4*time.Hour + time.Second

// Instant is a dispatch instant at seconds precision.
// The zero value is not a valid instant; use ParseInstant or NewInstant.
type Instant struct {
	t time.Time
}

// NewInstant wraps a time, truncated to whole seconds.
// Market time has no zone or daylight saving, so the wall clock is kept as UTC.
func NewInstant(t time.Time) Instant {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return Instant{t: wall}
}

// ParseInstant parses the canonical form YYYY/MM/DD HH:MM:SS.
func ParseInstant(s string) (Instant, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Instant{}, fmt.Errorf("parse instant %q: expected %s", s, Layout)
	}
	return Instant{t: t}, nil
}

// MustParseInstant is ParseInstant for literals known to be valid.
func MustParseInstant(s string) Instant {
	at, err := ParseInstant(s)
	if err != nil {
		panic(err)
	}
	return at
}

// String returns the canonical text form.
func (i Instant) String() string {
	return i.t.Format(Layout)
}

// Time returns the instant as a UTC wall-clock time.
func (i Instant) Time() time.Time {
	return i.t
}

// IsZero reports whether the instant is unset.
func (i Instant) IsZero() bool {
	return i.t.IsZero()
}

// Add returns the instant shifted by d.
func (i Instant) Add(d time.Duration) Instant {
	return Instant{t: i.t.Add(d)}
}

// Before reports whether i is strictly earlier than o.
func (i Instant) Before(o Instant) bool {
	return i.t.Before(o.t)
}

// Aligned reports whether the instant falls on a 5-minute boundary.
func (i Instant) Aligned() bool {
	return i.t.Second() == 0 && i.t.Minute()%5 == 0
}

// MarketDay returns the SETTLEMENTDATE (D 00:00:00) of the market day
// [D 04:05:00, D+1 04:05:00) containing the instant.
func (i Instant) MarketDay() Instant {
	shifted := i.t.Add(-marketDayLag)
	return Instant{t: time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)}
}

// MarshalText implements encoding.TextMarshaler.
func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Instant) UnmarshalText(b []byte) error {
	at, err := ParseInstant(string(b))
	if err != nil {
		return err
	}
	*i = at
	return nil
}

// DispatchSequence lists the dispatch instants in (start, end], one per
// 5-minute interval. The result is empty when end is not after start.
func DispatchSequence(start, end Instant) []Instant {
	seq := []Instant{}
	for cur := start.Add(DispatchInterval); !end.Before(cur); cur = cur.Add(DispatchInterval) {
		seq = append(seq, cur)
	}
	return seq
}
