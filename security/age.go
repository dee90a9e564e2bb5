package security

import (
	"fmt"
	"time"
)

// AgeClass buckets a credential by time since its effective date.
type AgeClass int

const (
	// ClassFresh is younger than FreshWithin.
	ClassFresh AgeClass = iota
	// ClassAging is between FreshWithin and StaleAfter.
	ClassAging
	// ClassStale is at least StaleAfter old, or of unknown age.
	ClassStale
)

var classNames = [...]string{
	ClassFresh: "fresh",
	ClassAging: "aging",
	ClassStale: "stale",
}

func (c AgeClass) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("AgeClass(%d)", int(c))
	}
	return classNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c AgeClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Age is a credential's age in whole days. When Known is false the
// credential has no effective date and is treated as infinitely old.
type Age struct {
	Days  int  `json:"days"`
	Known bool `json:"known"`
}

// UnknownAge is the sentinel for credentials with no effective date.
var UnknownAge = Age{}

// AgeOf returns the age of effective at now. Future dates count as zero days.
func AgeOf(effective time.Time, known bool, now time.Time) Age {
	if !known {
		return UnknownAge
	}
	elapsed := now.Sub(effective)
	if elapsed < 0 {
		elapsed = 0
	}
	return Age{Days: int(elapsed / Day), Known: true}
}

// Older reports whether a sorts as older than b. Unknown is older than any
// known age.
func (a Age) Older(b Age) bool {
	switch {
	case !a.Known:
		return b.Known
	case !b.Known:
		return false
	default:
		return a.Days > b.Days
	}
}

func (a Age) String() string {
	if !a.Known {
		return "unknown"
	}
	if a.Days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", a.Days)
}

// Classify returns the class for a credential whose effective date is
// effective (known reports whether it has one) at now. It has no hidden state.
func (c Config) Classify(effective time.Time, known bool, now time.Time) AgeClass {
	if !known {
		return ClassStale
	}
	c = c.withDefaults()
	elapsed := now.Sub(effective)
	switch {
	case elapsed < c.FreshWithin:
		return ClassFresh
	case elapsed < c.StaleAfter:
		return ClassAging
	default:
		return ClassStale
	}
}
