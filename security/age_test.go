package security

import (
	"testing"
	"time"
)

var refNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func TestClassify_Boundaries(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		age   time.Duration
		known bool
		want  AgeClass
	}{
		{"today", 0, true, ClassFresh},
		{"10 days", 10 * Day, true, ClassFresh},
		{"just under 60 days", 60*Day - time.Second, true, ClassFresh},
		{"exactly 60 days", 60 * Day, true, ClassAging},
		{"120 days", 120 * Day, true, ClassAging},
		{"just under 180 days", 180*Day - time.Second, true, ClassAging},
		{"exactly 180 days", 180 * Day, true, ClassStale},
		{"400 days", 400 * Day, true, ClassStale},
		{"future date", -5 * Day, true, ClassFresh},
		{"unknown", 0, false, ClassStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Classify(refNow.Add(-tt.age), tt.known, refNow); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	cfg := Config{FreshWithin: 30 * Day, StaleAfter: 90 * Day}

	if got := cfg.Classify(refNow.Add(-45*Day), true, refNow); got != ClassAging {
		t.Errorf("45 days = %v, want aging", got)
	}
	if got := cfg.Classify(refNow.Add(-90*Day), true, refNow); got != ClassStale {
		t.Errorf("90 days = %v, want stale", got)
	}
}

func TestAgeOf(t *testing.T) {
	if got := AgeOf(time.Time{}, false, refNow); got != UnknownAge || got.Known {
		t.Errorf("AgeOf(unknown) = %+v, want UnknownAge", got)
	}
	if got := AgeOf(refNow.Add(-400*Day-3*time.Hour), true, refNow); got != (Age{Days: 400, Known: true}) {
		t.Errorf("AgeOf(400d) = %+v", got)
	}
	if got := AgeOf(refNow.Add(Day), true, refNow); got != (Age{Days: 0, Known: true}) {
		t.Errorf("AgeOf(future) = %+v, want 0 days", got)
	}
}

func TestAge_Older(t *testing.T) {
	young := Age{Days: 10, Known: true}
	old := Age{Days: 400, Known: true}

	tests := []struct {
		a, b Age
		want bool
	}{
		{old, young, true},
		{young, old, false},
		{old, old, false},
		{UnknownAge, old, true},
		{old, UnknownAge, false},
		{UnknownAge, UnknownAge, false},
	}

	for _, tt := range tests {
		if got := tt.a.Older(tt.b); got != tt.want {
			t.Errorf("%v.Older(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAge_String(t *testing.T) {
	tests := map[Age]string{
		UnknownAge:               "unknown",
		{Days: 1, Known: true}:   "1 day",
		{Days: 400, Known: true}: "400 days",
	}
	for age, want := range tests {
		if got := age.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestAgeClass_String(t *testing.T) {
	if ClassFresh.String() != "fresh" || ClassAging.String() != "aging" || ClassStale.String() != "stale" {
		t.Error("unexpected class names")
	}
	if got := AgeClass(9).String(); got != "AgeClass(9)" {
		t.Errorf("String() = %q", got)
	}
}
