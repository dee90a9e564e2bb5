package security_test

import (
	"fmt"
	"time"

	"github.com/jonwraymond/credwatch/credential"
	"github.com/jonwraymond/credwatch/health"
	"github.com/jonwraymond/credwatch/security"
)

func ExampleScorer_Summarize() {
	now := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	scorer, _ := security.NewScorer(security.Config{Now: func() time.Time { return now }})

	records := []credential.Record{
		{Service: "github", UpdatedAt: now.Add(-10 * security.Day)},
		{Service: "stripe", CreatedAt: now.Add(-400 * security.Day)},
	}
	live := []health.HealthResult{{Service: "github", Status: health.StatusOperational, CheckedAt: now}}

	sum := scorer.Summarize(records, live)
	fmt.Printf("score=%d fresh=%d stale=%d errors=%d\n", sum.Score, sum.FreshKeys, sum.StaleKeys, sum.ErrorKeys)

	for _, e := range scorer.AttentionList(records, live) {
		fmt.Printf("%s: %s, %s\n", e.Service, e.Class, e.Age)
	}
	// Output:
	// score=75 fresh=1 stale=1 errors=0
	// stripe: stale, 400 days
}
