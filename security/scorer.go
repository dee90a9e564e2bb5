package security

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/jonwraymond/credwatch/credential"
	"github.com/jonwraymond/credwatch/health"
)

// Summary is the aggregate hygiene of a credential set.
type Summary struct {
	Score      int       `json:"score"`
	TotalKeys  int       `json:"totalKeys"`
	FreshKeys  int       `json:"freshKeys"`
	AgingKeys  int       `json:"agingKeys"`
	StaleKeys  int       `json:"staleKeys"`
	ErrorKeys  int       `json:"errorKeys"`
	ComputedAt time.Time `json:"computedAt"`
}

// AttentionEntry is one credential an operator should look at.
type AttentionEntry struct {
	Service  string        `json:"service"`
	Age      Age           `json:"age"`
	Class    AgeClass      `json:"class"`
	Erroring bool          `json:"erroring"`
	Status   health.Status `json:"status"`
}

// Scorer computes summaries and attention lists under one policy.
// It is stateless apart from its configuration and safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer, applying defaults to zero fields.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg.withDefaults()}, nil
}

// Config returns the effective policy.
func (s *Scorer) Config() Config {
	return s.cfg
}

type assessment struct {
	service  string
	age      Age
	class    AgeClass
	status   health.Status
	erroring bool
}

// assess classifies every record. A live result for the service overrides the
// persisted status unless it is still checking; the latest live result wins.
// Records and results are matched by health.CanonicalName.
func (s *Scorer) assess(records []credential.Record, live []health.HealthResult, now time.Time) []assessment {
	latest := make(map[string]health.HealthResult, len(live))
	for _, r := range live {
		if r.Status == health.StatusChecking {
			continue
		}
		key := health.CanonicalName(r.Service)
		if prev, ok := latest[key]; ok && prev.CheckedAt.After(r.CheckedAt) {
			continue
		}
		latest[key] = r
	}

	out := make([]assessment, 0, len(records))
	for _, rec := range records {
		effective, known := rec.EffectiveDate()
		a := assessment{
			service: rec.Service,
			age:     AgeOf(effective, known, now),
			class:   s.cfg.Classify(effective, known, now),
			status:  rec.LastCheckedStatus,
		}
		if r, ok := latest[health.CanonicalName(rec.Service)]; ok {
			a.status = r.Status
		}
		a.erroring = a.status == health.StatusError
		out = append(out, a)
	}
	return out
}

// Summarize tallies records by age class and error state and scores the set.
// An empty set scores 100.
func (s *Scorer) Summarize(records []credential.Record, live []health.HealthResult) Summary {
	now := s.cfg.Now()
	sum := Summary{ComputedAt: now}

	for _, a := range s.assess(records, live, now) {
		sum.TotalKeys++
		switch a.class {
		case ClassFresh:
			sum.FreshKeys++
		case ClassAging:
			sum.AgingKeys++
		default:
			sum.StaleKeys++
		}
		if a.erroring {
			sum.ErrorKeys++
		}
	}

	sum.Score = s.score(sum)
	return sum
}

func (s *Scorer) score(sum Summary) int {
	if sum.TotalKeys == 0 {
		return 100
	}
	total := float64(sum.TotalKeys)
	fresh, aging, stale, errs := float64(sum.FreshKeys), float64(sum.AgingKeys), float64(sum.StaleKeys), float64(sum.ErrorKeys)

	score := 100.0
	score -= (aging*0.5 + stale) / total * s.cfg.AgeWeight
	score -= errs / total * s.cfg.ErrorWeight
	// The fresh bonus goes negative when errors outnumber fresh keys.
	score -= s.cfg.BasePenalty
	score += (fresh - errs) / total * s.cfg.FreshBonus

	return int(math.Round(min(max(score, 0), 100)))
}

// AttentionList returns the stale or erroring credentials, erroring ones
// first, then oldest first. Unknown ages sort as the oldest; ties are broken
// by service name.
func (s *Scorer) AttentionList(records []credential.Record, live []health.HealthResult) []AttentionEntry {
	now := s.cfg.Now()

	var entries []AttentionEntry
	for _, a := range s.assess(records, live, now) {
		if a.class != ClassStale && !a.erroring {
			continue
		}
		entries = append(entries, AttentionEntry{
			Service:  a.service,
			Age:      a.age,
			Class:    a.class,
			Erroring: a.erroring,
			Status:   a.status,
		})
	}

	slices.SortStableFunc(entries, func(x, y AttentionEntry) int {
		if x.Erroring != y.Erroring {
			if x.Erroring {
				return -1
			}
			return 1
		}
		if x.Age.Older(y.Age) {
			return -1
		}
		if y.Age.Older(x.Age) {
			return 1
		}
		return strings.Compare(x.Service, y.Service)
	})
	return entries
}
