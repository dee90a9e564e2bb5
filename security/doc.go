// Package security scores the rotation hygiene of a credential set.
//
// A Scorer classifies every credential by the age of its effective date
// (last rotation, else creation), folds in live or persisted error state, and
// produces a 0-100 Summary plus an attention list of credentials that are
// stale or failing. Scoring is a pure function of its inputs and the clock.
package security
