// Package credential reads credential metadata and answers whether a
// credential exists for each integration.
//
// A Store returns Records, which carry timestamps and the last persisted check
// status but never the secret itself. Stores are created by name through a
// Registry ("memory", "postgres"). Aliases maps the identifiers callers use to
// the canonical ones the store is keyed by, and a Prober turns one bulk read
// into an Existence answer for every requested service without contacting the
// verification endpoint.
package credential
