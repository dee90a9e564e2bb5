// Package engine is the public surface of the credential health monitor.
//
// An Engine ties together the health service (cached, retried, rate limited
// verification), the existence prober, and the security scorer behind one
// alias table, and exposes them to a UI layer directly or over HTTP via
// RegisterHandlers.
package engine
