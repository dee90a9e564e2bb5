// Package verify is the HTTP client for the remote credential verification
// endpoint.
//
// Every request carries a short-lived HS256 bearer token whose subject is the
// service being verified. Responses are decoded defensively: non-2xx replies
// become *health.StatusError with the body preserved, and 2xx bodies that
// cannot be understood become *health.MalformedResponseError.
package verify
