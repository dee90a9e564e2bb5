package health

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"
)

// UnknownErrorMessage is reported when no extractor finds a usable message.
const UnknownErrorMessage = "Unknown error"

// maxMessageLen bounds raw bodies surfaced as messages.
const maxMessageLen = 256

// MessageSource is everything a failed check knows about why it failed.
type MessageSource struct {
	// Message is a structured reason reported by the verifier.
	Message string
	// Payload is a raw response body.
	Payload []byte
	// Err is the error returned by the executor, if any.
	Err error
}

// MessageExtractor returns a message and true when it can explain the failure.
// Extractors are total and side-effect free.
type MessageExtractor func(src MessageSource) (string, bool)

// DefaultExtractors returns the standard extraction chain: structured field,
// nested body, raw string.
func DefaultExtractors() []MessageExtractor {
	return []MessageExtractor{
		StructuredField,
		NestedBody,
		RawString,
	}
}

// ExtractMessage runs extractors in order and returns the first message found,
// or UnknownErrorMessage.
func ExtractMessage(src MessageSource, extractors ...MessageExtractor) string {
	for _, extract := range extractors {
		if msg, ok := extract(src); ok {
			return msg
		}
	}
	return UnknownErrorMessage
}

// StructuredField uses the verifier's own message field.
func StructuredField(src MessageSource) (string, bool) {
	msg := strings.TrimSpace(src.Message)
	return msg, msg != ""
}

// NestedBody parses a JSON body, from the payload or a StatusError, and looks
// for message, error, error.message, error.details and errors[0].message.
func NestedBody(src MessageSource) (string, bool) {
	for _, body := range bodies(src) {
		var doc any
		if err := json.Unmarshal(body, &doc); err != nil {
			continue
		}
		if msg, ok := messageFrom(doc); ok {
			return msg, true
		}
	}
	return "", false
}

// RawString uses a non-JSON body verbatim, or the error text for errors that
// are not decoding failures.
func RawString(src MessageSource) (string, bool) {
	for _, body := range bodies(src) {
		text := strings.TrimSpace(string(body))
		if text == "" || looksLikeJSON(text) || !utf8.ValidString(text) {
			continue
		}
		return truncate(text), true
	}

	if src.Err == nil {
		return "", false
	}
	var malformed *MalformedResponseError
	if errors.As(src.Err, &malformed) {
		return "", false
	}
	msg := strings.TrimSpace(src.Err.Error())
	return msg, msg != ""
}

func bodies(src MessageSource) [][]byte {
	var out [][]byte
	if len(src.Payload) > 0 {
		out = append(out, src.Payload)
	}
	var statusErr *StatusError
	if errors.As(src.Err, &statusErr) && len(statusErr.Body) > 0 {
		out = append(out, statusErr.Body)
	}
	return out
}

func messageFrom(doc any) (string, bool) {
	switch v := doc.(type) {
	case string:
		return nonEmpty(v)
	case map[string]any:
		if msg, ok := stringField(v, "message"); ok {
			return msg, true
		}
		switch e := v["error"].(type) {
		case string:
			if msg, ok := nonEmpty(e); ok {
				return msg, true
			}
		case map[string]any:
			if msg, ok := stringField(e, "message"); ok {
				return msg, true
			}
			if msg, ok := stringField(e, "details"); ok {
				return msg, true
			}
		}
		if errs, ok := v["errors"].([]any); ok && len(errs) > 0 {
			if first, ok := errs[0].(map[string]any); ok {
				return stringField(first, "message")
			}
		}
	}
	return "", false
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok {
		return "", false
	}
	return nonEmpty(s)
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
