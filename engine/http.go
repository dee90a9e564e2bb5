package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/credwatch/health"
	"github.com/jonwraymond/credwatch/observe"
)

const maxRequestBytes = 1 << 20

// ResultResponse is the JSON form of one health result.
type ResultResponse struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	LatencyMS *int64 `json:"latencyMs,omitempty"`
	Message   string `json:"message,omitempty"`
	CheckedAt string `json:"checkedAt"`
}

// ExistenceResponse is the JSON form of one existence probe answer.
type ExistenceResponse struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type batchRequest struct {
	Services    []string `json:"services"`
	SkipCache   bool     `json:"skipCache"`
	Concurrency int      `json:"concurrency"`
}

type testRequest struct {
	Secret string `json:"secret"`
}

func toResponse(r health.HealthResult) ResultResponse {
	resp := ResultResponse{
		Service:   r.Service,
		Status:    r.Status.String(),
		Message:   r.Message,
		CheckedAt: r.CheckedAt.UTC().Format(time.RFC3339),
	}
	if r.Status == health.StatusOperational {
		ms := r.Latency.Milliseconds()
		resp.LatencyMS = &ms
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// LivenessHandler returns an HTTP handler for liveness probes.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler reports 503 while the credential store is unreachable.
func ReadinessHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain")
		if err := e.Ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNAVAILABLE"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// CheckHandler serves GET /credentials/{service}/health. The query parameter
// skip_cache=true forces a live check.
func CheckHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.ParseBool(r.URL.Query().Get("skip_cache"))
		result := e.CheckOne(r.Context(), r.PathValue("service"), skip)
		writeJSON(w, http.StatusOK, toResponse(result))
	}
}

// TestHandler serves POST /credentials/{service}/test with body
// {"secret": "..."}. The secret is verified but never stored or cached.
func TestHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req testRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		result := e.TestWithoutSaving(r.Context(), r.PathValue("service"), req.Secret)
		writeJSON(w, http.StatusOK, toResponse(result))
	}
}

// BatchHandler serves POST /credentials/health with body
// {"services": [...], "skipCache": bool, "concurrency": n}. Results are in
// request order.
func BatchHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		results := e.CheckAll(r.Context(), req.Services, health.BatchOptions{
			Concurrency: req.Concurrency,
			SkipCache:   req.SkipCache,
		})

		out := make([]ResultResponse, len(results))
		for i, result := range results {
			out[i] = toResponse(result)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ExistenceHandler serves POST /credentials/exists with body
// {"services": [...]}, keyed by the identifiers as sent.
func ExistenceHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		found, err := e.ProbeExistence(r.Context(), req.Services)
		if err != nil {
			e.mw.Logger().Error(r.Context(), "existence probe failed", observe.F("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "credential store unavailable"})
			return
		}

		out := make(map[string]ExistenceResponse, len(found))
		for name, ex := range found {
			out[name] = ExistenceResponse{
				Service:   ex.Service,
				Status:    ex.Status().String(),
				CreatedAt: formatTime(ex.CreatedAt),
				UpdatedAt: formatTime(ex.UpdatedAt),
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// InvalidateHandler serves DELETE /credentials/{service}/cache, and
// DELETE /credentials/cache for every service.
func InvalidateHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if service := r.PathValue("service"); service != "" {
			e.InvalidateCache(service)
		} else {
			e.InvalidateAllCache()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SecurityHandler serves GET /credentials/security: the score summary and
// attention list over every stored credential.
func SecurityHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := e.Report(r.Context())
		if err != nil {
			e.mw.Logger().Error(r.Context(), "security report failed", observe.F("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "credential store unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// HandlerOption configures RegisterHandlers.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	authKey []byte
}

// WithBearerAuth protects every credential route with RequireBearer. Probe
// routes stay open.
func WithBearerAuth(key []byte) HandlerOption {
	return func(o *handlerOptions) {
		o.authKey = key
	}
}

// RegisterHandlers registers the probe and credential routes on mux.
func RegisterHandlers(mux *http.ServeMux, e *Engine, opts ...HandlerOption) {
	var o handlerOptions
	for _, opt := range opts {
		opt(&o)
	}

	protect := func(h http.Handler) http.Handler {
		if len(o.authKey) == 0 {
			return h
		}
		return RequireBearer(o.authKey, h)
	}

	mux.HandleFunc("GET /healthz", LivenessHandler())
	mux.HandleFunc("GET /readyz", ReadinessHandler(e))

	mux.Handle("GET /credentials/{service}/health", protect(CheckHandler(e)))
	mux.Handle("POST /credentials/{service}/test", protect(TestHandler(e)))
	mux.Handle("POST /credentials/health", protect(BatchHandler(e)))
	mux.Handle("POST /credentials/exists", protect(ExistenceHandler(e)))
	mux.Handle("DELETE /credentials/{service}/cache", protect(InvalidateHandler(e)))
	mux.Handle("DELETE /credentials/cache", protect(InvalidateHandler(e)))
	mux.Handle("GET /credentials/security", protect(SecurityHandler(e)))
}
