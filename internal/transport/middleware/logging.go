package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi"
)

// HTTPRecorder receives one observation per served request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, statusCode int, d time.Duration)
}

const (
	filtered = "[FILTERED]"

	// maxLoggedBody bounds how much of a request or response body is kept.
	maxLoggedBody = 4096
)

// secretMarkers match header names and body keys whose values never reach the log.
var secretMarkers = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"key",
	"session",
	"credential",
	"auth",
	"cookie",
}

func isSecret(name string) bool {
	name = strings.ToLower(name)
	for _, m := range secretMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs each request at debug and each response at a level
// derived from its status, and feeds the recorder the matched route pattern.
func LoggingMiddleware(logger *slog.Logger, recorder HTTPRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			if logger.Enabled(r.Context(), slog.LevelDebug) {
				logger.DebugContext(r.Context(), "incoming request",
					"method", r.Method,
					"path", r.URL.Path,
					"query", r.URL.RawQuery,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent(),
					"headers", redactHeaders(r.Header),
					"body", redactRequestBody(r),
				)
			}

			cw := &capturingWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			route := routePattern(r)
			logResponse(logger, r, cw, route, elapsed)

			if recorder != nil {
				recorder.RecordHTTPRequest(r.Method, route, cw.status(), elapsed)
			}
		})
	}
}

// routePattern keeps metric labels bounded by using the matched chi pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func logResponse(logger *slog.Logger, r *http.Request, cw *capturingWriter, route string, elapsed time.Duration) {
	status := cw.status()

	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	attrs := []any{
		"method", r.Method,
		"route", route,
		"path", r.URL.Path,
		"status_code", status,
		"duration_ms", elapsed.Milliseconds(),
		"response_size", cw.size,
	}
	if loc := cw.Header().Get("Location"); loc != "" && status >= 300 && status < 400 {
		attrs = append(attrs, "location", loc)
	}
	if status >= http.StatusBadRequest && cw.body.Len() > 0 {
		attrs = append(attrs, "body", redactJSON(cw.body.Bytes()))
	}

	logger.Log(r.Context(), level, "response", attrs...)
}

// capturingWriter records the status, size and the head of a JSON body.
type capturingWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	body       bytes.Buffer
}

func (cw *capturingWriter) WriteHeader(code int) {
	if cw.statusCode == 0 {
		cw.statusCode = code
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *capturingWriter) Write(b []byte) (int, error) {
	if cw.statusCode == 0 {
		cw.statusCode = http.StatusOK
	}
	cw.size += len(b)
	if room := maxLoggedBody - cw.body.Len(); room > 0 && isJSON(cw.Header().Get("Content-Type")) {
		if len(b) > room {
			b = b[:room]
		}
		cw.body.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *capturingWriter) status() int {
	if cw.statusCode == 0 {
		return http.StatusOK
	}
	return cw.statusCode
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json")
}

func isForm(contentType string) bool {
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded")
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSecret(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactRequestBody reads a JSON or form body, restores it for the next
// handler and returns a redacted copy. Other bodies are not read.
func redactRequestBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	ct := r.Header.Get("Content-Type")
	if !isJSON(ct) && !isForm(ct) {
		return ""
	}

	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	if len(raw) > maxLoggedBody {
		return "[TRUNCATED]"
	}

	if isForm(ct) {
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return filtered
		}
		for k := range values {
			if isSecret(k) {
				values.Set(k, filtered)
			}
		}
		return values.Encode()
	}
	return redactJSON(raw)
}

func redactJSON(body []byte) string {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		// partial or invalid JSON cannot be inspected key by key
		if isSecret(string(body)) {
			return filtered
		}
		return string(body)
	}
	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return filtered
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			if isSecret(k) {
				t[k] = filtered
			} else {
				t[k] = redactValue(inner)
			}
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	default:
		return v
	}
}
