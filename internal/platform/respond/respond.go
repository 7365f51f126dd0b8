// Package respond renders every API error as a problem document:
// {"title","status","detail","errors":[{"field","message"}]}.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/janisto/devconnector-api/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound         = "resource not found"
	msgMethodNotAllowed = "method not allowed"
	msgInternal         = "internal server error"
)

// FieldError is one itemized input problem.
type FieldError struct {
	Field   string `json:"field" doc:"Input field the problem refers to" example:"status"`
	Message string `json:"message" doc:"Human readable problem" example:"Status is required"`
}

// Problem is the error body for all non-2xx responses.
type Problem struct {
	Title  string       `json:"title" doc:"Short summary of the problem type" example:"Bad Request"`
	Status int          `json:"status" doc:"HTTP status code" example:"400"`
	Detail string       `json:"detail,omitempty" doc:"Explanation specific to this occurrence" example:"Profile not found"`
	Errors []FieldError `json:"errors,omitempty" doc:"Itemized input problems"`
}

// Error implements error.
func (p *Problem) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// GetStatus implements huma.StatusError.
func (p *Problem) GetStatus() int {
	return p.Status
}

// ContentType implements huma.ContentTypeFilter.
func (p *Problem) ContentType(ct string) string {
	switch ct {
	case "application/json":
		return contentTypeProblemJSON
	case "application/cbor":
		return contentTypeProblemCBOR
	}
	return ct
}

// NewProblem builds a Problem. Validation failures reported by huma as 422
// are normalized to 400. Causes implementing huma.ErrorDetailer become field
// errors; other causes are logged but never rendered.
func NewProblem(ctx context.Context, status int, detail string, causes ...error) *Problem {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	p := &Problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: strings.TrimSpace(detail),
	}
	if p.Title == "" {
		p.Title = "HTTP " + strconv.Itoa(status)
	}

	var internal []error
	for _, err := range causes {
		if err == nil {
			continue
		}
		var detailer huma.ErrorDetailer
		if errors.As(err, &detailer) {
			if d := detailer.ErrorDetail(); d != nil {
				p.Errors = append(p.Errors, FieldError{Field: fieldName(d.Location), Message: d.Message})
				continue
			}
		}
		internal = append(internal, err)
	}
	if status >= http.StatusInternalServerError && p.Detail == "" {
		p.Detail = msgInternal
	}

	logProblem(ctx, p, errors.Join(internal...))
	return p
}

// fieldName strips huma's location prefix so "body.skills" becomes "skills".
func fieldName(location string) string {
	for _, prefix := range []string{"body.", "path.", "query.", "header."} {
		if rest, ok := strings.CutPrefix(location, prefix); ok {
			return rest
		}
	}
	return location
}

func logProblem(ctx context.Context, p *Problem, cause error) {
	fields := []zap.Field{zap.Int("status", p.Status), zap.String("detail", p.Detail)}
	if len(p.Errors) > 0 {
		fields = append(fields, zap.Any("errors", p.Errors))
	}
	switch {
	case p.Status >= http.StatusInternalServerError:
		logging.LogError(ctx, "request failed", cause, fields...)
	case cause != nil:
		logging.LogWarn(ctx, "request rejected", append(fields, zap.Error(cause))...)
	}
}

var installOnce sync.Once

// Install routes huma's error constructors through NewProblem. Call it once
// before registering operations.
func Install() {
	installOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			return NewProblem(context.Background(), status, msg, errs...)
		}
		huma.NewErrorWithContext = func(hctx huma.Context, status int, msg string, errs ...error) huma.StatusError {
			ctx := context.Background()
			if hctx != nil {
				ctx = hctx.Context()
			}
			return NewProblem(ctx, status, msg, errs...)
		}
	})
}

// WriteProblem writes p as CBOR when the client prefers it and JSON otherwise.
func WriteProblem(w http.ResponseWriter, r *http.Request, p *Problem) {
	var (
		body []byte
		err  error
		ct   = contentTypeProblemJSON
	)
	if prefersCBOR(r.Header.Get("Accept")) {
		ct = contentTypeProblemCBOR
		body, err = cbor.Marshal(p)
	} else {
		body, err = json.Marshal(p)
	}
	if err != nil {
		logging.LogError(r.Context(), "failed to encode problem", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(p.Status)
	_, _ = w.Write(body)
}

// prefersCBOR reports whether the highest weighted supported media type in
// accept is a CBOR one. Ties go to JSON unless only CBOR variants are listed.
func prefersCBOR(accept string) bool {
	bestJSON, bestCBOR := -1.0, -1.0
	for part := range strings.SplitSeq(accept, ",") {
		media, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		media = strings.ToLower(strings.TrimSpace(media))
		q := 1.0
		for p := range strings.SplitSeq(params, ";") {
			if v, ok := strings.CutPrefix(strings.TrimSpace(p), "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}
		switch media {
		case "application/cbor", contentTypeProblemCBOR:
			bestCBOR = max(bestCBOR, q)
		case "application/json", contentTypeProblemJSON, "*/*", "application/*":
			bestJSON = max(bestJSON, q)
		}
	}
	return bestCBOR > 0 && bestCBOR > bestJSON
}

// NotFoundHandler renders unmatched routes as a 404 problem.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, NewProblem(r.Context(), http.StatusNotFound, msgNotFound))
	}
}

// MethodNotAllowedHandler renders a 405 problem and lists the methods the
// matched path does accept in the Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		detail := fmt.Sprintf("%s: %s", msgMethodNotAllowed, r.Method)
		WriteProblem(w, r, NewProblem(r.Context(), http.StatusMethodNotAllowed, detail))
	}
}

// Recoverer turns panics into a generic 500 problem and logs the stack.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
// Nothing is written when the handler already sent its headers.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &trackingWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				err = fmt.Errorf("panic: %w\n%s", err, debug.Stack())
				p := NewProblem(r.Context(), http.StatusInternalServerError, msgInternal, err)
				if rw.wroteHeader {
					return
				}
				WriteProblem(rw, r, p)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.wroteHeader = true
		f.Flush()
	}
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}
	var allowed []string
	for _, method := range []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
