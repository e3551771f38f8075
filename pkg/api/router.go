package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

// HandlerFunc is the function signature for API handlers.
type HandlerFunc func(w http.ResponseWriter, r *http.Request)

// Route is a registered method + pattern pair.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Router matches request paths against patterns with :param segments.
type Router struct {
	routes []Route
	mu     sync.RWMutex

	// NotFound is called when no pattern matches the path.
	NotFound http.Handler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		routes: make([]Route, 0),
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
		}),
	}
}

// Handle registers a handler. Patterns support :param segments
// (e.g. /api/sessions/:id/turn).
func (rt *Router) Handle(method, pattern string, handler HandlerFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.routes = append(rt.routes, Route{Method: method, Pattern: pattern, Handler: handler})
}

// GET registers a handler for GET requests.
func (rt *Router) GET(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodGet, pattern, handler)
}

// POST registers a handler for POST requests.
func (rt *Router) POST(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodPost, pattern, handler)
}

// DELETE registers a handler for DELETE requests.
func (rt *Router) DELETE(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodDelete, pattern, handler)
}

// Routes returns a copy of the registered routes.
func (rt *Router) Routes() []Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return append([]Route(nil), rt.routes...)
}

// ServeHTTP implements http.Handler. A path that matches some pattern under
// a different method gets 405 instead of 404.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	pathMatched := false
	for _, route := range rt.routes {
		params, ok := matchPath(route.Pattern, r.URL.Path)
		if !ok {
			continue
		}
		if route.Method != r.Method {
			pathMatched = true
			continue
		}
		if len(params) > 0 {
			r = setPathParams(r, params)
		}
		route.Handler(w, r)
		return
	}

	if pathMatched {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			r.Method+" is not supported on "+r.URL.Path)
		return
	}
	rt.NotFound.ServeHTTP(w, r)
}

// matchPath reports whether path fits pattern and extracts its parameters.
func matchPath(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)
	for i, part := range patternParts {
		switch {
		case strings.HasPrefix(part, ":"):
			if pathParts[i] == "" {
				return nil, false
			}
			params[part[1:]] = pathParts[i]
		case part != pathParts[i]:
			return nil, false
		}
	}
	return params, true
}

type contextKey string

const pathParamsKey contextKey = "pathParams"

func setPathParams(r *http.Request, params map[string]string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), pathParamsKey, params))
}

// PathParam extracts a path parameter from the request.
func PathParam(r *http.Request, name string) string {
	params, ok := r.Context().Value(pathParamsKey).(map[string]string)
	if !ok {
		return ""
	}
	return params[name]
}

// -----------------------------------------------------------------------------
// Response Helpers
// -----------------------------------------------------------------------------

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError is the error half of the envelope.
type APIError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// WriteJSON writes data in a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, &APIError{Code: code, Message: message})
}

func writeAPIError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: apiErr})
}

// WriteErr maps err to a status and writes it. Structured errors keep their
// context and suggestions; anything else becomes a 500.
func WriteErr(w http.ResponseWriter, err error) {
	ne, ok := nerrors.AsNebulaError(err)
	if !ok {
		WriteError(w, http.StatusInternalServerError, strings.ToLower(nerrors.ErrInternalError), err.Error())
		return
	}
	writeAPIError(w, statusFor(ne), &APIError{
		Code:        strings.ToLower(ne.Code),
		Message:     ne.Message,
		Context:     ne.Context,
		Suggestions: ne.Suggestions,
	})
}

func statusFor(ne *nerrors.NebulaError) int {
	switch ne.Code {
	case nerrors.ErrSessionNotFound, nerrors.ErrIOFileNotFound:
		return http.StatusNotFound
	case nerrors.ErrSessionEnded:
		return http.StatusConflict
	case nerrors.ErrCapacityExceeded:
		return http.StatusInsufficientStorage
	}
	if ne.Category == nerrors.CategoryValidation {
		return http.StatusBadRequest
	}
	switch ne.Code {
	case nerrors.ErrInvalidInput, nerrors.ErrInvalidSamples, nerrors.ErrInvalidConfig:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ReadJSON decodes the request body into target.
func ReadJSON(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
