package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		match   bool
		params  map[string]string
	}{
		{"/api/sessions", "/api/sessions", true, nil},
		{"/api/sessions", "/api/sessions/", true, nil},
		{"/api/sessions/:id", "/api/sessions/abc", true, map[string]string{"id": "abc"}},
		{"/api/sessions/:id/turn", "/api/sessions/abc/turn", true, map[string]string{"id": "abc"}},
		{"/api/sessions/:id/turn", "/api/sessions/abc/ingest", false, nil},
		{"/api/sessions/:id", "/api/sessions", false, nil},
		{"/api/sessions/:id/turn", "/api/sessions//turn", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			params, ok := matchPath(tt.pattern, tt.path)
			if ok != tt.match {
				t.Fatalf("matchPath = %v, want %v", ok, tt.match)
			}
			for k, v := range tt.params {
				if params[k] != v {
					t.Errorf("param %s = %q, want %q", k, params[k], v)
				}
			}
		})
	}
}

func TestRouter_Dispatch(t *testing.T) {
	router := NewRouter()
	router.GET("/api/items/:id", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"id": PathParam(r, "id")})
	})

	t.Run("matching route", func(t *testing.T) {
		rec, env := do(t, router, http.MethodGet, "/api/items/42", nil)
		if rec.Code != http.StatusOK || !env.Success {
			t.Fatalf("status %d, success %v", rec.Code, env.Success)
		}
		var data map[string]string
		decodeData(t, env, &data)
		if data["id"] != "42" {
			t.Errorf("id = %q, want 42", data["id"])
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		rec, env := do(t, router, http.MethodGet, "/api/nothing", nil)
		if rec.Code != http.StatusNotFound || env.Error.Code != "not_found" {
			t.Errorf("got %d %+v", rec.Code, env.Error)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rec, env := do(t, router, http.MethodDelete, "/api/items/42", nil)
		if rec.Code != http.StatusMethodNotAllowed || env.Error.Code != "method_not_allowed" {
			t.Errorf("got %d %+v", rec.Code, env.Error)
		}
	})
}

func TestWriteErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"session not found", nerrors.SessionError(nerrors.ErrSessionNotFound, "gone"), http.StatusNotFound, "session_not_found"},
		{"session ended", nerrors.SessionError(nerrors.ErrSessionEnded, "ended"), http.StatusConflict, "session_ended"},
		{"invalid input", nerrors.MemoryError(nerrors.ErrInvalidInput, "bad"), http.StatusBadRequest, "invalid_input"},
		{"invalid samples", nerrors.SimulatorErrorf(nerrors.ErrInvalidSamples, "nan"), http.StatusBadRequest, "invalid_samples"},
		{"capacity", nerrors.MemoryError(nerrors.ErrCapacityExceeded, "full"), http.StatusInsufficientStorage, "capacity_exceeded"},
		{"validation category", nerrors.ValidationErrorf(nerrors.ErrValidationFailed, "nope"), http.StatusBadRequest, "validation_failed"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteErr(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !bytesContain(rec.Body.Bytes(), `"code":"`+tt.code+`"`) {
				t.Errorf("body %s lacks code %s", rec.Body.String(), tt.code)
			}
		})
	}
}

func TestWriteErr_KeepsContextAndSuggestions(t *testing.T) {
	err := nerrors.SessionError(nerrors.ErrSessionNotFound, "session not found").
		WithContext("session", "abc").
		WithSuggestion("List sessions first")

	rec := httptest.NewRecorder()
	WriteErr(rec, err)

	_, env := decodeRecorder(t, rec)
	if env.Error.Context["session"] != "abc" {
		t.Errorf("context = %v", env.Error.Context)
	}
	if len(env.Error.Suggestions) != 1 {
		t.Errorf("suggestions = %v", env.Error.Suggestions)
	}
}
