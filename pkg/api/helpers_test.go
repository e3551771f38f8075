package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/config"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/session"
)

// envelope is APIResponse with Data left raw for typed decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Memory.Capacity = 64
	cfg.Memory.VectorDim = 16
	cfg.Memory.Seed = 11
	cfg.Simulator.BufferSize = 64
	cfg.API.EnableLogging = false
	cfg.API.ResourceInterval = 0
	return cfg
}

func fakeSampler(ctx context.Context) (*ResourceSnapshot, error) {
	return &ResourceSnapshot{
		CPUPercent:    12.5,
		MemoryTotal:   1 << 30,
		MemoryUsed:    1 << 29,
		MemoryPercent: 50,
		Goroutines:    4,
		SampledAt:     time.Unix(0, 0).UTC(),
	}, nil
}

func failingSampler(ctx context.Context) (*ResourceSnapshot, error) {
	return nil, errors.New("no procfs")
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *session.Manager) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	mgr := session.NewManager(cfg)
	return NewServer(cfg, mgr, fakeSampler), mgr
}

// do sends body as JSON (nil sends no body) and decodes the envelope.
func do(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response is not an envelope: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, target); err != nil {
		t.Fatalf("decode data: %v\n%s", err, env.Data)
	}
}

func bytesContain(b []byte, sub string) bool {
	return bytes.Contains(b, []byte(sub))
}

func decodeRecorder(t *testing.T, rec *httptest.ResponseRecorder) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v", err)
	}
	return rec, env
}
