package session

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/config"
	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

// testConfig keeps the matrix small so tests stay fast.
func testConfig(seed uint64) *config.Config {
	cfg := config.Default()
	cfg.Memory.Capacity = 64
	cfg.Memory.VectorDim = 16
	cfg.Memory.Seed = seed
	cfg.Simulator.BufferSize = 64
	return cfg
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New("test", testConfig(42))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := newTestSession(t)

	if s.ID == "" {
		t.Error("expected a generated ID")
	}
	if s.Name != "test" {
		t.Errorf("Name = %q, want test", s.Name)
	}
	if s.Seed != 42 {
		t.Errorf("Seed = %d, want 42", s.Seed)
	}
	if !s.IsActive() {
		t.Error("new session should be active")
	}

	unnamed, err := New("", testConfig(0))
	if err != nil {
		t.Fatal(err)
	}
	if unnamed.Name != "default" {
		t.Errorf("empty name should fall back to config, got %q", unnamed.Name)
	}
	if unnamed.Seed == 0 {
		t.Error("zero seed should be replaced by a clock seed")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(1)
	cfg.Memory.Capacity = 0
	if _, err := New("bad", cfg); !nerrors.IsCode(err, nerrors.ErrInvalidConfig) {
		t.Errorf("expected %s, got %v", nerrors.ErrInvalidConfig, err)
	}
}

func TestSubmit_RecordsTurn(t *testing.T) {
	s := newTestSession(t)

	turn, err := s.Submit("the cat sat on the mat")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if turn == nil {
		t.Fatal("expected a turn")
	}

	if !strings.HasPrefix(turn.Response, "the cat sat on the mat") {
		t.Errorf("response should start with the prompt, got %q", turn.Response)
	}
	words := strings.Fields(turn.Response)
	if len(words) <= 6 || len(words) > 20 {
		t.Errorf("response length = %d, want 7..20", len(words))
	}
	if turn.Report.Tokens != 6 || len(turn.Report.Created) != 5 {
		t.Errorf("report = %+v", turn.Report)
	}
	if turn.Metrics.TotalNodes != 5 {
		t.Errorf("TotalNodes = %d, want 5", turn.Metrics.TotalNodes)
	}
	if turn.Metrics.QuantumMetrics.ProcessingSpeed <= 0 {
		t.Error("expected a positive processing speed after a turn")
	}

	history := s.History(0)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Errorf("roles = %s, %s", history[0].Role, history[1].Role)
	}
	if history[0].TurnID != turn.ID || history[1].TurnID != turn.ID {
		t.Error("messages should carry the turn ID")
	}
	if history[1].Content != turn.Response {
		t.Error("assistant message should hold the response")
	}
	if s.Simulator().Calls() != 1 {
		t.Errorf("simulator calls = %d, want 1", s.Simulator().Calls())
	}
}

func TestSubmit_Blank(t *testing.T) {
	s := newTestSession(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		turn, err := s.Submit(text)
		if err != nil || turn != nil {
			t.Errorf("Submit(%q) = %v, %v; want nil, nil", text, turn, err)
		}
	}
	if len(s.History(0)) != 0 {
		t.Error("blank submits must not be recorded")
	}
	if s.Simulator().Calls() != 0 {
		t.Error("blank submits must not run the simulator")
	}
}

func TestSubmit_CapacityOverflowContinues(t *testing.T) {
	cfg := testConfig(7)
	cfg.Memory.Capacity = 2
	s, err := New("small", cfg)
	if err != nil {
		t.Fatal(err)
	}

	turn, err := s.Submit("a b c")
	if err != nil {
		t.Fatalf("capacity overflow should not fail the turn: %v", err)
	}
	if len(turn.Report.Overflow) != 1 || turn.Report.Overflow[0] != "c" {
		t.Errorf("overflow = %v, want [c]", turn.Report.Overflow)
	}
	if turn.Metrics.TotalNodes != 3 {
		t.Errorf("TotalNodes = %d, want 3", turn.Metrics.TotalNodes)
	}
}

func TestSubmit_InvalidUTF8(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Submit("bad \xff bytes")
	if !nerrors.IsCode(err, nerrors.ErrInvalidInput) {
		t.Fatalf("expected %s, got %v", nerrors.ErrInvalidInput, err)
	}
	if len(s.History(0)) != 0 || s.Metrics().TotalNodes != 0 {
		t.Error("rejected text must leave the session untouched")
	}
}

func TestEndedSession(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Submit("hello world"); err != nil {
		t.Fatal(err)
	}

	s.End()
	first := *s.EndedAt
	s.End()
	if !s.EndedAt.Equal(first) {
		t.Error("End should keep the first end time")
	}

	if _, err := s.Submit("more"); !nerrors.IsCode(err, nerrors.ErrSessionEnded) {
		t.Errorf("Submit after End: got %v", err)
	}
	if _, err := s.Ingest("more"); !nerrors.IsCode(err, nerrors.ErrSessionEnded) {
		t.Errorf("Ingest after End: got %v", err)
	}
	if _, err := s.Process([]float64{1}); !nerrors.IsCode(err, nerrors.ErrSessionEnded) {
		t.Errorf("Process after End: got %v", err)
	}
	if got := s.Generate("hello"); !strings.HasPrefix(got, "hello") {
		t.Errorf("Generate should still read memory, got %q", got)
	}
}

func TestIngestReaderAndFile(t *testing.T) {
	s := newTestSession(t)

	report, err := s.IngestReader(strings.NewReader("alpha beta gamma"))
	if err != nil {
		t.Fatalf("IngestReader failed: %v", err)
	}
	if report.Tokens != 3 {
		t.Errorf("Tokens = %d, want 3", report.Tokens)
	}

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("beta delta\nepsilon"), 0644); err != nil {
		t.Fatal(err)
	}
	report, err = s.IngestFile(path)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}
	if len(report.Created) != 2 || report.Reinforced != 1 {
		t.Errorf("report = %+v", report)
	}

	if st := s.Stats(); st.IngestCount != 2 || st.TurnCount != 0 || st.MessageCount != 0 {
		t.Errorf("stats = %+v", st)
	}
	if got := s.Metrics().TotalNodes; got != 5 {
		t.Errorf("TotalNodes = %d, want 5", got)
	}
}

func TestIngest_CountsOnlyNonBlankCalls(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.Ingest("  \n"); err != nil {
		t.Fatalf("blank Ingest failed: %v", err)
	}
	if got := s.Stats().IngestCount; got != 0 {
		t.Errorf("IngestCount after blank ingest = %d, want 0", got)
	}

	if _, err := s.Ingest("quiet words"); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := s.Submit("more quiet words"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	st := s.Stats()
	if st.IngestCount != 1 || st.TurnCount != 1 {
		t.Errorf("IngestCount = %d, TurnCount = %d; want 1, 1", st.IngestCount, st.TurnCount)
	}
}

func TestIngestFile_NotFound(t *testing.T) {
	s := newTestSession(t)

	path := filepath.Join(t.TempDir(), "missing.txt")
	_, err := s.IngestFile(path)
	if !nerrors.IsCode(err, nerrors.ErrIOFileNotFound) {
		t.Fatalf("expected %s, got %v", nerrors.ErrIOFileNotFound, err)
	}
	if ne, _ := nerrors.AsNebulaError(err); ne.Context["path"] != path {
		t.Errorf("path context = %q", ne.Context["path"])
	}
}

func TestMetrics_Empty(t *testing.T) {
	s := newTestSession(t)

	m := s.Metrics()
	if m.TotalNodes != 0 || m.AverageStrength != 0 {
		t.Errorf("empty metrics = %+v", m)
	}
	if m.QuantumMetrics.QuantumYield != 0.9 || m.QuantumMetrics.EntanglementDegree != 0.5 {
		t.Errorf("quantum constants = %+v", m.QuantumMetrics)
	}
}

func TestHistory_LastN(t *testing.T) {
	s := newTestSession(t)
	for _, text := range []string{"one two", "three four", "five six"} {
		if _, err := s.Submit(text); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(s.History(0)); got != 6 {
		t.Errorf("History(0) length = %d, want 6", got)
	}
	last := s.History(2)
	if len(last) != 2 || last[0].Content != "five six" {
		t.Errorf("History(2) = %+v", last)
	}
	if got := len(s.History(100)); got != 6 {
		t.Errorf("History(100) length = %d, want 6", got)
	}

	last[0].Content = "mutated"
	if s.History(2)[0].Content != "five six" {
		t.Error("History must return copies")
	}
}

func TestSameSeedSameResponses(t *testing.T) {
	a, err := New("a", testConfig(99))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New("b", testConfig(99))
	if err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"the quick brown fox", "the lazy dog and the fox", "brown dog"} {
		ta, err := a.Submit(text)
		if err != nil {
			t.Fatal(err)
		}
		tb, err := b.Submit(text)
		if err != nil {
			t.Fatal(err)
		}
		if ta.Response != tb.Response {
			t.Errorf("responses differ for %q: %q vs %q", text, ta.Response, tb.Response)
		}
	}
}

func TestExport(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Submit("export this text"); err != nil {
		t.Fatal(err)
	}
	s.End()

	dir, err := s.Export(t.TempDir())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("session.json is not valid JSON: %v", err)
	}
	if doc.ID != s.ID || doc.EndedAt == nil || len(doc.Messages) != 2 {
		t.Errorf("exported doc = %+v", doc)
	}
	if doc.Metrics.TotalNodes != 3 {
		t.Errorf("exported TotalNodes = %d, want 3", doc.Metrics.TotalNodes)
	}

	f, err := os.Open(filepath.Join(dir, "messages.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m Message
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Errorf("line %d: %v", lines, err)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("messages.jsonl has %d lines, want 2", lines)
	}
}

func TestExport_Unwritable(t *testing.T) {
	s := newTestSession(t)

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Export(blocker)
	if !nerrors.IsCode(err, nerrors.ErrSessionExportFailed) {
		t.Errorf("expected %s, got %v", nerrors.ErrSessionExportFailed, err)
	}
}
