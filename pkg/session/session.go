// Package session binds one word memory and one state simulator into a chat
// session with a transcript. A Session is safe for concurrent use; the memory
// and the simulator keep their own locks.
package session

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/config"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/entropy"
	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/holographic"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/quantum"
)

// Session is one chat session over a private word memory.
type Session struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Seed      uint64     `json:"seed"`

	store *holographic.Store
	gen   *holographic.Generator
	sim   *quantum.Simulator

	exportPath string
	messages   []*Message
	turns      int
	ingests    int

	mu sync.RWMutex
}

// Turn is the result of one Submit call.
type Turn struct {
	ID        string                   `json:"id"`
	Prompt    string                   `json:"prompt"`
	Response  string                   `json:"response"`
	Report    holographic.IngestReport `json:"report"`
	Metrics   Metrics                  `json:"metrics"`
	CreatedAt time.Time                `json:"created_at"`
}

// Metrics is the combined memory and simulator snapshot shown to the user.
type Metrics struct {
	TotalNodes      int             `json:"totalNodes"`
	AverageStrength float64         `json:"averageStrength"`
	QuantumMetrics  quantum.Metrics `json:"quantumMetrics"`
}

// Stats holds session statistics. IngestCount counts non-blank Ingest calls
// only; the text of a turn is counted by TurnCount.
type Stats struct {
	MessageCount   int               `json:"message_count"`
	TurnCount      int               `json:"turn_count"`
	IngestCount    int               `json:"ingest_count"`
	SimulatorCalls int               `json:"simulator_calls"`
	Memory         holographic.Stats `json:"memory"`
	Duration       time.Duration     `json:"duration"`
}

// New builds a session from cfg. A zero cfg.Memory.Seed picks a seed from
// the clock; the memory, the walk and the simulator each get their own
// stream derived from it.
func New(name string, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if name == "" {
		name = cfg.Session.Name
	}

	seed := cfg.Memory.Seed
	if seed == 0 {
		seed = entropy.SeedFromClock()
	}

	store, err := holographic.NewStore(cfg.HolographicConfig(), entropy.New(seed))
	if err != nil {
		return nil, err
	}
	gen, err := holographic.NewGenerator(store, cfg.GeneratorConfig(), entropy.New(seed+1))
	if err != nil {
		return nil, err
	}
	sim, err := quantum.New(cfg.QuantumConfig(), entropy.New(seed+2))
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:         uuid.New().String(),
		Name:       name,
		StartedAt:  time.Now(),
		Seed:       seed,
		store:      store,
		gen:        gen,
		sim:        sim,
		exportPath: cfg.Session.ExportPath,
		messages:   make([]*Message, 0),
	}, nil
}

// Store returns the session's word memory.
func (s *Session) Store() *holographic.Store {
	return s.store
}

// Simulator returns the session's state simulator.
func (s *Session) Simulator() *quantum.Simulator {
	return s.sim
}

// IsActive reports whether End has not been called.
func (s *Session) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.EndedAt == nil
}

func (s *Session) checkActive() error {
	if !s.IsActive() {
		return nerrors.SessionError(nerrors.ErrSessionEnded, "session has ended").
			WithContext("session", s.ID).
			WithSuggestion("Create a new session to continue")
	}
	return nil
}

// Submit runs one chat turn: the text is ingested, a response is walked from
// it, and the simulator processes the strengths of the response words.
// Blank text returns a nil turn and records nothing. Words rejected for lack
// of capacity are logged and the turn continues.
func (s *Session) Submit(text string) (*Turn, error) {
	if err := s.checkActive(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	report, err := s.store.Ingest(text)
	if err != nil {
		if !nerrors.IsCode(err, nerrors.ErrCapacityExceeded) {
			return nil, err
		}
		log.Printf("[session] %s: %v", s.Name, err)
	}

	response := s.gen.Generate(text)
	if _, err := s.sim.Process(s.signal(response)); err != nil {
		return nil, err
	}

	turn := &Turn{
		ID:        uuid.New().String(),
		Prompt:    text,
		Response:  response,
		Report:    report,
		Metrics:   s.Metrics(),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages,
		NewMessage(RoleUser, text).ForTurn(turn.ID),
		NewMessage(RoleAssistant, response).ForTurn(turn.ID),
	)
	s.turns++
	s.mu.Unlock()

	return turn, nil
}

// signal maps each response word to its node strength.
func (s *Session) signal(response string) []float64 {
	words := holographic.Tokenize(response)
	out := make([]float64, 0, len(words))
	for _, w := range words {
		if node, ok := s.store.Node(w); ok {
			out = append(out, node.Strength)
		}
	}
	return out
}

// Ingest folds text into memory without generating a response.
func (s *Session) Ingest(text string) (holographic.IngestReport, error) {
	if err := s.checkActive(); err != nil {
		return holographic.IngestReport{}, err
	}
	report, err := s.store.Ingest(text)
	if report.Tokens > 0 && (err == nil || nerrors.IsCode(err, nerrors.ErrCapacityExceeded)) {
		s.mu.Lock()
		s.ingests++
		s.mu.Unlock()
	}
	return report, err
}

// IngestReader reads r to the end and ingests the text.
func (s *Session) IngestReader(r io.Reader) (holographic.IngestReport, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return holographic.IngestReport{}, nerrors.IOError(nerrors.ErrIOReadFailed, "failed to read input").
			WithCause(err)
	}
	return s.Ingest(buf.String())
}

// IngestFile ingests the contents of a text file.
func (s *Session) IngestFile(path string) (holographic.IngestReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return holographic.IngestReport{}, nerrors.IOError(nerrors.ErrIOFileNotFound, "file not found").
				WithContext("path", path).
				WithCause(err)
		}
		return holographic.IngestReport{}, nerrors.IOError(nerrors.ErrIOReadFailed, "failed to open file").
			WithContext("path", path).
			WithCause(err)
	}
	defer f.Close()

	report, err := s.IngestReader(f)
	if ne, ok := nerrors.AsNebulaError(err); ok {
		ne.WithContext("path", path)
	}
	return report, err
}

// Generate walks a response from prompt without touching memory or the transcript.
func (s *Session) Generate(prompt string) string {
	return s.gen.Generate(prompt)
}

// Process runs the simulator on an arbitrary signal.
func (s *Session) Process(samples []float64) ([]float64, error) {
	if err := s.checkActive(); err != nil {
		return nil, err
	}
	return s.sim.Process(samples)
}

// Metrics reports node count, mean strength and the simulator snapshot.
func (s *Session) Metrics() Metrics {
	st := s.store.Stats()
	return Metrics{
		TotalNodes:      st.TotalNodes,
		AverageStrength: st.AverageStrength,
		QuantumMetrics:  s.sim.Metrics(),
	}
}

// History returns copies of the last n messages, or all of them when n <= 0.
func (s *Session) History(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages
	if n > 0 && n < len(msgs) {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = *m
	}
	return out
}

// Stats returns session statistics.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	st := Stats{
		MessageCount: len(s.messages),
		TurnCount:    s.turns,
		IngestCount:  s.ingests,
	}
	end := time.Now()
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	st.Duration = end.Sub(s.StartedAt)
	s.mu.RUnlock()

	st.SimulatorCalls = s.sim.Calls()
	st.Memory = s.store.Stats()
	return st
}

// End marks the session as ended. Later calls keep the first end time.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EndedAt == nil {
		now := time.Now()
		s.EndedAt = &now
	}
}

// exportDoc is the on-disk shape of an exported session.
type exportDoc struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Seed      uint64     `json:"seed"`
	Stats     Stats      `json:"stats"`
	Metrics   Metrics    `json:"metrics"`
	Messages  []Message  `json:"messages"`
}

// Export writes <dir>/<id>/session.json and messages.jsonl and returns the
// directory. An empty dir uses the configured export path.
func (s *Session) Export(dir string) (path string, err error) {
	if dir == "" {
		dir = s.exportPath
	}

	s.mu.RLock()
	doc := exportDoc{
		ID:        s.ID,
		Name:      s.Name,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		Seed:      s.Seed,
	}
	s.mu.RUnlock()
	doc.Stats = s.Stats()
	doc.Metrics = s.Metrics()
	doc.Messages = s.History(0)

	exportDir := filepath.Join(dir, s.ID)
	fail := func(msg string, cause error) error {
		return nerrors.SessionError(nerrors.ErrSessionExportFailed, msg).
			WithContext("path", exportDir).
			WithCause(cause)
	}

	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return "", fail("failed to create export directory", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fail("failed to marshal session", err)
	}
	if err := os.WriteFile(filepath.Join(exportDir, "session.json"), data, 0644); err != nil {
		return "", fail("failed to write session.json", err)
	}

	f, err := os.Create(filepath.Join(exportDir, "messages.jsonl"))
	if err != nil {
		return "", fail("failed to create messages.jsonl", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			path, err = "", fail("failed to close messages.jsonl", cerr)
		}
	}()

	enc := json.NewEncoder(f)
	for _, m := range doc.Messages {
		if err := enc.Encode(m); err != nil {
			return "", fail("failed to write message", err)
		}
	}

	return exportDir, nil
}
