package holographic

import (
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/entropy"
	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

// Defaults matching the reference memory layout.
const (
	DefaultCapacity          = 1024
	DefaultVectorDim         = 1024
	DefaultStrengthIncrement = 0.1
)

// Config parameterises a Store.
type Config struct {
	// Capacity is the number of matrix rows (distinct indexed words).
	Capacity int

	// VectorDim is the length of every node vector.
	VectorDim int

	// StrengthIncrement is added to a node's strength on every repeat sighting.
	StrengthIncrement float64

	// Clock stamps LastAccessed. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the reference layout: 1024 words × 1024-dim vectors.
func DefaultConfig() Config {
	return Config{
		Capacity:          DefaultCapacity,
		VectorDim:         DefaultVectorDim,
		StrengthIncrement: DefaultStrengthIncrement,
	}
}

// Node is one remembered word.
type Node struct {
	Word string

	// Vector is drawn once at creation and never changes.
	Vector []float32

	Strength     float64
	LastAccessed time.Time

	// Index is the matrix row, or -1 when the word arrived after the arena filled.
	Index int
}

// IngestReport summarises one Ingest call.
type IngestReport struct {
	Tokens     int      `json:"tokens"`
	Created    []string `json:"created,omitempty"`
	Reinforced int      `json:"reinforced"`
	NewEdges   int      `json:"newEdges"`
	Overflow   []string `json:"overflow,omitempty"`
}

// Store owns the nodes, the index arena, the entanglement graph and the
// interference matrix.
type Store struct {
	mu sync.RWMutex

	cfg    Config
	rng    entropy.Source
	nodes  map[string]*Node
	index  *indexArena
	graph  *EntanglementGraph
	matrix *InterferenceMatrix
}

// NewStore validates cfg and allocates the matrix up front.
// rng supplies every vector component; it is used only under the store lock.
func NewStore(cfg Config, rng entropy.Source) (*Store, error) {
	if cfg.Capacity <= 0 {
		return nil, nerrors.MemoryErrorf(nerrors.ErrInvalidConfig,
			"capacity must be positive, got %d", cfg.Capacity).
			WithSuggestion("Set memory.capacity to a positive value (default 1024)")
	}
	if cfg.VectorDim <= 0 {
		return nil, nerrors.MemoryErrorf(nerrors.ErrInvalidConfig,
			"vector dimension must be positive, got %d", cfg.VectorDim).
			WithSuggestion("Set memory.vector_dim to a positive value (default 1024)")
	}
	if cfg.StrengthIncrement < 0 {
		return nil, nerrors.MemoryErrorf(nerrors.ErrInvalidConfig,
			"strength increment must not be negative, got %g", cfg.StrengthIncrement)
	}
	if rng == nil {
		return nil, nerrors.MemoryError(nerrors.ErrInvalidConfig, "random source is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Store{
		cfg:    cfg,
		rng:    rng,
		nodes:  make(map[string]*Node),
		index:  newIndexArena(cfg.Capacity),
		graph:  newEntanglementGraph(),
		matrix: newInterferenceMatrix(cfg.Capacity),
	}, nil
}

// Ingest folds text into memory. Blank text is a no-op.
//
// Every token creates or reinforces its node first; then each adjacent pair
// of indexed words is linked; finally the whole matrix is recomputed.
// When new words found the arena full, the rest of the ingest is still
// applied and a CAPACITY_EXCEEDED error lists them. Text that is not valid
// UTF-8 is rejected without touching the store.
func (s *Store) Ingest(text string) (IngestReport, error) {
	if !utf8.ValidString(text) {
		return IngestReport{}, nerrors.MemoryError(nerrors.ErrInvalidInput,
			"text is not valid UTF-8").
			WithSuggestion("Decode the input to UTF-8 before ingesting it")
	}

	tokens := Tokenize(text)
	report := IngestReport{Tokens: len(tokens)}
	if len(tokens) == 0 {
		return report, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Clock()
	for _, word := range tokens {
		if node, ok := s.nodes[word]; ok {
			node.Strength += s.cfg.StrengthIncrement
			node.LastAccessed = now
			report.Reinforced++
			continue
		}
		node := s.newNode(word, now)
		s.nodes[word] = node
		report.Created = append(report.Created, word)
		if node.Index < 0 {
			report.Overflow = append(report.Overflow, word)
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		a, b := s.nodes[tokens[i]], s.nodes[tokens[i+1]]
		if a.Index < 0 || b.Index < 0 {
			continue
		}
		if s.graph.link(a.Word, b.Word) {
			report.NewEdges++
		}
	}

	s.rebuildLocked()

	if len(report.Overflow) > 0 {
		return report, nerrors.MemoryErrorf(nerrors.ErrCapacityExceeded,
			"%d new word(s) exceed the matrix capacity of %d", len(report.Overflow), s.cfg.Capacity).
			WithContext("capacity", strconv.Itoa(s.cfg.Capacity)).
			WithContext("words", strings.Join(report.Overflow, " ")).
			WithSuggestion("The words are counted but excluded from the graph; raise memory.capacity for larger corpora")
	}
	return report, nil
}

func (s *Store) newNode(word string, now time.Time) *Node {
	vec := make([]float32, s.cfg.VectorDim)
	for i := range vec {
		vec[i] = float32(s.rng.Float64())
	}
	idx, ok := s.index.assign(word)
	if !ok {
		idx = -1
	}
	return &Node{
		Word:         word,
		Vector:       vec,
		Strength:     1,
		LastAccessed: now,
		Index:        idx,
	}
}

// Rebuild recomputes every matrix cell from the node vectors.
func (s *Store) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildLocked()
}

func (s *Store) rebuildLocked() {
	n := s.index.len()
	for i := 0; i < n; i++ {
		vi := s.nodes[s.index.word(i)].Vector
		for j := i + 1; j < n; j++ {
			vj := s.nodes[s.index.word(j)].Vector
			s.matrix.setPair(i, j, float32(Similarity(vi, vj)))
		}
	}
}

// Node returns a copy of the node for word.
func (s *Store) Node(word string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[strings.ToLower(word)]
	if !ok {
		return Node{}, false
	}
	cpy := *node
	cpy.Vector = make([]float32, len(node.Vector))
	copy(cpy.Vector, node.Vector)
	return cpy, true
}

// Neighbors returns the entangled words of word in edge insertion order.
func (s *Store) Neighbors(word string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adj := s.graph.neighbors(strings.ToLower(word))
	out := make([]string, len(adj))
	copy(out, adj)
	return out
}

// Interference returns the cached matrix value between two indexed words.
// ok is false if either word has no row. The diagonal is never written and
// reads as 0.
func (s *Store) Interference(a, b string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, okA := s.index.lookup(strings.ToLower(a))
	j, okB := s.index.lookup(strings.ToLower(b))
	if !okA || !okB {
		return 0, false
	}
	return float64(s.matrix.At(i, j)), true
}

// Words returns indexed words in row order.
func (s *Store) Words() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, s.index.len())
	copy(out, s.index.words)
	return out
}

// Vocabulary returns every known word, indexed or not, with the given prefix.
func (s *Store) Vocabulary(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for word := range s.nodes {
		if strings.HasPrefix(word, prefix) {
			out = append(out, word)
		}
	}
	return out
}

// Stats is the memory half of the host metrics.
type Stats struct {
	TotalNodes      int     `json:"totalNodes"`
	IndexedNodes    int     `json:"indexedNodes"`
	Edges           int     `json:"edges"`
	Capacity        int     `json:"capacity"`
	AverageStrength float64 `json:"averageStrength"`
}

// Stats reports node counts and the mean strength. An empty store reports 0.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalNodes:   len(s.nodes),
		IndexedNodes: s.index.len(),
		Edges:        s.graph.EdgeCount(),
		Capacity:     s.cfg.Capacity,
	}
	if len(s.nodes) == 0 {
		return st
	}
	var total float64
	for _, node := range s.nodes {
		total += node.Strength
	}
	st.AverageStrength = total / float64(len(s.nodes))
	return st
}

// Full reports whether the index arena has no free rows.
func (s *Store) Full() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.full()
}
