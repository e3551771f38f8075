package holographic

import (
	"strings"
	"sync"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/entropy"
	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

const (
	DefaultMaxTokens       = 20
	DefaultStopProbability = 0.2
)

// GeneratorConfig bounds the response walk.
type GeneratorConfig struct {
	// MaxTokens caps the output length, prompt tokens included.
	MaxTokens int

	// StopProbability is the chance of ending the walk after each appended word.
	StopProbability float64
}

// DefaultGeneratorConfig returns a 20-token cap with a 0.2 stop chance.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxTokens:       DefaultMaxTokens,
		StopProbability: DefaultStopProbability,
	}
}

// Generator extends prompts by walking a Store's entanglement graph.
type Generator struct {
	store *Store
	cfg   GeneratorConfig

	mu  sync.Mutex // guards rng
	rng entropy.Source
}

// NewGenerator binds a walk to store. rng decides early stops.
func NewGenerator(store *Store, cfg GeneratorConfig, rng entropy.Source) (*Generator, error) {
	if store == nil {
		return nil, nerrors.MemoryError(nerrors.ErrInvalidConfig, "generator needs a store")
	}
	if cfg.MaxTokens <= 0 {
		return nil, nerrors.MemoryErrorf(nerrors.ErrInvalidConfig,
			"max tokens must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.StopProbability < 0 || cfg.StopProbability > 1 {
		return nil, nerrors.MemoryErrorf(nerrors.ErrInvalidConfig,
			"stop probability must be within [0, 1], got %g", cfg.StopProbability)
	}
	if rng == nil {
		return nil, nerrors.MemoryError(nerrors.ErrInvalidConfig, "random source is required")
	}
	return &Generator{store: store, cfg: cfg, rng: rng}, nil
}

// Generate returns the prompt tokens followed by a greedy walk from the last
// one. At each step the walk moves to the neighbour with the highest
// interference against the current word, ties going to the earliest edge.
// It ends when the current word is unknown or isolated, when the output
// reaches MaxTokens, or when a draw falls below StopProbability.
// Blank prompts return "".
func (g *Generator) Generate(prompt string) string {
	return strings.Join(g.Walk(Tokenize(prompt)), " ")
}

// Walk is Generate over pre-tokenized input. The result starts with a copy
// of tokens.
func (g *Generator) Walk(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	output := make([]string, len(tokens), g.cfg.MaxTokens+len(tokens))
	copy(output, tokens)
	current := tokens[len(tokens)-1]

	for len(output) < g.cfg.MaxTokens {
		node, ok := s.nodes[current]
		if !ok || node.Index < 0 {
			break
		}
		candidates := s.graph.neighbors(current)
		if len(candidates) == 0 {
			break
		}

		next := s.strongest(node.Index, candidates)
		output = append(output, next)
		current = next

		if g.rng.Float64() < g.cfg.StopProbability {
			break
		}
	}
	return output
}

// strongest picks the candidate with maximal interference against row from.
// Caller holds s.mu. Candidates are always indexed: edges are only made
// between indexed words.
func (s *Store) strongest(from int, candidates []string) string {
	best := candidates[0]
	bestIdx, _ := s.index.lookup(best)
	bestVal := s.matrix.At(from, bestIdx)
	for _, c := range candidates[1:] {
		idx, _ := s.index.lookup(c)
		if v := s.matrix.At(from, idx); v > bestVal {
			best, bestVal = c, v
		}
	}
	return best
}
