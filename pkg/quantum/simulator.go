// Package quantum simulates a decaying internal state that turns chat turns
// into display metrics (coherence, throughput, interference strength).
// It shares no state with the word memory.
package quantum

import (
	"math"
	"math/cmplx"
	"strconv"
	"sync"
	"time"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/entropy"
	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

// PatternSize is the side of the square interference pattern grid.
const PatternSize = 32

// Config holds the construction-time constants of a Simulator.
type Config struct {
	// BufferSize is the length of the four state arrays.
	BufferSize int

	Amplitude          complex128
	Phase              float64
	Wavelength         float64 // nm
	CoherenceLength    float64 // m
	EntanglementDegree float64

	RefractiveIndex        complex128
	AbsorptionCoefficient  float64
	QuantumYield           float64
	ScatteringCrossSection float64

	// CoherenceDecay multiplies each processed coherence slot.
	CoherenceDecay float64
	// EntanglementDecay is subtracted from each processed entanglement slot, floored at 0.
	EntanglementDecay float64

	// Clock times Process calls. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the reference constants.
func DefaultConfig() Config {
	return Config{
		BufferSize:             1024,
		Amplitude:              complex(1, 0),
		Phase:                  0,
		Wavelength:             500,
		CoherenceLength:        1000e-9,
		EntanglementDegree:     0.5,
		RefractiveIndex:        complex(1.5, 0.01),
		AbsorptionCoefficient:  0.1,
		QuantumYield:           0.9,
		ScatteringCrossSection: 0.1,
		CoherenceDecay:         0.99,
		EntanglementDecay:      0.01,
	}
}

func (c Config) validate() error {
	switch {
	case c.BufferSize <= 0:
		return nerrors.SimulatorErrorf(nerrors.ErrInvalidConfig,
			"buffer size must be positive, got %d", c.BufferSize)
	case c.CoherenceDecay < 0 || c.CoherenceDecay > 1:
		return nerrors.SimulatorErrorf(nerrors.ErrInvalidConfig,
			"coherence decay must be within [0, 1], got %g", c.CoherenceDecay)
	case c.EntanglementDecay < 0:
		return nerrors.SimulatorErrorf(nerrors.ErrInvalidConfig,
			"entanglement decay must not be negative, got %g", c.EntanglementDecay)
	}
	for name, v := range map[string]float64{
		"phase":                    c.Phase,
		"absorption_coefficient":   c.AbsorptionCoefficient,
		"quantum_yield":            c.QuantumYield,
		"scattering_cross_section": c.ScatteringCrossSection,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nerrors.SimulatorErrorf(nerrors.ErrInvalidConfig, "%s must be finite", name)
		}
	}
	if cmplx.IsNaN(c.Amplitude) || cmplx.IsInf(c.Amplitude) {
		return nerrors.SimulatorErrorf(nerrors.ErrInvalidConfig, "amplitude must be finite")
	}
	return nil
}

// Simulator is one session's auxiliary state. All methods are safe for
// concurrent use; Process calls are serialised.
type Simulator struct {
	mu sync.Mutex

	cfg Config
	rng entropy.Source

	// opticalModulation depends only on construction constants.
	opticalModulation float64

	superposition []float64
	coherence     []float64
	entanglement  []float64
	interference  []float64

	pattern         [PatternSize][PatternSize]float64
	processingSpeed float64
	calls           int
}

// New validates cfg and draws the initial state from rng:
// superposition and entanglement uniform in [0,1), coherence in [0.8,1.0),
// interference the cosine of a uniform phase.
func New(cfg Config, rng entropy.Source) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, nerrors.SimulatorErrorf(nerrors.ErrInvalidConfig, "random source is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	n := cfg.BufferSize
	s := &Simulator{
		cfg:           cfg,
		rng:           rng,
		superposition: make([]float64, n),
		coherence:     make([]float64, n),
		entanglement:  make([]float64, n),
		interference:  make([]float64, n),
		opticalModulation: cfg.QuantumYield *
			(1 - cfg.AbsorptionCoefficient) *
			math.Exp(-cfg.ScatteringCrossSection),
	}
	for i := 0; i < n; i++ {
		phase := rng.Float64() * 2 * math.Pi
		s.superposition[i] = rng.Float64()
		s.coherence[i] = 0.8 + rng.Float64()*0.2
		s.entanglement[i] = rng.Float64()
		s.interference[i] = math.Cos(phase)
	}
	return s, nil
}

// Process modulates samples by the current state and then decays that state.
//
// Only the first min(len(samples), BufferSize) slots are processed; later
// samples are copied through unchanged and do not touch the state. Samples
// containing NaN or ±Inf are rejected before anything changes.
func (s *Simulator) Process(samples []float64) ([]float64, error) {
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nerrors.SimulatorErrorf(nerrors.ErrInvalidSamples,
				"sample %d is not a finite number", i).
				WithContext("index", strconv.Itoa(i))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.cfg.Clock()

	out := make([]float64, len(samples))
	copy(out, samples)

	slots := min(len(samples), s.cfg.BufferSize)
	cosPhase := math.Cos(s.cfg.Phase)
	for i := 0; i < slots; i++ {
		sup, coh, ent := s.superposition[i], s.coherence[i], s.entanglement[i]

		local := cosPhase * sup * coh * (1 + ent)
		out[i] = samples[i] * (1 + local) * s.opticalModulation

		s.superposition[i] = (sup + s.rng.Float64()) / 2
		s.coherence[i] = coh * s.cfg.CoherenceDecay
		s.entanglement[i] = math.Max(0, ent-s.cfg.EntanglementDecay)
	}

	s.updatePattern()

	elapsed := s.cfg.Clock().Sub(start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	s.processingSpeed = float64(slots) / elapsed.Seconds()
	s.calls++

	return out, nil
}

// updatePattern recomputes the grid from coherence. Caller holds s.mu.
func (s *Simulator) updatePattern() {
	amp := cmplx.Abs(s.cfg.Amplitude)
	n := len(s.coherence)
	for r := 0; r < PatternSize; r++ {
		coh := s.coherence[r%n]
		for c := 0; c < PatternSize; c++ {
			s.pattern[r][c] = amp * coh * math.Cos(float64(r+c)*math.Pi/16)
		}
	}
}

// Metrics is the simulator's display snapshot.
type Metrics struct {
	CoherenceLength      float64 `json:"coherenceLength"`
	ProcessingSpeed      float64 `json:"processingSpeed"`
	AverageCoherence     float64 `json:"averageCoherence"`
	EntanglementDegree   float64 `json:"entanglementDegree"`
	QuantumYield         float64 `json:"quantumYield"`
	InterferenceStrength float64 `json:"interferenceStrength"`
}

// Metrics reports live averages over the decaying state. EntanglementDegree
// and QuantumYield are the construction constants and never decay.
func (s *Simulator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cohSum float64
	for _, v := range s.coherence {
		cohSum += v
	}

	var patSum float64
	for r := range s.pattern {
		for c := range s.pattern[r] {
			patSum += math.Abs(s.pattern[r][c])
		}
	}

	return Metrics{
		CoherenceLength:      s.cfg.CoherenceLength,
		ProcessingSpeed:      s.processingSpeed,
		AverageCoherence:     cohSum / float64(len(s.coherence)),
		EntanglementDegree:   s.cfg.EntanglementDegree,
		QuantumYield:         s.cfg.QuantumYield,
		InterferenceStrength: patSum / float64(PatternSize*PatternSize),
	}
}

// OpticalModulation returns yield × (1 − absorption) × e^(−scattering).
func (s *Simulator) OpticalModulation() float64 {
	return s.opticalModulation
}

// Calls returns how many times Process has run.
func (s *Simulator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// State is a copy of the simulator arrays.
type State struct {
	Superposition []float64
	Coherence     []float64
	Entanglement  []float64
	Interference  []float64
	Pattern       [PatternSize][PatternSize]float64
}

// Snapshot copies the current state.
func (s *Simulator) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Superposition: append([]float64(nil), s.superposition...),
		Coherence:     append([]float64(nil), s.coherence...),
		Entanglement:  append([]float64(nil), s.entanglement...),
		Interference:  append([]float64(nil), s.interference...),
		Pattern:       s.pattern,
	}
}
