// Package config handles Nebula configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/holographic"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/quantum"
)

// Config is the root configuration structure.
type Config struct {
	Memory    MemoryConfig    `yaml:"memory"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Session   SessionConfig   `yaml:"session"`
	API       APIConfig       `yaml:"api"`
	Shell     ShellConfig     `yaml:"shell"`
}

// MemoryConfig holds word memory and response walk settings.
type MemoryConfig struct {
	Capacity          int     `yaml:"capacity"`
	VectorDim         int     `yaml:"vector_dim"`
	StrengthIncrement float64 `yaml:"strength_increment"`
	MaxTokens         int     `yaml:"max_tokens"`
	StopProbability   float64 `yaml:"stop_probability"`

	// Seed feeds every random source of a session. 0 derives one from the clock.
	Seed uint64 `yaml:"seed"`
}

// ComplexValue is a YAML-friendly complex number.
type ComplexValue struct {
	Real float64 `yaml:"real"`
	Imag float64 `yaml:"imag"`
}

// Complex converts to complex128.
func (c ComplexValue) Complex() complex128 {
	return complex(c.Real, c.Imag)
}

// SimulatorConfig holds the auxiliary state constants.
type SimulatorConfig struct {
	BufferSize             int          `yaml:"buffer_size"`
	Amplitude              ComplexValue `yaml:"amplitude"`
	Phase                  float64      `yaml:"phase"`
	Wavelength             float64      `yaml:"wavelength"`
	CoherenceLength        float64      `yaml:"coherence_length"`
	EntanglementDegree     float64      `yaml:"entanglement_degree"`
	RefractiveIndex        ComplexValue `yaml:"refractive_index"`
	AbsorptionCoefficient  float64      `yaml:"absorption_coefficient"`
	QuantumYield           float64      `yaml:"quantum_yield"`
	ScatteringCrossSection float64      `yaml:"scattering_cross_section"`
	CoherenceDecay         float64      `yaml:"coherence_decay"`
	EntanglementDecay      float64      `yaml:"entanglement_decay"`
}

// SessionConfig holds session settings.
type SessionConfig struct {
	Name       string `yaml:"name"`
	AutoExport bool   `yaml:"auto_export"`
	ExportPath string `yaml:"export_path"`
}

// APIConfig holds HTTP/WebSocket server settings.
type APIConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	CORSOrigins      []string      `yaml:"cors_origins"`
	EnableLogging    bool          `yaml:"enable_logging"`
	ResourceInterval time.Duration `yaml:"resource_interval"`
}

// ShellConfig holds REPL settings.
type ShellConfig struct {
	HistoryFile string `yaml:"history_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			Capacity:          holographic.DefaultCapacity,
			VectorDim:         holographic.DefaultVectorDim,
			StrengthIncrement: holographic.DefaultStrengthIncrement,
			MaxTokens:         holographic.DefaultMaxTokens,
			StopProbability:   holographic.DefaultStopProbability,
		},
		Simulator: SimulatorConfig{
			BufferSize:             1024,
			Amplitude:              ComplexValue{Real: 1},
			Wavelength:             500,
			CoherenceLength:        1000e-9,
			EntanglementDegree:     0.5,
			RefractiveIndex:        ComplexValue{Real: 1.5, Imag: 0.01},
			AbsorptionCoefficient:  0.1,
			QuantumYield:           0.9,
			ScatteringCrossSection: 0.1,
			CoherenceDecay:         0.99,
			EntanglementDecay:      0.01,
		},
		Session: SessionConfig{
			Name:       "default",
			AutoExport: false,
			ExportPath: "./sessions",
		},
		API: APIConfig{
			Enabled:          false,
			Host:             "localhost",
			Port:             8081,
			CORSOrigins:      []string{"http://localhost:5173"},
			EnableLogging:    true,
			ResourceInterval: 5 * time.Second,
		},
		Shell: ShellConfig{
			HistoryFile: "",
		},
	}
}

// HolographicConfig converts the memory section for holographic.NewStore.
func (c *Config) HolographicConfig() holographic.Config {
	return holographic.Config{
		Capacity:          c.Memory.Capacity,
		VectorDim:         c.Memory.VectorDim,
		StrengthIncrement: c.Memory.StrengthIncrement,
	}
}

// GeneratorConfig converts the walk settings for holographic.NewGenerator.
func (c *Config) GeneratorConfig() holographic.GeneratorConfig {
	return holographic.GeneratorConfig{
		MaxTokens:       c.Memory.MaxTokens,
		StopProbability: c.Memory.StopProbability,
	}
}

// QuantumConfig converts the simulator section for quantum.New.
func (c *Config) QuantumConfig() quantum.Config {
	s := c.Simulator
	return quantum.Config{
		BufferSize:             s.BufferSize,
		Amplitude:              s.Amplitude.Complex(),
		Phase:                  s.Phase,
		Wavelength:             s.Wavelength,
		CoherenceLength:        s.CoherenceLength,
		EntanglementDegree:     s.EntanglementDegree,
		RefractiveIndex:        s.RefractiveIndex.Complex(),
		AbsorptionCoefficient:  s.AbsorptionCoefficient,
		QuantumYield:           s.QuantumYield,
		ScatteringCrossSection: s.ScatteringCrossSection,
		CoherenceDecay:         s.CoherenceDecay,
		EntanglementDecay:      s.EntanglementDecay,
	}
}

// Validate checks field ranges. It reports the first problem found.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...interface{}) error {
		return nerrors.ConfigErrorf(nerrors.ErrConfigInvalid, format, args...).
			WithContext("field", field)
	}

	switch {
	case c.Memory.Capacity <= 0:
		return invalid("memory.capacity", "capacity must be positive, got %d", c.Memory.Capacity)
	case c.Memory.VectorDim <= 0:
		return invalid("memory.vector_dim", "vector_dim must be positive, got %d", c.Memory.VectorDim)
	case c.Memory.StrengthIncrement < 0:
		return invalid("memory.strength_increment", "strength_increment must not be negative")
	case c.Memory.MaxTokens <= 0:
		return invalid("memory.max_tokens", "max_tokens must be positive, got %d", c.Memory.MaxTokens)
	case c.Memory.StopProbability < 0 || c.Memory.StopProbability > 1:
		return invalid("memory.stop_probability", "stop_probability must be within [0, 1], got %g", c.Memory.StopProbability)
	case c.Simulator.BufferSize <= 0:
		return invalid("simulator.buffer_size", "buffer_size must be positive, got %d", c.Simulator.BufferSize)
	case c.Simulator.CoherenceDecay < 0 || c.Simulator.CoherenceDecay > 1:
		return invalid("simulator.coherence_decay", "coherence_decay must be within [0, 1], got %g", c.Simulator.CoherenceDecay)
	case c.Simulator.EntanglementDecay < 0:
		return invalid("simulator.entanglement_decay", "entanglement_decay must not be negative")
	case c.API.Port < 0 || c.API.Port > 65535:
		return invalid("api.port", "port must be within 0-65535, got %d", c.API.Port)
	}
	return nil
}

// Load reads, parses and validates a config file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nerrors.ConfigError(nerrors.ErrConfigNotFound, "config file not found").
				WithContext("path", path).
				WithCause(err).
				WithSuggestions(
					"Run 'nebula --init' to create a default config",
					"Or pass an existing file with --config <path>",
				)
		}
		return nil, nerrors.ConfigError(nerrors.ErrConfigReadFailed, "failed to read config").
			WithContext("path", path).
			WithCause(err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, nerrors.ConfigError(nerrors.ErrConfigParseFailed, "failed to parse config").
			WithContext("path", path).
			WithCause(err).
			WithSuggestion("Check the YAML indentation and key names")
	}

	if err := cfg.Validate(); err != nil {
		if ne, ok := nerrors.AsNebulaError(err); ok {
			ne.WithContext("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns defaults if the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nerrors.ConfigError(nerrors.ErrConfigWriteFailed, "failed to create config directory").
			WithContext("path", path).
			WithCause(err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return nerrors.ConfigError(nerrors.ErrConfigWriteFailed, "failed to marshal config").
			WithCause(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nerrors.ConfigError(nerrors.ErrConfigWriteFailed, "failed to write config file").
			WithContext("path", path).
			WithCause(err)
	}
	return nil
}

// DefaultConfigPath returns nebula.yaml in the working directory, or
// config/nebula.yaml when only that one exists.
func DefaultConfigPath() string {
	if _, err := os.Stat("nebula.yaml"); err == nil {
		return "nebula.yaml"
	}
	if _, err := os.Stat("config/nebula.yaml"); err == nil {
		return "config/nebula.yaml"
	}
	return "nebula.yaml"
}

// InitConfig writes a default config file unless one already exists.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Default().Save(path)
}

// Address returns host:port for the API server.
func (a APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
