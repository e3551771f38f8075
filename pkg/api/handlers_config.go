package api

import (
	"net/http"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/config"
)

// ConfigHandler exposes the running configuration read-only.
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a handler for cfg.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &ConfigHandler{cfg: cfg}
}

// RegisterRoutes registers GET /api/config.
func (h *ConfigHandler) RegisterRoutes(router *Router) {
	router.GET("/api/config", h.GetConfig)
}

// ConfigResponse is the camelCase view of config.Config.
type ConfigResponse struct {
	Memory    MemoryResponse    `json:"memory"`
	Simulator SimulatorResponse `json:"simulator"`
	Session   SessionResponse   `json:"session"`
}

// MemoryResponse mirrors config.MemoryConfig.
type MemoryResponse struct {
	Capacity          int     `json:"capacity"`
	VectorDim         int     `json:"vectorDim"`
	StrengthIncrement float64 `json:"strengthIncrement"`
	MaxTokens         int     `json:"maxTokens"`
	StopProbability   float64 `json:"stopProbability"`
	Seeded            bool    `json:"seeded"`
}

// ComplexResponse is a complex constant.
type ComplexResponse struct {
	Real float64 `json:"real"`
	Imag float64 `json:"imag"`
}

// SimulatorResponse mirrors config.SimulatorConfig.
type SimulatorResponse struct {
	BufferSize             int             `json:"bufferSize"`
	Amplitude              ComplexResponse `json:"amplitude"`
	Phase                  float64         `json:"phase"`
	Wavelength             float64         `json:"wavelength"`
	CoherenceLength        float64         `json:"coherenceLength"`
	EntanglementDegree     float64         `json:"entanglementDegree"`
	RefractiveIndex        ComplexResponse `json:"refractiveIndex"`
	AbsorptionCoefficient  float64         `json:"absorptionCoefficient"`
	QuantumYield           float64         `json:"quantumYield"`
	ScatteringCrossSection float64         `json:"scatteringCrossSection"`
	CoherenceDecay         float64         `json:"coherenceDecay"`
	EntanglementDecay      float64         `json:"entanglementDecay"`
}

// SessionResponse mirrors config.SessionConfig.
type SessionResponse struct {
	Name       string `json:"name"`
	AutoExport bool   `json:"autoExport"`
	ExportPath string `json:"exportPath"`
}

// GetConfig handles GET /api/config. The seed value itself is not exposed.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, configToResponse(h.cfg))
}

func configToResponse(cfg *config.Config) ConfigResponse {
	m, s := cfg.Memory, cfg.Simulator
	return ConfigResponse{
		Memory: MemoryResponse{
			Capacity:          m.Capacity,
			VectorDim:         m.VectorDim,
			StrengthIncrement: m.StrengthIncrement,
			MaxTokens:         m.MaxTokens,
			StopProbability:   m.StopProbability,
			Seeded:            m.Seed != 0,
		},
		Simulator: SimulatorResponse{
			BufferSize:             s.BufferSize,
			Amplitude:              ComplexResponse(s.Amplitude),
			Phase:                  s.Phase,
			Wavelength:             s.Wavelength,
			CoherenceLength:        s.CoherenceLength,
			EntanglementDegree:     s.EntanglementDegree,
			RefractiveIndex:        ComplexResponse(s.RefractiveIndex),
			AbsorptionCoefficient:  s.AbsorptionCoefficient,
			QuantumYield:           s.QuantumYield,
			ScatteringCrossSection: s.ScatteringCrossSection,
			CoherenceDecay:         s.CoherenceDecay,
			EntanglementDecay:      s.EntanglementDecay,
		},
		Session: SessionResponse{
			Name:       cfg.Session.Name,
			AutoExport: cfg.Session.AutoExport,
			ExportPath: cfg.Session.ExportPath,
		},
	}
}
