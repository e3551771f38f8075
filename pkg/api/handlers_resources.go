package api

import (
	"context"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceSnapshot is one host resource sample.
type ResourceSnapshot struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryTotal   uint64    `json:"memoryTotal"`
	MemoryUsed    uint64    `json:"memoryUsed"`
	MemoryPercent float64   `json:"memoryPercent"`
	Goroutines    int       `json:"goroutines"`
	HeapAlloc     uint64    `json:"heapAlloc"`
	SampledAt     time.Time `json:"sampledAt"`
}

// ResourceSampler takes one sample.
type ResourceSampler func(ctx context.Context) (*ResourceSnapshot, error)

// SampleHost reads CPU and memory usage through gopsutil and adds the
// process's own goroutine and heap figures.
func SampleHost(ctx context.Context) (*ResourceSnapshot, error) {
	snap := &ResourceSnapshot{
		Goroutines: runtime.NumGoroutine(),
		SampledAt:  time.Now().UTC(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	snap.HeapAlloc = ms.HeapAlloc

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, err
	}
	if len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	snap.MemoryTotal = vm.Total
	snap.MemoryUsed = vm.Used
	snap.MemoryPercent = vm.UsedPercent

	return snap, nil
}

// ResourcesHandler serves host resource samples.
type ResourcesHandler struct {
	sample ResourceSampler
}

// NewResourcesHandler creates a handler. A nil sampler uses SampleHost.
func NewResourcesHandler(sampler ResourceSampler) *ResourcesHandler {
	if sampler == nil {
		sampler = SampleHost
	}
	return &ResourcesHandler{sample: sampler}
}

// RegisterRoutes registers GET /api/resources.
func (h *ResourcesHandler) RegisterRoutes(router *Router) {
	router.GET("/api/resources", h.GetResources)
}

// GetResources handles GET /api/resources.
func (h *ResourcesHandler) GetResources(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sample(r.Context())
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, "resources_unavailable",
			"Failed to sample host resources: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// Publish samples every interval and pushes the result to hub subscribers
// until ctx is cancelled. Failed samples are logged and skipped.
func (h *ResourcesHandler) Publish(ctx context.Context, hub *Hub, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := h.sample(ctx)
			if err != nil {
				log.Printf("[api] resource sample failed: %v", err)
				continue
			}
			hub.BroadcastResources(snap)
		}
	}
}
