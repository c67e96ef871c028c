package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// UpstreamHealth reports the observed health of one upstream host.
type UpstreamHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// IsHealthy reports whether the upstream circuit is closed.
func (h *UpstreamHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Registry tracks the resilient clients for the configured upstream hosts
// and answers health queries for the ops surface. Outcome timestamps come
// from the clients themselves, which record every request they make.
type Registry struct {
	mu        sync.RWMutex
	upstreams map[string]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{upstreams: make(map[string]*Client)}
}

// Register adds an upstream client under a name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upstreams[name] = client
}

// Health returns the health of all registered upstreams, ordered by name.
func (r *Registry) Health() []*UpstreamHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*UpstreamHealth, 0, len(r.upstreams))
	for name, client := range r.upstreams {
		obs := client.Observe()
		health = append(health, &UpstreamHealth{
			Name:          name,
			CircuitState:  client.State(),
			Counts:        client.Counts(),
			LastSuccessAt: obs.LastSuccessAt,
			LastFailureAt: obs.LastFailureAt,
			LastError:     obs.LastError,
		})
	}
	sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
	return health
}
