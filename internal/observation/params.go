package observation

import "sort"

// ParameterSpec maps a logical parameter name to its upstream numeric code
// and display unit.
type ParameterSpec struct {
	Code int
	Unit string
}

// Registry holds the parameter tables per network. Tables are injected at
// construction so tests can substitute fixtures.
type Registry struct {
	params map[Network]map[string]ParameterSpec
}

// NewRegistry creates a registry from the given tables.
func NewRegistry(tables map[Network]map[string]ParameterSpec) *Registry {
	return &Registry{params: tables}
}

// DefaultRegistry returns the production parameter tables.
func DefaultRegistry() *Registry {
	return NewRegistry(map[Network]map[string]ParameterSpec{
		NetworkMeteorological: {
			"temperature":   {Code: 1, Unit: "celsius"},
			"wind_speed":    {Code: 4, Unit: "m/s"},
			"humidity":      {Code: 6, Unit: "procent"},
			"precipitation": {Code: 7, Unit: "mm"},
			"air_pressure":  {Code: 9, Unit: "hPa"},
		},
		NetworkHydrological: {
			"water_flow":  {Code: 1, Unit: "m³/s"},
			"water_level": {Code: 3, Unit: "m"},
		},
	})
}

// Lookup returns the spec for a logical parameter name within a network.
func (r *Registry) Lookup(network Network, name string) (ParameterSpec, bool) {
	spec, ok := r.params[network][name]
	return spec, ok
}

// Names returns the logical parameter names known for a network, sorted.
func (r *Registry) Names(network Network) []string {
	names := make([]string, 0, len(r.params[network]))
	for name := range r.params[network] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
