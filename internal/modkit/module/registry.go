package module

import "sync"

// process-wide port registry, filled once while api.Mount composes the
// dataset, pipeline, lookup and meta modules
var (
	regMu    sync.RWMutex
	registry = map[string]PortSet{}
)

// Register publishes the port set of a named module
func Register(name string, ports PortSet) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = ports
}

// PortsAs looks up a registered port set and asserts it to T
func PortsAs[T any](name string) (T, bool) {
	regMu.RLock()
	v, found := registry[name]
	regMu.RUnlock()
	if !found {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset clears the registry between tests
func Reset() {
	regMu.Lock()
	defer regMu.Unlock()
	registry = map[string]PortSet{}
}
