package module

import "reflect"

// PortSet marks the bundle a module hands out from Ports()
// each module declares a concrete struct of interfaces (the dataset module
// exposes its fetcher this way) and downstream wiring extracts what it needs
type PortSet = any

// PortsOf extracts an interface T from a module's port bundle
// the bundle itself is tried first, then every exported struct field
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	bundle := m.Ports()
	if bundle == nil {
		return zero, false
	}
	if v, ok := bundle.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(bundle)
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf panics when the module does not carry the requested port
// wiring errors of this kind are programmer mistakes caught at boot
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("module: requested port not found on module " + m.Name())
	}
	return v
}
