package avs

import "github.com/ebitengine/purego"

// registerFunc is indirected so wrapper tests can substitute Go closures for
// real host entry points.
var registerFunc = purego.RegisterFunc

// bindSlot binds a resolved table slot to a typed Go function. A zero slot
// yields a nil function; callers must check before invoking.
func bindSlot[T any](addr uintptr) T {
	var fn T
	if addr != 0 {
		registerFunc(&fn, addr)
	}
	return fn
}
