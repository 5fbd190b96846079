package panel

// Gate holds a destructive action until it is explicitly confirmed or
// cancelled. The zero value is idle and ready to use.
type Gate[K comparable] struct {
	open   bool
	target K
}

// Open moves the gate to pending confirmation for id. Opening an already
// open gate retargets it.
func (g *Gate[K]) Open(id K) {
	g.open = true
	g.target = id
}

// Close returns the gate to idle and reports the target it was holding.
func (g *Gate[K]) Close() (K, bool) {
	id, ok := g.target, g.open
	g.open = false
	return id, ok
}

// IsOpen reports whether a confirmation is pending.
func (g *Gate[K]) IsOpen() bool {
	return g.open
}

// Target returns the pending id. ok is false when the gate is idle, in which
// case id must not be used.
func (g *Gate[K]) Target() (id K, ok bool) {
	if !g.open {
		var zero K
		return zero, false
	}
	return g.target, true
}
