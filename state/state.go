// Package state implements the change-propagation substrate: a
// StateManager owns three bitsets (externally- and
// internally-modified per body, plus a hydration flag) and hands out
// Signaller handles that Bodies invoke on mutation. The histogram manager
// consults the bitsets before each recompute and resets them afterward.
//
// A Body stores exactly one Signaller by value and has no back-pointer to
// its Molecule or StateManager; swapping a Body between molecules is
// implemented by replacing its Signaller (see Molecule.Add /
// Molecule.Detach in package body).
package state

import "sync"

// Signaller is the opaque change-notification handle a Body invokes on
// mutation. It is safe to swap without the Body noticing, and safe to call
// from any goroutine (though in practice bodies mutate only from the
// caller's single control-flow thread).
type Signaller interface {
	// NotifyExternal flags the owning body as externally modified (e.g. a
	// caller moved/rotated/swapped it).
	NotifyExternal()
	// NotifyInternal flags the owning body as internally modified (e.g. an
	// in-place recompute the body itself triggered).
	NotifyInternal()
}

// unbound is a no-op Signaller for Bodies not attached to any Molecule.
type unbound struct{}

func (unbound) NotifyExternal() {}
func (unbound) NotifyInternal() {}

// Unbound is the shared no-op Signaller instance; quiescent Bodies use it.
var Unbound Signaller = unbound{}

// bound binds a Signaller to one body index inside a StateManager.
type bound struct {
	mgr *Manager
	idx int
}

func (b bound) NotifyExternal() { b.mgr.setExternal(b.idx) }
func (b bound) NotifyInternal() { b.mgr.setInternal(b.idx) }

// Manager holds the three bitsets for a Molecule with n Bodies: which
// bodies were modified externally (by the caller), which were modified
// internally (by their own bookkeeping), and whether the hydration layer
// changed. All bits are reset by Reset after a histogram recompute
// consumes them.
type Manager struct {
	mu                           sync.Mutex
	external, internal           []bool
	hydrationModified            bool
}

// NewManager allocates a Manager for n bodies, all bits clear.
func NewManager(n int) *Manager {
	return &Manager{external: make([]bool, n), internal: make([]bool, n)}
}

// Signaller returns the Signaller handle bound to body index idx.
func (m *Manager) Signaller(idx int) Signaller { return bound{mgr: m, idx: idx} }

// Grow extends the bitsets to accommodate n bodies (append-only; a Body's
// id never changes once inserted, so indices are stable and only grow).
func (m *Manager) Grow(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.external) < n {
		m.external = append(m.external, false)
		m.internal = append(m.internal, false)
	}
}

func (m *Manager) setExternal(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.external[idx] = true
}

func (m *Manager) setInternal(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.internal[idx] = true
}

// MarkHydrationModified flags the hydration layer as changed.
func (m *Manager) MarkHydrationModified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hydrationModified = true
}

// Snapshot is a read-only copy of the bitsets taken at the start of a
// calculate() call, before Reset clears the live state.
type Snapshot struct {
	External          []bool
	Internal          []bool
	HydrationModified bool
}

// Modified reports whether body i was externally or internally modified.
func (s Snapshot) Modified(i int) bool {
	return (i < len(s.External) && s.External[i]) || (i < len(s.Internal) && s.Internal[i])
}

// Snapshot captures the current bitsets without clearing them.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		External:          append([]bool(nil), m.external...),
		Internal:          append([]bool(nil), m.internal...),
		HydrationModified: m.hydrationModified,
	}
}

// Reset clears all bits. Called only after the new master histogram has
// been fully computed.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.external {
		m.external[i] = false
		m.internal[i] = false
	}
	m.hydrationModified = false
}
