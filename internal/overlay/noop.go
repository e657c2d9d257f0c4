package overlay

import "sync"

// noopManager satisfies Manager without any native surface. Commands update
// the shared snapshot so callers observe the same state transitions as the
// native variant, but nothing is drawn. It reports Supported: false.
type noopManager struct {
	state sharedState

	mu          sync.Mutex
	prevVisible bool
}

// NewNoop returns a Manager with no native backing. Used on platforms
// without X11 and in tests.
func NewNoop() Manager {
	return &noopManager{}
}

func (m *noopManager) Status() Status {
	return m.state.snapshot(false)
}

func (m *noopManager) Show(payload Payload, pos *Position) error {
	m.state.setPayload(payload)
	if pos != nil {
		m.state.setPosition(*pos)
	}
	m.mu.Lock()
	if m.state.snapshot(false).ConfigMode {
		// Like the native surface, the toast waits for config mode
		// to exit.
		m.prevVisible = true
		m.mu.Unlock()
		m.state.clearError()
		return nil
	}
	m.mu.Unlock()
	m.state.setVisible(true)
	m.state.clearError()
	return nil
}

func (m *noopManager) Hide() error {
	m.mu.Lock()
	m.prevVisible = false
	m.mu.Unlock()
	m.state.setVisible(false)
	m.state.setConfigMode(false)
	return nil
}

func (m *noopManager) EnterConfig(pos *Position) error {
	if pos != nil {
		m.state.setPosition(*pos)
	}
	snap := m.state.snapshot(false)
	m.mu.Lock()
	m.prevVisible = snap.Visible && !snap.ConfigMode
	m.mu.Unlock()
	m.state.setConfigMode(true)
	m.state.setVisible(true)
	m.state.clearError()
	return nil
}

// ExitConfig restores the visibility that preceded config mode, matching
// the native run loop's exit transition.
func (m *noopManager) ExitConfig() error {
	if !m.state.snapshot(false).ConfigMode {
		return nil
	}
	m.mu.Lock()
	visible := m.prevVisible
	m.prevVisible = false
	m.mu.Unlock()
	m.state.setConfigMode(false)
	m.state.setVisible(visible)
	return nil
}

func (m *noopManager) GetPosition() *Position {
	return m.state.getPosition()
}

func (m *noopManager) SetPosition(pos Position) error {
	m.state.setPosition(pos)
	return nil
}
