package overlay

import "sync"

// sharedState is the snapshot store read by Status and GetPosition and
// written from both caller goroutines and the overlay run loop. A single
// mutex guards every field; holders never block on anything else.
type sharedState struct {
	mu         sync.Mutex
	running    bool
	visible    bool
	configMode bool
	lastError  string
	position   *Position
	payload    Payload
}

func (s *sharedState) snapshot(supported bool) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Supported:  supported,
		Running:    s.running,
		Visible:    s.visible,
		ConfigMode: s.configMode,
		LastError:  s.lastError,
	}
	if s.position != nil {
		p := *s.position
		st.Position = &p
	}
	return st
}

func (s *sharedState) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

func (s *sharedState) setVisible(v bool) {
	s.mu.Lock()
	s.visible = v
	s.mu.Unlock()
}

func (s *sharedState) setConfigMode(v bool) {
	s.mu.Lock()
	s.configMode = v
	s.mu.Unlock()
}

func (s *sharedState) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *sharedState) clearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

func (s *sharedState) setPosition(p Position) {
	s.mu.Lock()
	cp := p
	s.position = &cp
	s.mu.Unlock()
}

func (s *sharedState) getPosition() *Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == nil {
		return nil
	}
	p := *s.position
	return &p
}

func (s *sharedState) setPayload(p Payload) {
	s.mu.Lock()
	s.payload = p
	s.mu.Unlock()
}

func (s *sharedState) getPayload() Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload
}
