package auth

import "github.com/jrsteele09/kogase-admin/users"

type EventType int

const (
	EventLoggedIn EventType = iota
	EventLoggedOut
)

func (t EventType) String() string {
	switch t {
	case EventLoggedIn:
		return "logged_in"
	case EventLoggedOut:
		return "logged_out"
	}
	return "unknown"
}

// Event reports a change of the signed-in state. Reason is set when the
// logout was forced, e.g. by an unrecoverable credential.
type Event struct {
	Type   EventType
	User   *users.User
	Reason error
}

type Listener func(Event)

// Subscribe registers l for sign-in state changes. The returned func
// removes it.
func (s *Service) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) emit(e Event) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(e)
	}
}
