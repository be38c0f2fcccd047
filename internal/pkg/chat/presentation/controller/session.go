package controller

import (
	"sync"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
)

// SessionState is a connection's position in the join protocol.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateAuthenticating
	StateIdle
	StateJoining
	StateJoined
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateIdle:
		return "idle"
	case StateJoining:
		return "joining"
	case StateJoined:
		return "joined"
	default:
		return "disconnected"
	}
}

// session tracks one authenticated connection through
// Authenticating -> Idle -> Joining(room) -> Joined(room) -> Disconnected.
// A join only completes if nothing moved the session in the meantime, so a
// client never receives a join-result for a room it has since left.
type session struct {
	mu    sync.Mutex
	state SessionState
	room  string
	self  chat.Identity
}

func newSession() *session {
	return &session{state: StateAuthenticating}
}

// authenticated binds the verified identity and moves to Idle.
func (s *session) authenticated(who chat.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticating {
		return
	}
	s.self = who
	s.state = StateIdle
}

// beginJoin moves to Joining(room). It returns the room the session was
// joined to, if any, which the caller must leave.
func (s *session) beginJoin(room string) (previous string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisconnected || s.state == StateAuthenticating {
		return "", false
	}
	if s.state == StateJoined {
		previous = s.room
	}
	s.state = StateJoining
	s.room = room
	return previous, true
}

// completeJoin moves Joining(room) to Joined(room) and records the display
// name chosen for the room. It fails if the session moved on.
func (s *session) completeJoin(room string, self chat.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateJoining || s.room != room {
		return false
	}
	s.state = StateJoined
	s.self = self
	return true
}

// failJoin reverts Joining(room) to Idle.
func (s *session) failJoin(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateJoining && s.room == room {
		s.state = StateIdle
		s.room = ""
	}
}

// leave moves Joined(room) to Idle and returns the room left.
func (s *session) leave() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateJoined {
		return "", false
	}
	room := s.room
	s.state = StateIdle
	s.room = ""
	return room, true
}

// joined returns the current room when the session is Joined.
func (s *session) joined() (string, chat.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.self, s.state == StateJoined
}

// disconnect is valid from any state. It returns the room only when it was Joined;
// an in-flight join cleans up after itself in completeJoin.
func (s *session) disconnect() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, wasJoined := "", s.state == StateJoined
	if wasJoined {
		room = s.room
	}
	s.state = StateDisconnected
	s.room = ""
	return room, wasJoined
}

func (s *session) current() (SessionState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.room
}
