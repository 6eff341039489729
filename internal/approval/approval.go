// Package approval tracks human approval of gated tool invocations.
// A State is created per chat session and passed by reference into the
// orchestrator; nothing here is process-wide, so no approval can leak
// across sessions.
package approval

import "errors"

// ScopeKind enumerates the breadth of one human decision.
type ScopeKind int

const (
	// ScopeOnce approves a single named tool for one invocation.
	ScopeOnce ScopeKind = iota
	// ScopeSessionAllGated approves every gated tool for the rest of
	// the session.
	ScopeSessionAllGated
	// ScopeDeny refuses the pending invocation. The loop resumes with a
	// denied tool-result frame; it does not abort.
	ScopeDeny
)

// Scope is one approval decision.
type Scope struct {
	Kind ScopeKind
	Tool string // set for ScopeOnce and ScopeDeny
}

// Once approves tool for a single invocation.
func Once(tool string) Scope { return Scope{Kind: ScopeOnce, Tool: tool} }

// SessionAllGated approves all gated tools for the session.
func SessionAllGated() Scope { return Scope{Kind: ScopeSessionAllGated} }

// Deny refuses the pending invocation of tool.
func Deny(tool string) Scope { return Scope{Kind: ScopeDeny, Tool: tool} }

// PendingRequest captures a gated tool call awaiting a human decision.
type PendingRequest struct {
	Tool      string
	Arguments map[string]string
	StepIndex int
}

var (
	// ErrPendingExists is returned when a second approval is requested
	// while one is already awaiting a decision.
	ErrPendingExists = errors.New("an approval request is already pending")
	// ErrNoPending is returned when a decision arrives with nothing
	// pending.
	ErrNoPending = errors.New("no approval request is pending")
)

// State holds the session's approval facets: at most one pending
// request, the set of tools approved once, and the session-wide
// all-gated flag. Only the control thread mutates it.
type State struct {
	pending      *PendingRequest
	approvedOnce map[string]bool
	allGated     bool
}

// NewState returns a fresh approval state for a new session.
func NewState() *State {
	return &State{approvedOnce: make(map[string]bool)}
}

// Request records a pending gated invocation. At most one may be
// pending at a time.
func (s *State) Request(p PendingRequest) error {
	if s.pending != nil {
		return ErrPendingExists
	}
	s.pending = &p
	return nil
}

// Pending returns the request awaiting a decision, or nil.
func (s *State) Pending() *PendingRequest {
	return s.pending
}

// Resolve applies one human decision to the pending request. Granting
// SessionAllGated approves every gated tool for the remainder of the
// session, not just the pending one. Denial clears the pending request
// without granting anything.
func (s *State) Resolve(scope Scope) (*PendingRequest, error) {
	if s.pending == nil {
		return nil, ErrNoPending
	}
	p := s.pending
	s.pending = nil

	switch scope.Kind {
	case ScopeOnce:
		s.approvedOnce[scope.Tool] = true
	case ScopeSessionAllGated:
		s.allGated = true
	case ScopeDeny:
		// nothing granted
	}
	return p, nil
}

// IsApproved reports whether the tool may run without pausing: either
// the session-wide grant is active, or this tool was approved once and
// not yet consumed.
func (s *State) IsApproved(tool string) bool {
	return s.allGated || s.approvedOnce[tool]
}

// HasSessionGrant reports whether the session-wide all-gated grant is
// active.
func (s *State) HasSessionGrant() bool {
	return s.allGated
}

// Consume uses up a one-shot approval for the tool. Session-wide grants
// are never consumed.
func (s *State) Consume(tool string) {
	if s.allGated {
		return
	}
	delete(s.approvedOnce, tool)
}

// Reset clears all three facets: pending request, once-approved set,
// and the all-gated flag. Called at the start of each new session.
func (s *State) Reset() {
	s.pending = nil
	s.approvedOnce = make(map[string]bool)
	s.allGated = false
}
