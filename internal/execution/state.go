// Package execution models the lifecycle of one tool invocation:
// Queued → Running → {Completed, Failed, Timeout, Cancelled}. Terminal
// states are final; a retry is a brand-new invocation, never a mutation
// of an old one.
package execution

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an invocation.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimeout   Status = "timeout"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimeout, StatusCancelled:
		return true
	}
	return false
}

// DefaultDeadline is the elapsed-time threshold after which the control
// loop marks a running invocation as timed out. It is a policy layered
// over the state machine, not a kill signal.
const DefaultDeadline = 60 * time.Second

// Invocation is one tool call moving through the lifecycle.
type Invocation struct {
	ID   string
	Tool string
	Args map[string]string

	status    Status
	createdAt time.Time
	startedAt time.Time
	duration  time.Duration
	errText   string

	now func() time.Time // injectable for tests
}

// New returns a fresh invocation in the Queued state.
func New(tool string, args map[string]string) *Invocation {
	inv := &Invocation{
		ID:     uuid.NewString(),
		Tool:   tool,
		Args:   args,
		status: StatusQueued,
		now:    time.Now,
	}
	inv.createdAt = inv.now()
	return inv
}

// Status returns the current lifecycle state.
func (i *Invocation) Status() Status { return i.status }

// Duration returns the recorded run duration for a completed invocation.
func (i *Invocation) Duration() time.Duration { return i.duration }

// ErrText returns the captured error text for a failed invocation.
func (i *Invocation) ErrText() string { return i.errText }

// StartedAt returns the monotonic start instant captured on Start.
func (i *Invocation) StartedAt() time.Time { return i.startedAt }

func (i *Invocation) guard(from Status) error {
	if i.status.Terminal() {
		return fmt.Errorf("invocation %s is terminal (%s); no further transitions", i.ID, i.status)
	}
	if i.status != from {
		return fmt.Errorf("invocation %s is %s, expected %s", i.ID, i.status, from)
	}
	return nil
}

// Start transitions Queued → Running and captures the start instant.
func (i *Invocation) Start() error {
	if err := i.guard(StatusQueued); err != nil {
		return err
	}
	i.status = StatusRunning
	i.startedAt = i.now()
	return nil
}

// Complete transitions Running → Completed, recording the run duration.
func (i *Invocation) Complete() error {
	if err := i.guard(StatusRunning); err != nil {
		return err
	}
	i.status = StatusCompleted
	i.duration = i.now().Sub(i.startedAt)
	return nil
}

// Fail transitions Running → Failed with the captured error text.
func (i *Invocation) Fail(errText string) error {
	if err := i.guard(StatusRunning); err != nil {
		return err
	}
	i.status = StatusFailed
	i.errText = errText
	i.duration = i.now().Sub(i.startedAt)
	return nil
}

// MarkTimeout transitions a non-terminal invocation to Timeout. Called
// by the control loop when CheckTimeout reports the deadline passed.
func (i *Invocation) MarkTimeout() error {
	if i.status.Terminal() {
		return fmt.Errorf("invocation %s is terminal (%s); no further transitions", i.ID, i.status)
	}
	i.status = StatusTimeout
	return nil
}

// Cancel transitions a non-terminal invocation to Cancelled.
func (i *Invocation) Cancel() error {
	if i.status.Terminal() {
		return fmt.Errorf("invocation %s is terminal (%s); no further transitions", i.ID, i.status)
	}
	i.status = StatusCancelled
	return nil
}

// CheckTimeout is a pure predicate over elapsed time: true when the
// invocation is still live and has been waiting or running for at least
// the deadline. The control loop polls this on its tick; there is no
// dedicated timer.
func (i *Invocation) CheckTimeout(deadline time.Duration) bool {
	if i.status.Terminal() {
		return false
	}
	since := i.createdAt
	if i.status == StatusRunning {
		since = i.startedAt
	}
	return i.now().Sub(since) >= deadline
}
