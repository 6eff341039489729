package execution

import (
	"testing"
	"time"
)

func TestHappyPath(t *testing.T) {
	inv := New("file_read", map[string]string{"path": "a.go"})
	if inv.Status() != StatusQueued {
		t.Fatalf("new invocation should be queued, got %s", inv.Status())
	}
	if err := inv.Start(); err != nil {
		t.Fatal(err)
	}
	if inv.Status() != StatusRunning {
		t.Fatalf("status = %s, want running", inv.Status())
	}
	if inv.StartedAt().IsZero() {
		t.Error("Start should capture the start instant")
	}
	if err := inv.Complete(); err != nil {
		t.Fatal(err)
	}
	if inv.Status() != StatusCompleted {
		t.Fatalf("status = %s, want completed", inv.Status())
	}
	if inv.Duration() < 0 {
		t.Errorf("duration = %v, want >= 0", inv.Duration())
	}
}

func TestFailCapturesErrorText(t *testing.T) {
	inv := New("bash_exec", nil)
	_ = inv.Start()
	if err := inv.Fail("exit status 1"); err != nil {
		t.Fatal(err)
	}
	if inv.Status() != StatusFailed {
		t.Fatalf("status = %s, want failed", inv.Status())
	}
	if inv.ErrText() != "exit status 1" {
		t.Errorf("errText = %q", inv.ErrText())
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	terminalize := map[string]func(*Invocation){
		"completed": func(i *Invocation) { _ = i.Start(); _ = i.Complete() },
		"failed":    func(i *Invocation) { _ = i.Start(); _ = i.Fail("boom") },
		"timeout":   func(i *Invocation) { _ = i.Start(); _ = i.MarkTimeout() },
		"cancelled": func(i *Invocation) { _ = i.Cancel() },
	}

	for name, fn := range terminalize {
		inv := New("file_read", nil)
		fn(inv)
		if !inv.Status().Terminal() {
			t.Fatalf("%s: expected terminal state", name)
		}
		before := inv.Status()
		if err := inv.Start(); err == nil {
			t.Errorf("%s: Start should fail after terminal", name)
		}
		if err := inv.Complete(); err == nil {
			t.Errorf("%s: Complete should fail after terminal", name)
		}
		if err := inv.Fail("x"); err == nil {
			t.Errorf("%s: Fail should fail after terminal", name)
		}
		if err := inv.MarkTimeout(); err == nil {
			t.Errorf("%s: MarkTimeout should fail after terminal", name)
		}
		if err := inv.Cancel(); err == nil {
			t.Errorf("%s: Cancel should fail after terminal", name)
		}
		if inv.Status() != before {
			t.Errorf("%s: status changed from %s to %s", name, before, inv.Status())
		}
	}
}

func TestCannotCompleteWithoutStarting(t *testing.T) {
	inv := New("file_read", nil)
	if err := inv.Complete(); err == nil {
		t.Error("Complete from queued should fail")
	}
	if err := inv.Fail("x"); err == nil {
		t.Error("Fail from queued should fail")
	}
}

// A queued invocation with a zero deadline times out as soon as any
// time has elapsed.
func TestCheckTimeoutZeroDeadline(t *testing.T) {
	inv := New("bash_exec", nil)
	time.Sleep(time.Millisecond)
	if !inv.CheckTimeout(0) {
		t.Error("zero deadline after positive elapsed time should time out")
	}
}

func TestCheckTimeoutRespectsDeadline(t *testing.T) {
	inv := New("bash_exec", nil)
	_ = inv.Start()
	if inv.CheckTimeout(time.Hour) {
		t.Error("fresh invocation should not exceed an hour deadline")
	}

	// Simulate elapsed time instead of sleeping.
	inv.now = func() time.Time { return inv.startedAt.Add(2 * time.Hour) }
	if !inv.CheckTimeout(time.Hour) {
		t.Error("invocation past its deadline should time out")
	}
}

func TestCheckTimeoutFalseWhenTerminal(t *testing.T) {
	inv := New("file_read", nil)
	_ = inv.Start()
	_ = inv.Complete()
	if inv.CheckTimeout(0) {
		t.Error("terminal invocations never time out")
	}
}

func TestRetryIsANewInvocation(t *testing.T) {
	first := New("file_read", nil)
	_ = first.Start()
	_ = first.Fail("transient")

	second := New("file_read", nil)
	if second.ID == first.ID {
		t.Error("retry must get a fresh id")
	}
	if second.Status() != StatusQueued {
		t.Errorf("retry starts at queued, got %s", second.Status())
	}
	if first.Status() != StatusFailed {
		t.Error("original invocation must stay failed")
	}
}
