package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oryxcli/oryx/internal/approval"
	"github.com/oryxcli/oryx/internal/audit"
	"github.com/oryxcli/oryx/internal/config"
	"github.com/oryxcli/oryx/internal/conversation"
	"github.com/oryxcli/oryx/internal/loop"
	"github.com/oryxcli/oryx/internal/memory"
	"github.com/oryxcli/oryx/internal/session"
	"github.com/oryxcli/oryx/internal/tools"
	"github.com/oryxcli/oryx/internal/workspace"
)

// tickInterval paces Tick while the control loop waits on the event
// stream; tool timeouts are only detected on ticks.
const tickInterval = 100 * time.Millisecond

func toolDeadline(cfg *config.Config) time.Duration {
	if cfg.ToolTimeoutSeconds > 0 {
		return time.Duration(cfg.ToolTimeoutSeconds) * time.Second
	}
	return 0
}

// app owns the single control thread. Everything the orchestrator
// needs from the outside world (stdin decisions, tick pacing, event
// draining) happens here; background units never touch it.
type app struct {
	o          *loop.Orchestrator
	root       string
	auditLog   *audit.Log
	memIndex   *memory.Index
	watcher    *workspace.Watcher
	store      *session.Store
	summarizer *session.Summarizer
	sessionID  string

	stdin   *bufio.Scanner
	history []conversation.Frame
	quit    bool
}

// Run is the interactive read-eval loop: one user line becomes one
// orchestrator session.
func (a *app) Run(ctx context.Context) error {
	a.stdin = bufio.NewScanner(os.Stdin)
	fmt.Printf("oryx ready (workspace: %s)\n", a.root)

	for !a.quit {
		fmt.Print("you> ")
		if !a.stdin.Scan() {
			break
		}
		line := strings.TrimSpace(a.stdin.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		if notice := a.drainWatcher(); notice != "" {
			line = notice + "\n\n" + line
		}
		a.runTurn(ctx, line)
		fmt.Println()
	}
	return nil
}

func (a *app) drainWatcher() string {
	if a.watcher == nil {
		return ""
	}
	return workspace.FormatNotices(a.watcher.Drain())
}

// runTurn drives one session to its end: model responses arrive as
// events, tool calls are dispatched or paused on, and the turn closes
// on a plain response, a display_text result, or an error.
func (a *app) runTurn(ctx context.Context, line string) {
	a.o.Start(ctx, line)
	defer a.archiveFrames()

	streamed := false
	for {
		ev, ok := a.nextEvent(ctx)
		if !ok {
			return
		}
		switch ev.Kind {
		case loop.EventChunk:
			fmt.Print(ev.Content)
			streamed = true
		case loop.EventError:
			fmt.Fprintf(os.Stderr, "\nmodel error: %s\n", ev.Err)
			return
		case loop.EventComplete:
			if streamed {
				fmt.Println()
				streamed = false
			}
			act := a.o.HandleModelComplete(ctx, ev.FullResponse)
			switch act.Kind {
			case loop.ActionTurnEnded:
				return
			case loop.ActionRequestApproval:
				if !a.promptApproval(ctx, act.Pending) {
					return
				}
			case loop.ActionRejected:
				fmt.Printf("  [rejected: %s]\n", act.Reason)
			case loop.ActionDispatched:
				if call, ok := loop.ParseToolCall(ev.FullResponse); ok {
					fmt.Printf("  [running %s]\n", call.Tool)
					if call.Tool == tools.DisplayTextTool {
						a.awaitDisplay(ctx)
						return
					}
				}
			}
		}
	}
}

// nextEvent blocks on the event stream while keeping Tick running so
// finished tools and timeouts are noticed.
func (a *app) nextEvent(ctx context.Context) (loop.Event, bool) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-a.o.Events():
			return ev, true
		case <-ticker.C:
			a.o.Tick(ctx)
		case <-ctx.Done():
			return loop.Event{}, false
		}
	}
}

// awaitDisplay waits for the display_text result frame and prints it.
// display_text ends the turn without another model call, so no further
// event will arrive.
func (a *app) awaitDisplay(ctx context.Context) {
	base := a.o.State().Frames.Len()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		a.o.Tick(ctx)
		frames := a.o.State().Frames.Frames()
		if len(frames) > base {
			last := frames[len(frames)-1]
			if last.Result != nil {
				fmt.Println(last.Result.Output)
			}
			return
		}
		time.Sleep(tickInterval)
	}
}

// promptApproval asks the user to decide a paused gated tool. Returns
// false when the user quits; the loop resumes on every other answer,
// including denial.
func (a *app) promptApproval(ctx context.Context, pending *loop.PendingGatedTool) bool {
	fmt.Printf("\napproval needed: %s\n", pending.Tool)
	for k, v := range pending.Args {
		if len(v) > 120 {
			v = v[:120] + "..."
		}
		fmt.Printf("  %s: %s\n", k, v)
	}

	for {
		fmt.Print("allow? [y]es once / [a]ll gated this session / [n]o / [q]uit: ")
		if !a.stdin.Scan() {
			a.o.Quit()
			a.quit = true
			return false
		}
		var scope approval.Scope
		switch strings.TrimSpace(strings.ToLower(a.stdin.Text())) {
		case "y", "yes":
			scope = approval.Once(pending.Tool)
		case "a", "all":
			scope = approval.SessionAllGated()
		case "n", "no":
			scope = approval.Deny(pending.Tool)
		case "q", "quit":
			a.o.Quit()
			a.quit = true
			return false
		default:
			continue
		}
		if err := a.o.Resolve(ctx, scope); err != nil {
			fmt.Fprintf(os.Stderr, "approval failed: %v\n", err)
			return false
		}
		return true
	}
}

// archiveFrames folds the finished turn into the cross-turn history
// kept for session persistence.
func (a *app) archiveFrames() {
	if st := a.o.State(); st != nil {
		a.history = append(a.history, st.Frames.Frames()...)
	}
}

// Close persists the session and releases the audit log, memory index,
// and watcher.
func (a *app) Close(ctx context.Context) {
	if a.watcher != nil {
		_ = a.watcher.Stop()
	}
	a.saveSession(ctx)
	if a.memIndex != nil {
		_ = a.memIndex.Close()
	}
	if a.auditLog != nil {
		_ = a.auditLog.Close()
	}
}

func (a *app) saveSession(ctx context.Context) {
	if len(a.history) == 0 {
		return
	}
	frames := session.FromFrames(a.history)

	title, err := a.summarizer.GenerateTitle(ctx, frames)
	if err != nil || title == "" {
		title = "Untitled Session"
	}
	summary, err := a.summarizer.GenerateSummary(ctx, frames)
	if err != nil {
		summary = ""
	}

	now := time.Now()
	sess := &session.Session{
		ID:            a.sessionID,
		WorkspacePath: a.root,
		WorkspaceHash: a.store.WorkspaceHash(a.root),
		Title:         title,
		CreatedAt:     now,
		UpdatedAt:     now,
		Frames:        frames,
		Summary:       summary,
	}
	if err := a.store.Save(sess); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save session: %v\n", err)
	}
}
