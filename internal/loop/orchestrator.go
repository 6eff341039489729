// Package loop drives the agentic tool-execution cycle: it consumes
// model output, validates embedded tool calls, gates dangerous tools
// behind human approval, dispatches execution to one-shot background
// units, and streams lifecycle events to the UI. The orchestrator
// exclusively owns the LoopState; background units communicate only
// through channels and the audit log.
package loop

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oryxcli/oryx/internal/approval"
	"github.com/oryxcli/oryx/internal/audit"
	"github.com/oryxcli/oryx/internal/conversation"
	"github.com/oryxcli/oryx/internal/discovery"
	"github.com/oryxcli/oryx/internal/execution"
	"github.com/oryxcli/oryx/internal/memory"
	"github.com/oryxcli/oryx/internal/plan"
	"github.com/oryxcli/oryx/internal/tools"
)

// ModelClient is the narrow contract to the language-model provider.
type ModelClient interface {
	Complete(ctx context.Context, system string, messages []conversation.Message) (string, error)
}

// StreamingModelClient is optionally implemented by providers that can
// deliver incremental output; the orchestrator then emits Chunk events.
type StreamingModelClient interface {
	Stream(ctx context.Context, system string, messages []conversation.Message) (<-chan string, <-chan error)
}

// ToolRunner executes a tool invocation. Implementations are
// deterministic OS wrappers and are not specified here.
type ToolRunner interface {
	Run(ctx context.Context, tool string, args map[string]string) (string, error)
}

// PendingGatedTool captures the tool call the loop paused on.
type PendingGatedTool struct {
	Tool      string
	Args      map[string]string
	StepIndex int
}

// LoopState is the orchestrator-owned session state. IsPaused() holds
// exactly when a pending gated tool is present.
type LoopState struct {
	SessionID   string
	UserMessage string
	Active      bool
	Frames      *conversation.Stack
	Pending     *PendingGatedTool
}

// IsPaused reports whether the loop is awaiting a human decision.
func (s *LoopState) IsPaused() bool { return s.Pending != nil }

// ActionKind classifies what HandleModelComplete decided.
type ActionKind int

const (
	// ActionTurnEnded: no tool call; the turn ends normally.
	ActionTurnEnded ActionKind = iota
	// ActionRequestApproval: a gated, unapproved tool paused the loop.
	ActionRequestApproval
	// ActionDispatched: the tool was sent to a background unit.
	ActionDispatched
	// ActionRejected: the call failed validation; a failed tool result
	// was injected and the loop continues.
	ActionRejected
)

// Action is the orchestrator's decision for one model response.
type Action struct {
	Kind    ActionKind
	Pending *PendingGatedTool
	Reason  string // set for ActionRejected
}

// Config wires the orchestrator's collaborators. Approval state and the
// audit log are created per session by the caller and passed in by
// reference; nothing here is process-wide.
type Config struct {
	Catalog    *tools.Catalog
	Checker    *tools.Checker
	Approvals  *approval.State
	Discovery  *discovery.Engine
	Model      ModelClient
	Runner     ToolRunner
	Audit      *audit.Log
	Memory     *memory.Index // optional
	BasePrompt string
	Deadline   time.Duration // tool timeout threshold; DefaultDeadline when zero
}

type toolOutcome struct {
	invID  string
	call   ToolCall
	output string
	err    error
}

// Orchestrator is the central loop driver. All methods must be called
// from the control thread; only the goroutines it spawns run elsewhere,
// and they report exclusively through channels.
type Orchestrator struct {
	catalog   *tools.Catalog
	checker   *tools.Checker
	approvals *approval.State
	discover  *discovery.Engine
	model     ModelClient
	runner    ToolRunner
	log       *audit.Log
	mem       *memory.Index
	base      string
	deadline  time.Duration

	events   chan Event
	outcomes chan toolOutcome

	state       *LoopState
	system      string
	active      *execution.Invocation
	activeCall  ToolCall
	activeScope string // approval scope of the active call, "" when auto

	recentOutputs []string
	recentTools   []string
}

// New builds an orchestrator from its collaborators.
func New(cfg Config) *Orchestrator {
	deadline := cfg.Deadline
	if deadline == 0 {
		deadline = execution.DefaultDeadline
	}
	return &Orchestrator{
		catalog:   cfg.Catalog,
		checker:   cfg.Checker,
		approvals: cfg.Approvals,
		discover:  cfg.Discovery,
		model:     cfg.Model,
		runner:    cfg.Runner,
		log:       cfg.Audit,
		mem:       cfg.Memory,
		base:      cfg.BasePrompt,
		deadline:  deadline,
		events:    make(chan Event, 64),
		outcomes:  make(chan toolOutcome, 16),
	}
}

// Events returns the one-way UI event stream.
func (o *Orchestrator) Events() <-chan Event { return o.events }

// State returns the current loop state, nil before the first Start.
func (o *Orchestrator) State() *LoopState { return o.state }

// Start opens a new session for a user message: approval state resets,
// a fresh frame stack is created, the tool set is discovered and
// logged, and the first model call is dispatched in the background.
func (o *Orchestrator) Start(ctx context.Context, userMessage string) {
	o.approvals.Reset()
	o.active = nil
	o.activeScope = ""
	o.recentOutputs = nil
	o.recentTools = nil

	o.state = &LoopState{
		SessionID:   uuid.NewString(),
		UserMessage: userMessage,
		Active:      true,
		Frames:      conversation.NewStack(),
	}
	o.state.Frames.AddUser(userMessage)
	o.indexFrame(conversation.Frame{Kind: conversation.KindUser, Text: userMessage})

	res := o.discover.Discover(userMessage, o.recentOutputs, o.recentTools)
	o.system = o.base + "\n\n" + discovery.FormatPrompt(res)
	o.recordDiscovery(ctx, userMessage, res)

	o.emit(Event{Kind: EventStarted, SessionID: o.state.SessionID, UserMessage: userMessage})
	o.continueModel(ctx)
}

// HandleModelComplete processes one full model response: it appends the
// assistant frame, looks for an embedded tool call, screens it against
// the whitelist and preconditions, and either ends the turn, pauses for
// approval, injects a rejection, or dispatches execution. Argument
// completeness is checked only after the gate is settled, so a gated
// call pauses even when its arguments are incomplete.
func (o *Orchestrator) HandleModelComplete(ctx context.Context, response string) Action {
	if o.state == nil || !o.state.Active {
		return Action{Kind: ActionTurnEnded}
	}

	o.state.Frames.AddAssistant(response)
	o.indexFrame(conversation.Frame{Kind: conversation.KindAssistant, Text: response})

	call, ok := ParseToolCall(response)
	if !ok {
		return Action{Kind: ActionTurnEnded}
	}

	if err := o.screenCall(call); err != nil {
		o.injectFailure(ctx, call, err.Error(), nil)
		o.continueModel(ctx)
		return Action{Kind: ActionRejected, Reason: err.Error()}
	}

	if o.catalog.IsGated(call.Tool) && !o.approvals.IsApproved(call.Tool) {
		pending := PendingGatedTool{
			Tool:      call.Tool,
			Args:      call.Args,
			StepIndex: o.state.Frames.Len(),
		}
		if err := o.approvals.Request(approval.PendingRequest{
			Tool:      pending.Tool,
			Arguments: pending.Args,
			StepIndex: pending.StepIndex,
		}); err != nil {
			o.injectFailure(ctx, call, err.Error(), nil)
			return Action{Kind: ActionRejected, Reason: err.Error()}
		}
		o.state.Pending = &pending
		return Action{Kind: ActionRequestApproval, Pending: &pending}
	}

	if err := o.validateCall(call); err != nil {
		o.injectFailure(ctx, call, err.Error(), nil)
		o.continueModel(ctx)
		return Action{Kind: ActionRejected, Reason: err.Error()}
	}

	scope := ""
	if o.catalog.IsGated(call.Tool) {
		// Covered by a prior grant; a once-approval is consumed now.
		scope = "once"
		if o.approvals.HasSessionGrant() {
			scope = "session_all_gated"
		}
		o.approvals.Consume(call.Tool)
	}
	o.dispatchTool(ctx, call, scope)
	return Action{Kind: ActionDispatched}
}

// Resolve applies a human approval decision to the paused loop.
// Denial resumes the loop with a synthetic failed tool result; a grant
// executes the pending tool. Resolving an unpaused loop is an error.
func (o *Orchestrator) Resolve(ctx context.Context, scope approval.Scope) error {
	if o.state == nil || !o.state.IsPaused() {
		return approval.ErrNoPending
	}
	pending, err := o.approvals.Resolve(scope)
	if err != nil {
		return err
	}
	o.state.Pending = nil

	call := ToolCall{Tool: pending.Tool, Args: pending.Arguments}
	if scope.Kind == approval.ScopeDeny {
		reason := fmt.Sprintf("tool %s was denied by the user", pending.Tool)
		o.injectFailure(ctx, call, reason, &denialDetail{Tool: pending.Tool, Scope: "deny"})
		o.continueModel(ctx)
		return nil
	}

	// The approved call still has to pass the full strict pass; the gate
	// only defers the argument check, it never waives it.
	if err := o.validateCall(call); err != nil {
		o.approvals.Consume(pending.Tool)
		o.injectFailure(ctx, call, err.Error(), nil)
		o.continueModel(ctx)
		return nil
	}

	scopeName := "once"
	if scope.Kind == approval.ScopeSessionAllGated {
		scopeName = "session_all_gated"
	} else {
		o.approvals.Consume(pending.Tool)
	}
	o.dispatchTool(ctx, call, scopeName)
	return nil
}

// Quit tears the loop down immediately: no further model calls, the
// pending request (if any) is discarded.
func (o *Orchestrator) Quit() {
	if o.state == nil {
		return
	}
	o.state.Active = false
	o.state.Pending = nil
	o.approvals.Reset()
	if o.active != nil {
		_ = o.active.Cancel()
		o.active = nil
	}
}

// CancelActive cancels the running tool from the control side. The
// background unit is not killed; its eventual outcome is discarded
// because the tracking reference is cleared here.
func (o *Orchestrator) CancelActive(ctx context.Context) {
	if o.active == nil {
		return
	}
	inv := o.active
	o.active = nil
	if err := inv.Cancel(); err != nil {
		return
	}
	o.recordInvocation(ctx, inv, o.activeCall, false, "cancelled by user")
}

// Tick is called on each UI tick: it drains any finished tool outcomes
// and applies the timeout policy to the active invocation.
func (o *Orchestrator) Tick(ctx context.Context) {
	for {
		select {
		case out := <-o.outcomes:
			o.handleOutcome(ctx, out)
			continue
		default:
		}
		break
	}

	if o.active != nil && o.active.CheckTimeout(o.deadline) {
		inv := o.active
		o.active = nil
		if err := inv.MarkTimeout(); err != nil {
			return
		}
		reason := fmt.Sprintf("tool %s timed out after %s", inv.Tool, o.deadline)
		o.recordInvocation(ctx, inv, o.activeCall, false, reason)
		o.addToolResult(conversation.ToolResult{
			Tool: inv.Tool, Success: false, Output: reason, StepID: inv.ID,
		})
		o.continueModel(ctx)
	}
}

// screenCall runs the pre-gate checks on the embedded call: whitelist
// membership and preconditions. Required arguments are deliberately not
// checked here, so an incomplete gated call still pauses for approval.
func (o *Orchestrator) screenCall(call ToolCall) error {
	return plan.Screen(inlinePlan(call), o.catalog, o.checker)
}

// validateCall runs the single embedded call through the plan
// validator, so whitelist membership, required arguments, and
// preconditions are checked by the same strict pass plans get.
func (o *Orchestrator) validateCall(call ToolCall) error {
	return plan.Validate(inlinePlan(call), o.catalog, o.checker)
}

func inlinePlan(call ToolCall) *plan.Plan {
	return &plan.Plan{
		PlanID: "inline",
		Intent: tools.IntentQuery,
		Steps: []plan.Step{{
			StepID:    "step-1",
			Tool:      call.Tool,
			Arguments: call.Args,
		}},
	}
}

// dispatchTool hands the call to a one-shot background unit. The unit
// receives an owned copy of the arguments and reports exclusively over
// the outcomes channel; it never touches orchestrator state.
func (o *Orchestrator) dispatchTool(ctx context.Context, call ToolCall, scope string) {
	inv := execution.New(call.Tool, call.Args)
	if err := inv.Start(); err != nil {
		return
	}
	o.active = inv
	o.activeCall = call
	o.activeScope = scope

	args := make(map[string]string, len(call.Args))
	for k, v := range call.Args {
		args[k] = v
	}
	invID := inv.ID
	sessionID := o.state.SessionID

	go func() {
		output, err := o.runTool(ctx, sessionID, call.Tool, args)
		select {
		case o.outcomes <- toolOutcome{invID: invID, call: ToolCall{Tool: call.Tool, Args: args}, output: output, err: err}:
		case <-ctx.Done():
		}
	}()
}

// runTool executes one tool. The display/memory/summary surfaces are
// served in-process; everything else goes to the external runner.
// It runs on the background unit, so everything it needs arrives as a
// parameter: it must not read orchestrator-owned state, which the
// control thread may replace while a tool is in flight.
func (o *Orchestrator) runTool(ctx context.Context, sessionID, tool string, args map[string]string) (string, error) {
	switch tool {
	case "display_text":
		return args["text"], nil
	case "memory_query":
		if o.mem == nil {
			return "", fmt.Errorf("memory index unavailable")
		}
		hits, err := o.mem.Query(args["query"], 5)
		if err != nil {
			return "", err
		}
		if len(hits) == 0 {
			return "no matching frames", nil
		}
		var b strings.Builder
		for _, h := range hits {
			fmt.Fprintf(&b, "[%s] %s\n", h.Kind, h.Text)
		}
		return b.String(), nil
	case "execution_summary":
		s, err := o.log.Summarize(ctx, sessionID, 100)
		if err != nil {
			return "", err
		}
		return s.String(), nil
	default:
		return o.runner.Run(ctx, tool, args)
	}
}

// handleOutcome applies a finished background unit's result. Outcomes
// for invocations no longer tracked (cancelled or timed out) are
// discarded.
func (o *Orchestrator) handleOutcome(ctx context.Context, out toolOutcome) {
	if o.active == nil || o.active.ID != out.invID {
		return
	}
	inv := o.active
	o.active = nil

	success := out.err == nil
	output := out.output
	if out.err != nil {
		output = out.err.Error()
		_ = inv.Fail(output)
	} else {
		_ = inv.Complete()
	}

	o.recordInvocation(ctx, inv, out.call, success, output)
	o.addToolResult(conversation.ToolResult{
		Tool: inv.Tool, Success: success, Output: output, StepID: inv.ID,
	})
	o.recentTools = append(o.recentTools, inv.Tool)
	o.recentOutputs = append(o.recentOutputs, output)

	// display_text is the terminal step of a turn; anything else feeds
	// the result back to the model and the loop continues on its own.
	if inv.Tool == tools.DisplayTextTool {
		return
	}
	o.continueModel(ctx)
}

// continueModel re-invokes the model with the frame stack in a one-shot
// background unit; the result arrives as a Complete or Error event.
func (o *Orchestrator) continueModel(ctx context.Context) {
	if o.state == nil || !o.state.Active {
		return
	}
	sessionID := o.state.SessionID
	system := o.system
	msgs := o.state.Frames.Messages()

	go func() {
		if streamer, ok := o.model.(StreamingModelClient); ok {
			chunks, errs := streamer.Stream(ctx, system, msgs)
			var full strings.Builder
			for chunk := range chunks {
				full.WriteString(chunk)
				o.emit(Event{Kind: EventChunk, SessionID: sessionID, Content: chunk})
			}
			if err := <-errs; err != nil {
				o.emit(Event{Kind: EventError, SessionID: sessionID, Err: err.Error()})
				return
			}
			o.emit(Event{Kind: EventComplete, SessionID: sessionID, FullResponse: full.String()})
			return
		}

		resp, err := o.model.Complete(ctx, system, msgs)
		if err != nil {
			o.emit(Event{Kind: EventError, SessionID: sessionID, Err: err.Error()})
			return
		}
		o.emit(Event{Kind: EventComplete, SessionID: sessionID, FullResponse: resp})
	}()
}

type denialDetail struct {
	Tool  string `json:"tool"`
	Scope string `json:"scope"`
}

// injectFailure appends a synthetic failed tool result and records it
// in the audit log; used for validation rejections and denials.
func (o *Orchestrator) injectFailure(ctx context.Context, call ToolCall, reason string, denial *denialDetail) {
	o.addToolResult(conversation.ToolResult{
		Tool: call.Tool, Success: false, Output: reason, StepID: "rejected",
	})

	toolName := call.Tool
	if denial != nil {
		toolName = tools.NameApprovalDenied
	}
	id, err := o.log.RecordExecution(ctx, audit.ExecutionRecord{
		SessionID:    o.state.SessionID,
		ToolName:     toolName,
		Arguments:    call.Args,
		Success:      false,
		ErrorMessage: reason,
	})
	if err != nil {
		return
	}
	if denial != nil {
		_ = o.log.RecordArtifact(ctx, id, tools.NameApprovalDenied, denial)
	}
}

// recordInvocation writes the durable execution row, plus the approval
// artifact when the call ran under a grant.
func (o *Orchestrator) recordInvocation(ctx context.Context, inv *execution.Invocation, call ToolCall, success bool, errText string) {
	durMS := inv.Duration().Milliseconds()
	rec := audit.ExecutionRecord{
		ID:         inv.ID,
		SessionID:  o.state.SessionID,
		ToolName:   inv.Tool,
		Arguments:  call.Args,
		Success:    success,
		DurationMS: &durMS,
	}
	if !success {
		rec.ErrorMessage = errText
	}
	id, err := o.log.RecordExecution(ctx, rec)
	if err != nil {
		return
	}
	if o.activeScope != "" {
		_ = o.log.RecordArtifact(ctx, id, tools.NameApprovalGranted, map[string]string{
			"tool": inv.Tool, "scope": o.activeScope,
		})
		o.activeScope = ""
	}
}

func (o *Orchestrator) addToolResult(r conversation.ToolResult) {
	o.state.Frames.AddToolResult(r)
	o.indexFrame(conversation.Frame{Kind: conversation.KindToolResult, Result: &r})
}

func (o *Orchestrator) indexFrame(f conversation.Frame) {
	if o.mem == nil {
		return
	}
	_ = o.mem.AddFrame(f)
}

func (o *Orchestrator) recordDiscovery(ctx context.Context, userText string, res discovery.Result) {
	reasons := make([]string, 0, len(res.Reasons))
	for name, why := range res.Reasons {
		reasons = append(reasons, name+"="+why)
	}
	sort.Strings(reasons)
	_ = o.log.RecordDiscovery(ctx, audit.DiscoveryEvent{
		SessionID:       o.state.SessionID,
		UserQueryHash:   audit.HashQuery(userText),
		ToolsDiscovered: res.Names(),
		Reason:          strings.Join(reasons, "; "),
	})
}
