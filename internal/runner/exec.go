package runner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/oryxcli/oryx/internal/patch"
	"github.com/oryxcli/oryx/internal/workspace"
)

func bashExec(ctx context.Context, r *Runner, args map[string]string) (string, error) {
	command := args["command"]
	res, err := runCmd(ctx, r.root, "sh", []string{"-c", command}, 0)
	output := combineOutput(res.Stdout, res.Stderr)
	if res.TimedOut {
		return output, fmt.Errorf("command timed out")
	}
	if err != nil {
		return output, fmt.Errorf("command exited with code %d", res.Code)
	}
	if output == "" {
		return "(no output)", nil
	}
	return output, nil
}

func gitStatus(ctx context.Context, r *Runner, _ map[string]string) (string, error) {
	return r.git(ctx, "status", "--porcelain=v1", "-b")
}

func gitDiff(ctx context.Context, r *Runner, _ map[string]string) (string, error) {
	return r.git(ctx, "diff")
}

func gitLog(ctx context.Context, r *Runner, _ map[string]string) (string, error) {
	return r.git(ctx, "log", "--oneline", "-20")
}

func (r *Runner) git(ctx context.Context, args ...string) (string, error) {
	res, err := runCmd(ctx, r.root, "git", args, 0)
	if err != nil {
		return "", fmt.Errorf("git %s failed: %s", args[0], strings.TrimSpace(res.Stderr))
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return "(clean)", nil
	}
	return res.Stdout, nil
}

func splicePatch(ctx context.Context, r *Runner, args map[string]string) (string, error) {
	diff := args["patch"]
	if err := patch.Check(diff); err != nil {
		return "", err
	}
	return patch.Apply(ctx, r.root, diff)
}

// splicePlan returns the numbered target file plus the change
// instructions, the raw material for the model to construct hunks
// before anything is applied.
func splicePlan(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	const maxPlanLines = 400
	truncated := false
	if len(lines) > maxPlanLines {
		lines = lines[:maxPlanLines]
		truncated = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Plan hunks for %s against these numbered lines.\nInstructions: %s\n\n", args["path"], args["instructions"])
	for i, line := range lines {
		fmt.Fprintf(&b, "%4d| %s\n", i+1, line)
	}
	if truncated {
		b.WriteString("... (truncated)\n")
	}
	return b.String(), nil
}

// lspCheck runs the project's type-check/build command as a diagnostics
// pass. Build failures are the diagnostics, not an execution error.
func lspCheck(ctx context.Context, r *Runner, _ map[string]string) (string, error) {
	typ := workspace.DetectProjectType(r.root)
	name, cmdArgs := workspace.BuildCommand(typ)
	if name == "" {
		return fmt.Sprintf("no diagnostics command for project type %s", typ), nil
	}

	res, _ := runCmd(ctx, r.root, name, cmdArgs, 0)
	if res.TimedOut {
		return "", fmt.Errorf("diagnostics command timed out")
	}
	output := combineOutput(res.Stdout, res.Stderr)
	if output == "" {
		return "no diagnostics", nil
	}
	return output, nil
}

func combineOutput(stdout, stderr string) string {
	out := strings.TrimRight(stdout, "\n")
	errOut := strings.TrimRight(stderr, "\n")
	switch {
	case out == "":
		return errOut
	case errOut == "":
		return out
	default:
		return out + "\n" + errOut
	}
}
