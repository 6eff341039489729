// Package patch applies and inspects unified diffs for the splice tool
// surfaces. Application shells out to the patch binary with a dry run
// first; inspection is pure parsing.
package patch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Apply applies a unified diff under root. The diff is dry-run first so
// a non-applying patch changes nothing.
func Apply(ctx context.Context, root, diff string) (string, error) {
	if diff == "" {
		return "", fmt.Errorf("empty diff")
	}

	tmpFile, err := os.CreateTemp("", "oryx-diff-*.patch")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(diff); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write diff to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	// Tolerant flags: small context drift and whitespace differences
	// should not reject an otherwise valid patch.
	dryRun := exec.CommandContext(ctx, "patch", "-p0", "--dry-run", "--fuzz=2", "--ignore-whitespace", "-i", tmpFile.Name())
	dryRun.Dir = root
	if out, err := dryRun.CombinedOutput(); err != nil {
		return "", fmt.Errorf("patch does not apply: %s", string(out))
	}

	apply := exec.CommandContext(ctx, "patch", "-p0", "--fuzz=2", "--ignore-whitespace", "-i", tmpFile.Name())
	apply.Dir = root
	out, err := apply.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("patch failed after passing dry run: %s", string(out))
	}
	return fmt.Sprintf("diff applied\n%s", string(out)), nil
}
