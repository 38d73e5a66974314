package verifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteReport writes the discrepancy report for a verification run to
// dir with a timestamped filename and returns the path. The report is
// the durable record of what failed and by how much; callers invoke it
// whenever any pattern is not PASS.
func WriteReport(dir string, rows int, results []PatternResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("ground-truth-bugs-%s.md", now.Format("20060102-150405")))

	var b strings.Builder
	b.WriteString("# Ground Truth Verification — Bug Report\n\n")
	fmt.Fprintf(&b, "Date: %s\n", now.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(&b, "Rows: %d\n\n", rows)

	for _, r := range results {
		fmt.Fprintf(&b, "## %s: %s\n\n", r.Pattern, r.Status)
		if r.Detail != "" {
			fmt.Fprintf(&b, "**Issue:** %s\n\n", r.Detail)
		}
		fmt.Fprintf(&b, "- Ground truth: matched=%d, unmatched_left=%d, unmatched_right=%d\n",
			r.Truth.Matched, r.Truth.UnmatchedLeft, r.Truth.UnmatchedRight)
		fmt.Fprintf(&b, "- Engine:       matched=%d, unmatched_left=%d, unmatched_right=%d\n\n",
			r.Engine.Matched, r.Engine.UnmatchedLeft, r.Engine.UnmatchedRight)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
