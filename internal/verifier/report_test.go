package verifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barockok/kalla-bench/internal/oracle"
)

func TestWriteReport(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	results := []PatternResult{
		{
			Pattern: "one_to_one",
			Status:  StatusFail,
			Truth:   oracle.GroundTruthResult{Matched: 600, UnmatchedLeft: 250, UnmatchedRight: 200},
			Engine:  EngineCounts{Matched: 598, UnmatchedLeft: 250, UnmatchedRight: 200},
			Detail:  "matched: engine=598 vs truth=600 (delta=-2).",
		},
		{
			Pattern: "split",
			Status:  StatusPass,
			Truth:   oracle.GroundTruthResult{Matched: 750},
			Engine:  EngineCounts{Matched: 750},
		},
	}

	// Act
	path, err := WriteReport(dir, 30000, results)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Regexp(t, `ground-truth-bugs-\d{8}-\d{6}\.md$`, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(content)
	assert.Contains(t, report, "# Ground Truth Verification — Bug Report")
	assert.Contains(t, report, "Rows: 30000")
	assert.Contains(t, report, "## one_to_one: FAIL")
	assert.Contains(t, report, "**Issue:** matched: engine=598 vs truth=600 (delta=-2).")
	assert.Contains(t, report, "## split: PASS")
	assert.Contains(t, report, "Ground truth: matched=600, unmatched_left=250, unmatched_right=200")
	assert.Contains(t, report, "Engine:       matched=598, unmatched_left=250, unmatched_right=200")
}

func TestWriteReport_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")

	path, err := WriteReport(dir, 100, []PatternResult{{Pattern: "batch", Status: StatusPass}})

	require.NoError(t, err)
	assert.FileExists(t, path)
}
