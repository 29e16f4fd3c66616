package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultPassRate(t *testing.T) {
	assert.InDelta(t, 1.0, Result{}.PassRate(), 1e-9)
	assert.InDelta(t, 0.9, Result{Passed: 90, Failed: 10, Total: 100}.PassRate(), 1e-9)
	assert.True(t, Result{Total: 0}.IsPass())
	assert.False(t, Result{Passed: 99, Failed: 1, Total: 100}.IsPass())
}

func TestReportCertification(t *testing.T) {
	rep := NewReport(0.95)
	rep.Add(Result{Check: "a", Dimension: Completeness, Table: "t1", Passed: 100, Total: 100})
	rep.Add(Result{Check: "b", Dimension: Uniqueness, Table: "t1", Passed: 100, Total: 100})
	rep.Add(Result{Check: "c", Dimension: Validity, Table: "t2", Passed: 98, Failed: 2, Total: 100})
	assert.True(t, rep.IsCertified())

	// One dimension dipping below the threshold blocks certification even
	// when the overall score stays high.
	rep.Add(Result{Check: "d", Dimension: Completeness, Table: "t2", Passed: 80, Failed: 20, Total: 100})
	assert.InDelta(t, 0.9, rep.DimensionScore(Completeness), 1e-9)
	assert.False(t, rep.IsCertified())

	failures := rep.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "c", failures[0].Check)
	assert.Equal(t, "d", failures[1].Check)
}

func TestReportUncheckedDimensionNeverBlocks(t *testing.T) {
	rep := NewReport(0.95)
	rep.Add(Result{Check: "a", Dimension: Completeness, Table: "t1", Passed: 10, Total: 10})

	// Consistency has no recorded checks: vacuous pass, not a zero.
	assert.InDelta(t, 1.0, rep.DimensionScore(Consistency), 1e-9)
	assert.True(t, rep.IsCertified())
	assert.Equal(t, []Dimension{Completeness}, rep.Dimensions())
}

func TestReportDimensionScoreSumsNotAverages(t *testing.T) {
	rep := NewReport(0.95)
	// 9/10 and 1/1: sum is 10/11, not the per-check mean of 0.95.
	rep.Add(Result{Check: "a", Dimension: Validity, Table: "t", Passed: 9, Failed: 1, Total: 10})
	rep.Add(Result{Check: "b", Dimension: Validity, Table: "t", Passed: 1, Total: 1})
	assert.InDelta(t, 10.0/11.0, rep.DimensionScore(Validity), 1e-9)
}

func TestReportScoresAndOrdering(t *testing.T) {
	rep := NewReport(0)
	assert.InDelta(t, DefaultThreshold, rep.Threshold, 1e-9)
	assert.InDelta(t, 1.0, rep.OverallScore(), 1e-9)

	rep.Add(Result{Check: "a", Dimension: Consistency, Table: "t2", Passed: 5, Total: 5})
	rep.Add(Result{Check: "b", Dimension: Completeness, Table: "t1", Passed: 5, Total: 5})

	// Canonical reporting order, regardless of arrival order.
	assert.Equal(t, []Dimension{Completeness, Consistency}, rep.Dimensions())
	assert.Equal(t, []string{"t2", "t1"}, rep.Tables())
	assert.InDelta(t, 1.0, rep.TableScore("t1"), 1e-9)
}

func TestReportSnapshot(t *testing.T) {
	rep := NewReport(0.95)
	rep.Add(Result{Check: "a", Dimension: Completeness, Table: "t1", Passed: 9, Failed: 1, Total: 10, Details: "1 null values"})
	rep.Add(Result{Check: "b", Dimension: Validity, Table: "t1", Passed: 10, Total: 10})

	snap := rep.Snapshot()
	assert.Equal(t, "validation_results", snap.Name)
	require.Equal(t, 2, snap.NumRows())
	assert.Equal(t, "0.9000", snap.Rows[0]["pass_rate"].Str)
	assert.Equal(t, "1 null values", snap.Rows[0]["details"].Str)
	assert.True(t, snap.Rows[1]["details"].IsNull())

	fails := rep.FailuresSnapshot()
	assert.Equal(t, "validation_failures", fails.Name)
	assert.Equal(t, 1, fails.NumRows())
}
