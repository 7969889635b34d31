package engine

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsec/policydrift/loader/hcl"
	"github.com/cloudsec/policydrift/sdk"
)

func TestEngine_Run_EntraFile_StateFlipIsCritical(t *testing.T) {
	e := New(nil)

	opts := Options{
		ReferenceDir: "testdata/reference",
		EntraFile:    "testdata/live/export.json",
		Matching:     sdk.MatchingOptions{Strategy: sdk.MatchByName},
		Classification: sdk.ClassificationConfig{
			ExitOnDifferences: true,
		},
		ComparedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	result, out, err := e.Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, out)

	assert.Equal(t, "22222222-2222-2222-2222-222222222222", result.TenantID)
	assert.Equal(t, sdk.StatusCriticalDrift, out.Status)
	assert.Equal(t, sdk.ExitCriticalDrift, out.ExitCode)
	assert.Equal(t, 1, result.Summary.RightOnlyCount)
	assert.Equal(t, []string{"Block Legacy Auth"}, result.Summary.AffectedPolicyNames)

	var flipped sdk.PolicyComparison
	for _, c := range result.Comparisons {
		if c.PolicyName == "Block Legacy Auth" {
			flipped = c
		}
	}
	require.Equal(t, "Block Legacy Auth", flipped.PolicyName)
	assert.Equal(t, sdk.StatusDiffer, flipped.Status)

	found := false
	for _, d := range flipped.ClassifiedDiffs {
		if d.Path == "state" {
			found = true
			assert.Equal(t, sdk.ClassCritical, d.Classification)
		}
	}
	assert.True(t, found, "expected a classified state diff")
}

func TestEngine_Run_HCLReferenceCrossDialectEquivalence(t *testing.T) {
	e := New(nil)

	opts := Options{
		ReferenceDir: "testdata/hcl_reference",
		EntraFile:    "testdata/hcl_live/export.json",
		Matching:     sdk.MatchingOptions{Strategy: sdk.MatchByName},
		ComparedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	result, out, err := e.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Comparisons, 1)

	cmp := result.Comparisons[0]
	assert.Equal(t, "Require MFA for Admins", cmp.PolicyName)
	assert.Empty(t, cmp.Diffs)
	assert.Equal(t, sdk.StatusSemanticallyEquivalent, cmp.Status)
	assert.Equal(t, sdk.StatusNoDrift, out.Status)

	_, ok := cmp.LeftRaw.(hcl.RawBlock)
	require.True(t, ok, "HCL-sourced policy should carry a Raw value through to the comparison")
}

func TestEngine_Run_MissingReferenceDirIsInvalidConfiguration(t *testing.T) {
	e := New(nil)
	_, out, err := e.Run(context.Background(), Options{EntraFile: "testdata/live/export.json"})
	require.Error(t, err)
	assert.Equal(t, sdk.StatusError, out.Status)
	assert.Equal(t, sdk.ExitOperationalError, out.ExitCode)
}

func TestEngine_Run_NoEntraFileOrLiveSourceIsInvalidConfiguration(t *testing.T) {
	e := New(nil)
	_, out, err := e.Run(context.Background(), Options{ReferenceDir: "testdata/reference"})
	require.Error(t, err)
	assert.Equal(t, sdk.StatusError, out.Status)
}

func TestEngine_Run_LiveSourceCalledAtMostOnce(t *testing.T) {
	raw, err := os.ReadFile("testdata/live/export.json")
	require.NoError(t, err)

	calls := 0
	live := func(ctx context.Context) ([]byte, error) {
		calls++
		return raw, nil
	}

	e := New(nil)
	_, _, err = e.Run(context.Background(), Options{
		ReferenceDir: "testdata/reference",
		Live:         live,
		Matching:     sdk.MatchingOptions{Strategy: sdk.MatchByName},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestEngine_Run_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(nil)
	_, out, err := e.Run(ctx, Options{ReferenceDir: "testdata/reference", EntraFile: "testdata/live/export.json"})
	require.Error(t, err)
	assert.Equal(t, sdk.StatusError, out.Status)
}
