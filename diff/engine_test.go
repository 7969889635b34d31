package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsec/policydrift/sdk"
)

func basePolicy(format string) *sdk.NormalizedPolicy {
	return &sdk.NormalizedPolicy{
		DisplayName:  "Block Legacy Auth",
		State:        "disabled",
		SourceFormat: format,
		Conditions: &sdk.Conditions{
			Users: &sdk.UsersCondition{
				IncludeGroups: []string{"g1"},
			},
			ClientAppTypes: []string{"browser"},
		},
		GrantControls: &sdk.GrantControls{
			Operator:        "OR",
			BuiltInControls: []string{"block"},
		},
	}
}

func TestEngine_Compare_IdenticalPoliciesProduceNoDiffs(t *testing.T) {
	e := New()
	left := basePolicy(sdk.SourceFormatJSON)
	right := basePolicy(sdk.SourceFormatJSON)

	diffs := e.Compare(left, right)
	assert.Empty(t, diffs)
	assert.False(t, IsSemanticallyEquivalent(left, right))
}

func TestEngine_Compare_SameCanonicalFormDifferentDialectIsSemanticallyEquivalent(t *testing.T) {
	left := basePolicy(sdk.SourceFormatJSON)
	right := basePolicy(sdk.SourceFormatHCL)

	e := New()
	diffs := e.Compare(left, right)
	assert.Empty(t, diffs)
	assert.True(t, IsSemanticallyEquivalent(left, right))
}

func TestEngine_Compare_StateFlipProducesModifiedDiff(t *testing.T) {
	left := basePolicy(sdk.SourceFormatJSON)
	right := basePolicy(sdk.SourceFormatJSON)
	right.State = "enabled"

	e := New()
	diffs := e.Compare(left, right)
	require.Len(t, diffs, 1)
	assert.Equal(t, "state", diffs[0].Path)
	assert.Equal(t, sdk.DiffModified, diffs[0].Kind)
	assert.Equal(t, "disabled", diffs[0].LeftValue)
	assert.Equal(t, "enabled", diffs[0].RightValue)
}

func TestEngine_Compare_SequenceDiffEmitsAddedAndRemoved(t *testing.T) {
	left := basePolicy(sdk.SourceFormatJSON)
	right := basePolicy(sdk.SourceFormatJSON)
	right.Conditions.Users.IncludeGroups = []string{"g2"}

	e := New()
	diffs := e.Compare(left, right)
	require.Len(t, diffs, 2)

	byKind := map[string]sdk.Difference{}
	for _, d := range diffs {
		byKind[d.Kind] = d
	}
	require.Contains(t, byKind, sdk.DiffRemoved)
	require.Contains(t, byKind, sdk.DiffAdded)
	assert.Equal(t, "g1", byKind[sdk.DiffRemoved].LeftValue)
	assert.Equal(t, "g2", byKind[sdk.DiffAdded].RightValue)
	assert.Equal(t, "conditions.users.includeGroups", byKind[sdk.DiffRemoved].Path)
}

func TestEngine_Compare_NestedRecordPresenceEmitsSingleDiff(t *testing.T) {
	left := basePolicy(sdk.SourceFormatJSON)
	right := basePolicy(sdk.SourceFormatJSON)
	right.SessionControls = &sdk.SessionControls{
		SignInFrequency: &sdk.SignInFrequency{Enabled: true, Value: 4, Type: "hours"},
	}

	e := New()
	diffs := e.Compare(left, right)
	require.Len(t, diffs, 1)
	assert.Equal(t, "sessionControls", diffs[0].Path)
	assert.Equal(t, sdk.DiffAdded, diffs[0].Kind)
}

func TestEngine_Compare_DeterministicOrdering(t *testing.T) {
	left := basePolicy(sdk.SourceFormatJSON)
	right := basePolicy(sdk.SourceFormatJSON)
	right.State = "enabled"
	right.Description = "now documented"

	e := New()
	d1 := e.Compare(left, right)
	d2 := e.Compare(left, right)
	assert.Equal(t, d1, d2)

	for i := 1; i < len(d1); i++ {
		assert.LessOrEqual(t, d1[i-1].Path, d1[i].Path)
	}
}
