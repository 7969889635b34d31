package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchingOptions_DefaultIsByName(t *testing.T) {
	d := MatchingOptions{}.Default()
	assert.Equal(t, MatchByName, d.Strategy)
	assert.False(t, d.CaseSensitive)
}

func TestMatchingOptions_MergeOnlyOverlaysSetFields(t *testing.T) {
	base := MatchingOptions{}.Default()
	merged := base.Merge(MatchingOptions{CaseSensitive: true})
	assert.Equal(t, MatchByName, merged.Strategy)
	assert.True(t, merged.CaseSensitive)
}

func TestMatchingOptions_MergeOverridesStrategy(t *testing.T) {
	base := MatchingOptions{}.Default()
	merged := base.Merge(MatchingOptions{Strategy: MatchByID})
	assert.Equal(t, MatchByID, merged.Strategy)
}

func TestClassificationConfig_MergeOnlyOverlaysSetFields(t *testing.T) {
	base := ClassificationConfig{}.Default()
	merged := base.Merge(ClassificationConfig{IgnoreChangeTypes: []string{"description"}})
	assert.Equal(t, []string{"description"}, merged.IgnoreChangeTypes)
	assert.Nil(t, merged.FailOnChangeTypes)
}

func TestClassificationConfig_MergePreservesUnsetFields(t *testing.T) {
	base := ClassificationConfig{FailOnChangeTypes: []string{"state"}}
	merged := base.Merge(ClassificationConfig{IgnoreChangeTypes: []string{"description"}})
	assert.Equal(t, []string{"state"}, merged.FailOnChangeTypes)
	assert.Equal(t, []string{"description"}, merged.IgnoreChangeTypes)
}
