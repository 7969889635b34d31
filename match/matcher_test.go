package match

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsec/policydrift/sdk"
)

func policy(id, name string) *sdk.NormalizedPolicy {
	return &sdk.NormalizedPolicy{ID: id, DisplayName: name}
}

func TestMatcher_ByName_CaseInsensitiveByDefault(t *testing.T) {
	m := New(hclog.NewNullLogger())
	left := []*sdk.NormalizedPolicy{policy("", "Block Legacy Auth")}
	right := []*sdk.NormalizedPolicy{policy("", "block legacy auth")}

	res := m.Match(left, right, sdk.MatchingOptions{Strategy: sdk.MatchByName})
	require.Len(t, res.Pairs, 1)
	assert.Empty(t, res.LeftOnly)
	assert.Empty(t, res.RightOnly)
}

func TestMatcher_ByName_CaseSensitive(t *testing.T) {
	m := New(hclog.NewNullLogger())
	left := []*sdk.NormalizedPolicy{policy("", "Block Legacy Auth")}
	right := []*sdk.NormalizedPolicy{policy("", "block legacy auth")}

	res := m.Match(left, right, sdk.MatchingOptions{Strategy: sdk.MatchByName, CaseSensitive: true})
	assert.Empty(t, res.Pairs)
	require.Len(t, res.LeftOnly, 1)
	require.Len(t, res.RightOnly, 1)
}

func TestMatcher_ByName_DuplicateNamesMatchInSequenceOrder(t *testing.T) {
	m := New(hclog.NewNullLogger())
	left := []*sdk.NormalizedPolicy{policy("l1", "dup"), policy("l2", "dup")}
	right := []*sdk.NormalizedPolicy{policy("r1", "dup"), policy("r2", "dup")}

	res := m.Match(left, right, sdk.MatchingOptions{Strategy: sdk.MatchByName})
	require.Len(t, res.Pairs, 2)
	assert.Equal(t, "l1", res.Pairs[0].Left.ID)
	assert.Equal(t, "r1", res.Pairs[0].Right.ID)
	assert.Equal(t, "l2", res.Pairs[1].Left.ID)
	assert.Equal(t, "r2", res.Pairs[1].Right.ID)
	assert.NotEmpty(t, res.Warnings)
}

func TestMatcher_ByID_EmptyIDDisqualifies(t *testing.T) {
	m := New(hclog.NewNullLogger())
	left := []*sdk.NormalizedPolicy{policy("", "no id on the left")}
	right := []*sdk.NormalizedPolicy{policy("abc", "no id on the left")}

	res := m.Match(left, right, sdk.MatchingOptions{Strategy: sdk.MatchByID})
	assert.Empty(t, res.Pairs)
	require.Len(t, res.LeftOnly, 1)
	require.Len(t, res.RightOnly, 1)
}

func TestMatcher_CustomMapping(t *testing.T) {
	m := New(hclog.NewNullLogger())
	left := []*sdk.NormalizedPolicy{policy("l1", "Legacy Block"), policy("l2", "Unmapped")}
	right := []*sdk.NormalizedPolicy{policy("r1", "Block Legacy Auth")}

	res := m.Match(left, right, sdk.MatchingOptions{
		Strategy:      sdk.MatchCustomMapping,
		CustomMapping: map[string]string{"Legacy Block": "Block Legacy Auth"},
	})

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "l1", res.Pairs[0].Left.ID)
	require.Len(t, res.LeftOnly, 1)
	assert.Equal(t, "Unmapped", res.LeftOnly[0].DisplayName)
	assert.Empty(t, res.RightOnly)
}

func TestMatcher_OrphansEverywhere(t *testing.T) {
	m := New(hclog.NewNullLogger())
	left := []*sdk.NormalizedPolicy{policy("l1", "only on left")}
	right := []*sdk.NormalizedPolicy{policy("r1", "only on right")}

	res := m.Match(left, right, sdk.MatchingOptions{Strategy: sdk.MatchByName})
	assert.Empty(t, res.Pairs)
	require.Len(t, res.LeftOnly, 1)
	require.Len(t, res.RightOnly, 1)
}
