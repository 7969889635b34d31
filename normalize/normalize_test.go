package normalize

import (
	"testing"

	"github.com/cloudsec/policydrift/sdk"
	"github.com/stretchr/testify/assert"
)

func TestNormalizer_State(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		warns    bool
	}{
		{name: "lowercase enabled", input: "enabled", expected: "enabled"},
		{name: "mixed case disabled", input: "Disabled", expected: "disabled"},
		{name: "report only collapses", input: "enabledForReportingButNotEnforced", expected: "reportOnly"},
		{name: "empty stays empty", input: "", expected: ""},
		{name: "unknown passes through with warning", input: "weird", expected: "weird", warns: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := New()
			got := n.State(tc.input)
			assert.Equal(t, tc.expected, got)
			if tc.warns {
				assert.Len(t, n.Warnings(), 1)
			} else {
				assert.Empty(t, n.Warnings())
			}
		})
	}
}

func TestNormalizer_BuiltInControl_RoundTrip(t *testing.T) {
	n := New()
	for numeric, alias := range builtInControlAliases {
		assert.Equal(t, alias, n.BuiltInControl(numeric))
		assert.Equal(t, alias, n.BuiltInControl(alias))
	}
}

func TestNormalizer_ClientAppType_RoundTrip(t *testing.T) {
	n := New()
	for numeric, alias := range clientAppTypeAliases {
		assert.Equal(t, alias, n.ClientAppType(numeric))
		assert.Equal(t, alias, n.ClientAppType(alias))
	}
}

func TestSequence_DedupeAndSortIgnoringInputOrder(t *testing.T) {
	left := Sequence([]string{"g2", "g1"}, Identity)
	right := Sequence([]string{"g1", "g2"}, Identity)
	assert.Equal(t, right, left)
	assert.Equal(t, []string{"g1", "g2"}, left)
}

func TestSequence_EmptyAndNilAreEquivalentToAbsent(t *testing.T) {
	assert.Nil(t, Sequence(nil, Identity))
	assert.Nil(t, Sequence([]string{}, Identity))
}

func TestSequence_Deduplicates(t *testing.T) {
	got := Sequence([]string{"a", "a", "b"}, Identity)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestNormalizer_Policy_CanonicalizesNestedSequences(t *testing.T) {
	p := &sdk.NormalizedPolicy{
		State: "ENABLED",
		Conditions: &sdk.Conditions{
			Users: &sdk.UsersCondition{
				IncludeGroups: []string{"g2", "g1", "g1"},
			},
			ClientAppTypes: []string{"1", "browser"},
		},
		GrantControls: &sdk.GrantControls{
			BuiltInControls: []string{"1", "mfa"},
		},
	}

	n := New()
	n.Policy(p)

	assert.Equal(t, "enabled", p.State)
	assert.Equal(t, []string{"g1", "g2"}, p.Conditions.Users.IncludeGroups)
	assert.Equal(t, []string{"browser", "mobileAppsAndDesktopClients"}, p.Conditions.ClientAppTypes)
	assert.Equal(t, []string{"mfa"}, p.GrantControls.BuiltInControls)
}
