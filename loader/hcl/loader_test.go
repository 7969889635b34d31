package hcl

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadFile(t *testing.T) {
	l := New(hclog.NewNullLogger())
	res, err := l.Load(context.Background(), "testdata/policies.hcl")
	require.NoError(t, err)
	require.Len(t, res.Policies, 2)

	byDisplayName := map[string]int{}
	for i, p := range res.Policies {
		byDisplayName[p.DisplayName] = i
	}

	legacy := res.Policies[byDisplayName["Block Legacy Auth"]]
	assert.Equal(t, "Block Legacy Auth", legacy.SourceRef)
	assert.Equal(t, "enabled", legacy.State)
	assert.Equal(t, []string{"exchangeActiveSync", "other"}, legacy.Conditions.ClientAppTypes)
	assert.Equal(t, []string{"block"}, legacy.GrantControls.BuiltInControls)
	// A bare scalar ("all") promotes to a one-element sequence.
	assert.Equal(t, []string{"all"}, legacy.Conditions.Platforms.Include)
	// An unresolved variable reference is preserved as an opaque token.
	require.Len(t, legacy.Conditions.Locations.Include, 1)
	assert.Contains(t, legacy.Conditions.Locations.Include[0], "trusted_locations")

	mfa := res.Policies[byDisplayName["Require MFA for Admins"]]
	assert.Equal(t, []string{"mfa"}, mfa.GrantControls.BuiltInControls)
	assert.Equal(t, []string{"browser", "mobileAppsAndDesktopClients"}, mfa.Conditions.ClientAppTypes)

	// The unknown top-level attribute on "Block Legacy Auth" must surface as
	// a warning rather than aborting the load.
	assert.NotEmpty(t, res.Warnings)

	raw, ok := legacy.Raw.(RawBlock)
	require.True(t, ok)
	assert.Equal(t, "Block Legacy Auth", raw.Name)
	assert.Equal(t, "enabled", raw.State)
}

func TestLoader_LoadFile_PerBlockErrorDoesNotAbortFile(t *testing.T) {
	l := New(hclog.NewNullLogger())
	res, err := l.Load(context.Background(), "testdata/malformed_block.hcl")
	require.NoError(t, err)

	require.Len(t, res.Policies, 1)
	assert.Equal(t, "Session Frequency Fine", res.Policies[0].DisplayName)
	assert.NotEmpty(t, res.Warnings)
}

func TestLoader_LoadDirectory(t *testing.T) {
	l := New(hclog.NewNullLogger())
	res, err := l.Load(context.Background(), "testdata")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(res.Policies), 3)
}
