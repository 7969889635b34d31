package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsec/policydrift/policyerr"
)

func TestValidatePrefixes_ValidKeysPass(t *testing.T) {
	err := ValidatePrefixes([]string{"state", "grantControls"}, []string{"conditions.signInRiskLevels"})
	assert.NoError(t, err)
}

func TestValidatePrefixes_MalformedFailOnKeyRejected(t *testing.T) {
	err := ValidatePrefixes([]string{"--not-a-key"}, nil)
	require.Error(t, err)
	assert.True(t, policyerr.Is(err, policyerr.KindInvalidConfiguration))
	assert.Contains(t, err.Error(), "--fail-on")
}

func TestValidatePrefixes_MalformedIgnoreKeyRejected(t *testing.T) {
	err := ValidatePrefixes(nil, []string{"conditions..doubledDot"})
	require.Error(t, err)
	assert.True(t, policyerr.Is(err, policyerr.KindInvalidConfiguration))
	assert.Contains(t, err.Error(), "--ignore")
}

func TestValidatePrefixes_ReportsEveryMalformedKey(t *testing.T) {
	err := ValidatePrefixes([]string{"bad one"}, []string{"also bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad one")
	assert.Contains(t, err.Error(), "also bad")
}
