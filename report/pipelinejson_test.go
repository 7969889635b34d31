package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsec/policydrift/sdk"
)

func TestPipelineJSONWriter_ExactSchema(t *testing.T) {
	max := 5
	result := &sdk.ComparisonResult{
		ComparedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TenantID:   "11111111-2222-3333-4444-555555555555",
	}
	outcome := &sdk.PipelineOutcome{
		Status:              sdk.StatusCriticalDrift,
		ExitCode:            sdk.ExitCriticalDrift,
		DifferencesCount:    3,
		CriticalChanges:     1,
		NonCriticalChanges:  2,
		CriticalChangeTypes: []string{"grantControls"},
		PolicyNames:         []string{"Block Legacy Auth"},
		Message:             "at least one critical change detected",
		ThresholdConfiguration: sdk.ThresholdConfiguration{
			MaxDifferences: &max,
			FailOnTypes:    []string{"state"},
			IgnoreTypes:    nil,
		},
	}

	var buf bytes.Buffer
	w := newPipelineJSONWriter(&buf)
	require.NoError(t, w.Write(nil, result, outcome))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, sdk.StatusCriticalDrift, doc["status"])
	assert.Equal(t, float64(sdk.ExitCriticalDrift), doc["exitCode"])
	assert.Equal(t, float64(3), doc["differencesCount"])
	assert.Equal(t, float64(1), doc["criticalChanges"])
	assert.Equal(t, float64(2), doc["nonCriticalChanges"])
	assert.Equal(t, "2026-01-02T03:04:05Z", doc["comparedAt"])
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", doc["tenantId"])
	assert.Equal(t, []any{"grantControls"}, doc["criticalChangeTypes"])
	assert.Equal(t, []any{"Block Legacy Auth"}, doc["policyNames"])
	assert.Equal(t, "at least one critical change detected", doc["message"])

	threshold, ok := doc["thresholdConfiguration"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), threshold["maxDifferences"])
	assert.Equal(t, []any{"state"}, threshold["failOnTypes"])
	assert.Equal(t, []any{}, threshold["ignoreTypes"])
}

func TestPipelineJSONWriter_NilMaxDifferencesRendersNull(t *testing.T) {
	outcome := &sdk.PipelineOutcome{Status: sdk.StatusNoDrift, ExitCode: sdk.ExitNoDrift}

	var buf bytes.Buffer
	w := newPipelineJSONWriter(&buf)
	require.NoError(t, w.Write(nil, &sdk.ComparisonResult{}, outcome))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	threshold := doc["thresholdConfiguration"].(map[string]any)
	assert.Nil(t, threshold["maxDifferences"])
}

func TestRegistry_New_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	_, err := New("yaml", &buf)
	assert.Error(t, err)
}

func TestRegistry_New_AllClosedNames(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range []string{NameConsole, NameJSON, NameHTML, NameCSV, NamePipelineJSON, NameMarkdown} {
		w, err := New(name, &buf)
		require.NoError(t, err)
		assert.Equal(t, name, w.Name())
	}
}
