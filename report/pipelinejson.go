package report

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/cloudsec/policydrift/sdk"
)

// pipelineJSONWriter renders the bit-exact machine schema a CI/CD step
// consumes (spec §6): status, exit code, counts, and the threshold
// configuration that produced them.
type pipelineJSONWriter struct {
	w io.Writer
}

func newPipelineJSONWriter(w io.Writer) *pipelineJSONWriter {
	return &pipelineJSONWriter{w: w}
}

func (p *pipelineJSONWriter) Name() string { return NamePipelineJSON }

type pipelineThresholdDoc struct {
	MaxDifferences *int     `json:"maxDifferences"`
	FailOnTypes    []string `json:"failOnTypes"`
	IgnoreTypes    []string `json:"ignoreTypes"`
}

type pipelineDoc struct {
	Status              string               `json:"status"`
	ExitCode             int                  `json:"exitCode"`
	DifferencesCount     int                  `json:"differencesCount"`
	CriticalChanges      int                  `json:"criticalChanges"`
	NonCriticalChanges   int                  `json:"nonCriticalChanges"`
	ComparedAt           string               `json:"comparedAt"`
	TenantID             string               `json:"tenantId"`
	CriticalChangeTypes  []string             `json:"criticalChangeTypes"`
	PolicyNames          []string             `json:"policyNames"`
	Message              string               `json:"message"`
	ThresholdConfig      pipelineThresholdDoc `json:"thresholdConfiguration"`
}

func (p *pipelineJSONWriter) Write(ctx context.Context, result *sdk.ComparisonResult, outcome *sdk.PipelineOutcome) error {
	var comparedAt time.Time
	var tenantID string
	if result != nil {
		comparedAt = result.ComparedAt
		tenantID = result.TenantID
	}

	doc := pipelineDoc{
		Status:              outcome.Status,
		ExitCode:            outcome.ExitCode,
		DifferencesCount:    outcome.DifferencesCount,
		CriticalChanges:     outcome.CriticalChanges,
		NonCriticalChanges:  outcome.NonCriticalChanges,
		ComparedAt:          comparedAt.UTC().Format(time.RFC3339),
		TenantID:            tenantID,
		CriticalChangeTypes: nonNilSlice(outcome.CriticalChangeTypes),
		PolicyNames:         nonNilSlice(outcome.PolicyNames),
		Message:             outcome.Message,
		ThresholdConfig: pipelineThresholdDoc{
			MaxDifferences: outcome.ThresholdConfiguration.MaxDifferences,
			FailOnTypes:    nonNilSlice(outcome.ThresholdConfiguration.FailOnTypes),
			IgnoreTypes:    nonNilSlice(outcome.ThresholdConfiguration.IgnoreTypes),
		},
	}

	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// nonNilSlice renders as `[]` rather than `null` when nil — the schema
// promises arrays, never null, for these fields.
func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
