package sdk

import "context"

// Matching strategies, per spec §4.4.
const (
	MatchByName        = "byName"
	MatchByID          = "byId"
	MatchCustomMapping = "customMapping"
)

// LivePolicySource is the external collaborator that yields a JSON document
// in the export envelope shape (spec §2, §6). It is called at most once per
// run; authenticating to and fetching from the directory service is
// explicitly out of scope for the comparison engine itself — this is the
// seam the engine calls through. Errors surface as policyerr.KindIO.
type LivePolicySource func(ctx context.Context) ([]byte, error)

// MatchingOptions configures the Policy Matcher (C4).
type MatchingOptions struct {
	// Strategy is one of MatchByName, MatchByID, MatchCustomMapping.
	Strategy string `json:"strategy"`

	// CaseSensitive controls byName comparison folding.
	CaseSensitive bool `json:"caseSensitive"`

	// CustomMapping is consulted only when Strategy == MatchCustomMapping:
	// each entry consumes exactly one policy from each side, keyed by
	// DisplayName.
	CustomMapping map[string]string `json:"customMapping,omitempty"`
}

// Default returns the baseline MatchingOptions a run starts from before any
// config file or CLI flag is applied (spec §6: "--matching ... default
// byName", "--case-sensitive ... default false").
func (MatchingOptions) Default() MatchingOptions {
	return MatchingOptions{Strategy: MatchByName}
}

// Merge overlays whichever fields of override were actually set onto m,
// returning the result. It follows the teacher's agent.Config.Merge shape:
// a copy of the receiver with the override's non-zero fields applied, so a
// config file's values survive untouched where the CLI flags left them at
// their zero value.
func (m MatchingOptions) Merge(override MatchingOptions) MatchingOptions {
	result := m
	if override.Strategy != "" {
		result.Strategy = override.Strategy
	}
	if override.CaseSensitive {
		result.CaseSensitive = true
	}
	if override.CustomMapping != nil {
		result.CustomMapping = override.CustomMapping
	}
	return result
}

// ClassificationConfig configures the Change Classifier (C6) and the
// Outcome Aggregator (C7).
type ClassificationConfig struct {
	FailOnChangeTypes []string `json:"failOnChangeTypes,omitempty"`
	IgnoreChangeTypes []string `json:"ignoreChangeTypes,omitempty"`

	// MaxDifferences, if non-nil, triggers StatusThresholdExceeded when the
	// non-ignored diff count exceeds it.
	MaxDifferences *int `json:"maxDifferences,omitempty"`

	// ExitOnDifferences gates whether drift ever yields a non-zero exit
	// code; when false the status label is still computed and reported but
	// the drift exit code is forced to 0. An operational error still exits 3.
	ExitOnDifferences bool `json:"exitOnDifferences"`
}

// Default returns the baseline ClassificationConfig a run starts from
// before any config file or CLI flag is applied.
func (ClassificationConfig) Default() ClassificationConfig {
	return ClassificationConfig{}
}

// Merge overlays whichever fields of override were actually set onto c, the
// same copy-then-overlay shape as MatchingOptions.Merge.
func (c ClassificationConfig) Merge(override ClassificationConfig) ClassificationConfig {
	result := c
	if len(override.FailOnChangeTypes) > 0 {
		result.FailOnChangeTypes = override.FailOnChangeTypes
	}
	if len(override.IgnoreChangeTypes) > 0 {
		result.IgnoreChangeTypes = override.IgnoreChangeTypes
	}
	if override.MaxDifferences != nil {
		result.MaxDifferences = override.MaxDifferences
	}
	if override.ExitOnDifferences {
		result.ExitOnDifferences = true
	}
	return result
}

// ReportWriter receives the final ComparisonResult and renders it in one
// format. The set of writer names is closed and enumerated in package
// report; multiple writers may be registered for a single run (spec §6).
type ReportWriter interface {
	Name() string
	Write(ctx context.Context, result *ComparisonResult, outcome *PipelineOutcome) error
}
