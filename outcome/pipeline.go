package outcome

import "github.com/cloudsec/policydrift/sdk"

// BuildOutcome derives the CI/CD-consumable PipelineOutcome from a completed
// ComparisonResult, per the exit-code table in spec §4.7. A left-only or
// right-only policy counts as one non-critical diff for threshold purposes
// even though it is not itself a Difference value.
func BuildOutcome(result *sdk.ComparisonResult, cfg sdk.ClassificationConfig) *sdk.PipelineOutcome {
	orphanCount := result.Summary.LeftOnlyCount + result.Summary.RightOnlyCount
	nonIgnoredCount := result.Summary.CriticalCount + result.Summary.NonCriticalCount + orphanCount

	out := &sdk.PipelineOutcome{
		DifferencesCount:    nonIgnoredCount,
		CriticalChanges:     result.Summary.CriticalCount,
		NonCriticalChanges:  result.Summary.NonCriticalCount + orphanCount,
		CriticalChangeTypes: result.Summary.CriticalChangeTypes,
		PolicyNames:         result.Summary.AffectedPolicyNames,
		ThresholdConfiguration: sdk.ThresholdConfiguration{
			MaxDifferences: cfg.MaxDifferences,
			FailOnTypes:    cfg.FailOnChangeTypes,
			IgnoreTypes:    cfg.IgnoreChangeTypes,
		},
	}

	switch {
	case result.Summary.CriticalCount > 0:
		out.Status = sdk.StatusCriticalDrift
		out.ExitCode = sdk.ExitCriticalDrift
		out.Message = "at least one critical change detected"
	case cfg.MaxDifferences != nil && nonIgnoredCount > *cfg.MaxDifferences:
		out.Status = sdk.StatusThresholdExceeded
		out.ExitCode = sdk.ExitCriticalDrift
		out.Message = "difference count exceeds configured threshold"
	case nonIgnoredCount > 0:
		out.Status = sdk.StatusDifferencesFound
		out.ExitCode = sdk.ExitNonCriticalDrift
		out.Message = "non-critical differences detected"
	default:
		out.Status = sdk.StatusNoDrift
		out.ExitCode = sdk.ExitNoDrift
		out.Message = "no drift detected"
	}

	if !cfg.ExitOnDifferences {
		out.ExitCode = sdk.ExitNoDrift
	}

	return out
}

// ErrorOutcome builds the fixed PipelineOutcome for when the engine could
// not complete a run at all (spec §4.7: "Engine failed to load either
// side" → exit code 3).
func ErrorOutcome(message string) *sdk.PipelineOutcome {
	return &sdk.PipelineOutcome{
		Status:   sdk.StatusError,
		ExitCode: sdk.ExitOperationalError,
		Message:  message,
	}
}
