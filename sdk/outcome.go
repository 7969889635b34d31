package sdk

// Pipeline status labels, per spec §4.7.
const (
	StatusNoDrift              = "noDrift"
	StatusDifferencesFound     = "differencesFound"
	StatusCriticalDrift        = "criticalDriftDetected"
	StatusThresholdExceeded    = "thresholdExceeded"
	StatusError                = "error"
)

// Exit codes, per spec §6.
const (
	ExitNoDrift        = 0
	ExitNonCriticalDrift = 1
	ExitCriticalDrift  = 2
	ExitOperationalError = 3
)

// PipelineOutcome is the CI/CD-consumable summary of a comparison run: an
// exit code, a status label, and the counts that justified them. It is the
// source record for the pipelineJson report writer (spec §6).
type PipelineOutcome struct {
	Status    string
	ExitCode  int
	Message   string

	DifferencesCount   int
	CriticalChanges    int
	NonCriticalChanges int

	CriticalChangeTypes []string
	PolicyNames         []string

	ThresholdConfiguration ThresholdConfiguration
}

// ThresholdConfiguration mirrors the "thresholdConfiguration" object in the
// pipelineJson schema (spec §6).
type ThresholdConfiguration struct {
	MaxDifferences *int
	FailOnTypes    []string
	IgnoreTypes    []string
}
