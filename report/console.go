package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/cloudsec/policydrift/sdk"
)

// consoleWriter renders a human-facing summary: the status line, the count
// block, and a path/policy listing for every critical change (spec §7).
type consoleWriter struct {
	w io.Writer
}

func newConsoleWriter(w io.Writer) *consoleWriter {
	return &consoleWriter{w: w}
}

func (c *consoleWriter) Name() string { return NameConsole }

func (c *consoleWriter) Write(ctx context.Context, result *sdk.ComparisonResult, outcome *sdk.PipelineOutcome) error {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	status := outcome.Status
	switch outcome.Status {
	case sdk.StatusNoDrift:
		status = green(outcome.Status)
	case sdk.StatusDifferencesFound:
		status = yellow(outcome.Status)
	case sdk.StatusCriticalDrift, sdk.StatusThresholdExceeded, sdk.StatusError:
		status = red(outcome.Status)
	}

	sb := strings.Builder{}
	fmt.Fprintf(&sb, "status: %s (exit %d)\n", status, outcome.ExitCode)
	if outcome.Message != "" {
		fmt.Fprintf(&sb, "%s\n", outcome.Message)
	}

	if result != nil {
		fmt.Fprintf(&sb, "\nsummary: %d left-only, %d right-only, %d identical, %d differing (%d critical, %d non-critical)\n",
			result.Summary.LeftOnlyCount, result.Summary.RightOnlyCount,
			result.Summary.IdenticalCount, result.Summary.DifferingCount,
			result.Summary.CriticalCount, result.Summary.NonCriticalCount)

		if len(result.Summary.AffectedPolicyNames) > 0 {
			sb.WriteString("\ncritical changes:\n")
			w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
			for _, cmp := range result.Comparisons {
				for _, d := range cmp.ClassifiedDiffs {
					if d.Classification != sdk.ClassCritical {
						continue
					}
					fmt.Fprintf(w, "[%s]\t%s\t%s\n", red("CRITICAL"), cmp.PolicyName, d.Path)
				}
			}
			w.Flush()
		}
	}

	_, err := io.WriteString(c.w, sb.String())
	return err
}
