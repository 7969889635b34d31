package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudsec/policydrift/sdk"
)

// markdownWriter renders a summary table suitable for pasting into a pull
// request comment or a CI job's step summary.
type markdownWriter struct {
	w io.Writer
}

func newMarkdownWriter(w io.Writer) *markdownWriter {
	return &markdownWriter{w: w}
}

func (m *markdownWriter) Name() string { return NameMarkdown }

func (m *markdownWriter) Write(ctx context.Context, result *sdk.ComparisonResult, outcome *sdk.PipelineOutcome) error {
	sb := strings.Builder{}

	fmt.Fprintf(&sb, "## Policy drift: %s\n\n", outcome.Status)
	if outcome.Message != "" {
		fmt.Fprintf(&sb, "%s\n\n", outcome.Message)
	}
	fmt.Fprintf(&sb, "Exit code: `%d`\n\n", outcome.ExitCode)

	if result != nil {
		fmt.Fprintf(&sb, "| left-only | right-only | identical | differing | critical | non-critical |\n")
		fmt.Fprintf(&sb, "|---|---|---|---|---|---|\n")
		fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d | %d |\n\n",
			result.Summary.LeftOnlyCount, result.Summary.RightOnlyCount,
			result.Summary.IdenticalCount, result.Summary.DifferingCount,
			result.Summary.CriticalCount, result.Summary.NonCriticalCount)

		if len(result.Summary.AffectedPolicyNames) > 0 {
			sb.WriteString("### Critical changes\n\n")
			sb.WriteString("| policy | path |\n|---|---|\n")
			for _, cmp := range result.Comparisons {
				for _, d := range cmp.ClassifiedDiffs {
					if d.Classification != sdk.ClassCritical {
						continue
					}
					fmt.Fprintf(&sb, "| %s | `%s` |\n", cmp.PolicyName, d.Path)
				}
			}
		}
	}

	_, err := io.WriteString(m.w, sb.String())
	return err
}
