package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cloudsec/policydrift/sdk"
)

// csvWriter renders one row per classified diff, for spreadsheet review.
type csvWriter struct {
	w io.Writer
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{w: w}
}

func (c *csvWriter) Name() string { return NameCSV }

func (c *csvWriter) Write(ctx context.Context, result *sdk.ComparisonResult, outcome *sdk.PipelineOutcome) error {
	rec := csv.NewWriter(c.w)
	defer rec.Flush()

	if err := rec.Write([]string{"policyName", "status", "path", "kind", "leftValue", "rightValue", "classification"}); err != nil {
		return err
	}

	if result == nil {
		return rec.Error()
	}

	for _, cmp := range result.Comparisons {
		if len(cmp.ClassifiedDiffs) == 0 && len(cmp.IgnoredDiffs) == 0 {
			if err := rec.Write([]string{cmp.PolicyName, cmp.Status, "", "", "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, d := range append(append([]sdk.Difference{}, cmp.ClassifiedDiffs...), cmp.IgnoredDiffs...) {
			row := []string{
				cmp.PolicyName, cmp.Status, d.Path, d.Kind,
				fmt.Sprintf("%v", d.LeftValue), fmt.Sprintf("%v", d.RightValue), d.Classification,
			}
			if err := rec.Write(row); err != nil {
				return err
			}
		}
	}

	return rec.Error()
}
