// Package outcome implements the Outcome Aggregator (C7): summarizing
// per-policy comparison results into a ComparisonResult and deriving the
// CI/CD pipeline exit code and status label from the classified diffs and
// the configured thresholds.
package outcome

import (
	"sort"
	"strings"
	"time"

	"github.com/cloudsec/policydrift/sdk"
)

// statusRank orders comparisons for deterministic output (spec §5):
// leftOnly, rightOnly, differ, semanticallyEquivalent, identical.
var statusRank = map[string]int{
	sdk.StatusLeftOnly:               0,
	sdk.StatusRightOnly:              1,
	sdk.StatusDiffer:                 2,
	sdk.StatusSemanticallyEquivalent: 3,
	sdk.StatusIdentical:              4,
}

// Aggregate builds the complete ComparisonResult from the per-policy
// comparisons already produced by the matcher, diff engine, and classifier.
func Aggregate(comparisons []sdk.PolicyComparison, leftLabel, rightLabel, tenantID string, comparedAt time.Time) *sdk.ComparisonResult {
	sorted := make([]sdk.PolicyComparison, len(comparisons))
	copy(sorted, comparisons)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if statusRank[a.Status] != statusRank[b.Status] {
			return statusRank[a.Status] < statusRank[b.Status]
		}
		return strings.ToLower(a.PolicyName) < strings.ToLower(b.PolicyName)
	})

	return &sdk.ComparisonResult{
		ComparedAt:  comparedAt,
		LeftLabel:   leftLabel,
		RightLabel:  rightLabel,
		Summary:     summarize(sorted),
		Comparisons: sorted,
		TenantID:    tenantID,
	}
}

func summarize(comparisons []sdk.PolicyComparison) sdk.Summary {
	var s sdk.Summary

	criticalTypeSet := map[string]struct{}{}
	affectedSet := map[string]struct{}{}

	for _, c := range comparisons {
		switch c.Status {
		case sdk.StatusLeftOnly:
			s.LeftOnlyCount++
		case sdk.StatusRightOnly:
			s.RightOnlyCount++
		case sdk.StatusIdentical, sdk.StatusSemanticallyEquivalent:
			s.MatchingCount++
			s.IdenticalCount++
		case sdk.StatusDiffer:
			s.MatchingCount++
			s.DifferingCount++
		}

		hasCritical := false
		for _, d := range c.ClassifiedDiffs {
			switch d.Classification {
			case sdk.ClassCritical:
				s.CriticalCount++
				criticalTypeSet[d.ChangeType] = struct{}{}
				hasCritical = true
			case sdk.ClassNonCritical:
				s.NonCriticalCount++
			}
		}
		if hasCritical {
			affectedSet[c.PolicyName] = struct{}{}
		}
	}

	s.CriticalChangeTypes = sortedKeys(criticalTypeSet)
	s.AffectedPolicyNames = sortedKeys(affectedSet)

	return s
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
