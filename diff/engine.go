// Package diff implements the Diff Engine (C5): producing a deterministic,
// path-addressed list of differences between two matched NormalizedPolicy
// values, and detecting semantic equivalence across dialects.
package diff

import (
	"fmt"
	"sort"
	"time"

	"github.com/cloudsec/policydrift/normalize"
	"github.com/cloudsec/policydrift/sdk"
)

// Engine computes raw Difference lists for matched policy pairs.
type Engine struct{}

// New returns an Engine. It carries no state: every Compare call is
// independent and safe to run concurrently across pairs (spec §5).
func New() *Engine {
	return &Engine{}
}

// Compare walks left and right field by field in the model's fixed
// declaration order and returns the sorted, deterministic diff list (spec
// §4.5). Both sides are re-normalized defensively before the walk so a
// policy built outside a loader still compares correctly.
func (e *Engine) Compare(left, right *sdk.NormalizedPolicy) []sdk.Difference {
	normalize.New().Policy(left)
	normalize.New().Policy(right)

	var diffs []sdk.Difference

	diffs = append(diffs, scalarDiff("id", left.ID, right.ID)...)
	diffs = append(diffs, scalarDiff("displayName", left.DisplayName, right.DisplayName)...)
	diffs = append(diffs, scalarDiff("description", left.Description, right.Description)...)
	diffs = append(diffs, scalarDiff("state", left.State, right.State)...)
	diffs = append(diffs, timeDiff("createdDateTime", left.CreatedDateTime, right.CreatedDateTime)...)
	diffs = append(diffs, timeDiff("modifiedDateTime", left.ModifiedDateTime, right.ModifiedDateTime)...)

	diffs = append(diffs, conditionsDiff("conditions", left.Conditions, right.Conditions)...)
	diffs = append(diffs, grantControlsDiff("grantControls", left.GrantControls, right.GrantControls)...)
	diffs = append(diffs, sessionControlsDiff("sessionControls", left.SessionControls, right.SessionControls)...)

	sort.SliceStable(diffs, func(i, j int) bool {
		a, b := diffs[i], diffs[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if av, bv := valueString(a.LeftValue), valueString(b.LeftValue); av != bv {
			return av < bv
		}
		return valueString(a.RightValue) < valueString(b.RightValue)
	})

	return diffs
}

// IsSemanticallyEquivalent reports whether two policies that produced no
// diffs should nonetheless be reported as semanticallyEquivalent rather
// than identical: true exactly when their dialects differ (spec §4.5).
func IsSemanticallyEquivalent(left, right *sdk.NormalizedPolicy) bool {
	return left.SourceFormat != right.SourceFormat
}

func scalarDiff(path, left, right string) []sdk.Difference {
	if left == right {
		return nil
	}
	return []sdk.Difference{{
		Path:       path,
		Kind:       sdk.DiffModified,
		LeftValue:  left,
		RightValue: right,
		ChangeType: path,
	}}
}

func timeDiff(path string, left, right *time.Time) []sdk.Difference {
	switch {
	case left == nil && right == nil:
		return nil
	case left == nil:
		return []sdk.Difference{{Path: path, Kind: sdk.DiffAdded, RightValue: right.UTC().Format(time.RFC3339), ChangeType: path}}
	case right == nil:
		return []sdk.Difference{{Path: path, Kind: sdk.DiffRemoved, LeftValue: left.UTC().Format(time.RFC3339), ChangeType: path}}
	case !left.Equal(*right):
		return []sdk.Difference{{
			Path:       path,
			Kind:       sdk.DiffModified,
			LeftValue:  left.UTC().Format(time.RFC3339),
			RightValue: right.UTC().Format(time.RFC3339),
			ChangeType: path,
		}}
	default:
		return nil
	}
}

// sequenceDiff diffs two already-canonicalized (deduplicated, sorted) token
// sequences as sets: one added diff per right-only element, one removed
// diff per left-only element (spec §4.5 step 4). It never emits modified.
func sequenceDiff(path string, left, right []string) []sdk.Difference {
	leftSet := make(map[string]struct{}, len(left))
	for _, v := range left {
		leftSet[v] = struct{}{}
	}
	rightSet := make(map[string]struct{}, len(right))
	for _, v := range right {
		rightSet[v] = struct{}{}
	}

	var diffs []sdk.Difference
	for _, v := range left {
		if _, ok := rightSet[v]; !ok {
			diffs = append(diffs, sdk.Difference{Path: path, Kind: sdk.DiffRemoved, LeftValue: v, ChangeType: path})
		}
	}
	for _, v := range right {
		if _, ok := leftSet[v]; !ok {
			diffs = append(diffs, sdk.Difference{Path: path, Kind: sdk.DiffAdded, RightValue: v, ChangeType: path})
		}
	}
	return diffs
}

func valueString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
