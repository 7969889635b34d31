// Package match implements the Policy Matcher (C4): pairing
// NormalizedPolicy values from two sides under a configurable strategy,
// using hashed lookup keyed by the strategy's key so matching stays linear
// in the size of the two sets (spec §5: "matching uses hashed lookup keyed
// by the match strategy's key").
package match

import (
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/cloudsec/policydrift/sdk"
)

// Pair is one matched policy appearing on both sides.
type Pair struct {
	Left  *sdk.NormalizedPolicy
	Right *sdk.NormalizedPolicy
}

// Result is the output of a match pass: every input policy appears in
// exactly one of Pairs, LeftOnly, or RightOnly (spec §4.4).
type Result struct {
	Pairs     []Pair
	LeftOnly  []*sdk.NormalizedPolicy
	RightOnly []*sdk.NormalizedPolicy

	// Warnings records duplicate-key collisions under the byName and byId
	// strategies; it never blocks a match.
	Warnings []string
}

// Matcher pairs two NormalizedPolicy sets under one sdk.MatchingOptions
// strategy.
type Matcher struct {
	log hclog.Logger
}

// New returns a Matcher that logs under the given parent logger.
func New(log hclog.Logger) *Matcher {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Matcher{log: log.Named("match")}
}

// Match pairs left against right per opts.Strategy.
func (m *Matcher) Match(left, right []*sdk.NormalizedPolicy, opts sdk.MatchingOptions) *Result {
	switch opts.Strategy {
	case sdk.MatchByID:
		return m.matchByID(left, right)
	case sdk.MatchCustomMapping:
		return m.matchCustomMapping(left, right, opts.CustomMapping)
	case sdk.MatchByName:
		fallthrough
	default:
		return m.matchByName(left, right, opts.CaseSensitive)
	}
}

// matchByName pairs policies whose DisplayName is equal (case-folded unless
// caseSensitive). A name appearing more than once on one side produces a
// duplicateName warning and is matched in input-sequence order, per spec
// §4.4.
func (m *Matcher) matchByName(left, right []*sdk.NormalizedPolicy, caseSensitive bool) *Result {
	key := func(p *sdk.NormalizedPolicy) string {
		if caseSensitive {
			return p.DisplayName
		}
		return strings.ToLower(p.DisplayName)
	}
	return m.matchByKey(left, right, key, "name")
}

// matchByID pairs policies whose ID is equal. A policy with an empty ID on
// either side is disqualified from matching and falls into its side's
// orphan bucket, per spec §4.4.
func (m *Matcher) matchByID(left, right []*sdk.NormalizedPolicy) *Result {
	key := func(p *sdk.NormalizedPolicy) string {
		return p.ID
	}
	return m.matchByKey(left, right, key, "id")
}

// matchByKey is the shared hashed-lookup core for the byName and byId
// strategies. Each side is keyed once (O(n)); a key repeated within a side
// produces a duplicateName-style warning. Matches consume the earliest
// not-yet-consumed entry on the right with an equal key, so ties resolve in
// input-sequence order and both orphan buckets preserve their side's
// original order (spec §4.4).
func (m *Matcher) matchByKey(left, right []*sdk.NormalizedPolicy, key func(*sdk.NormalizedPolicy) string, warnLabel string) *Result {
	res := &Result{}

	rightIndexByKey := make(map[string][]int, len(right))
	for i, p := range right {
		k := key(p)
		if k == "" {
			continue
		}
		if len(rightIndexByKey[k]) >= 1 {
			res.Warnings = append(res.Warnings, "duplicate "+warnLabel+" on right side: "+k)
		}
		rightIndexByKey[k] = append(rightIndexByKey[k], i)
	}

	rightConsumed := make([]bool, len(right))
	leftSeen := make(map[string]bool, len(left))

	for _, p := range left {
		k := key(p)
		if k == "" {
			res.LeftOnly = append(res.LeftOnly, p)
			continue
		}

		if leftSeen[k] {
			res.Warnings = append(res.Warnings, "duplicate "+warnLabel+" on left side: "+k)
		}
		leftSeen[k] = true

		idxs := rightIndexByKey[k]

		matched := -1
		for _, idx := range idxs {
			if !rightConsumed[idx] {
				matched = idx
				break
			}
		}
		if matched == -1 {
			res.LeftOnly = append(res.LeftOnly, p)
			continue
		}

		rightConsumed[matched] = true
		res.Pairs = append(res.Pairs, Pair{Left: p, Right: right[matched]})
	}

	for i, p := range right {
		k := key(p)
		if k == "" {
			res.RightOnly = append(res.RightOnly, p)
			continue
		}
		if !rightConsumed[i] {
			res.RightOnly = append(res.RightOnly, p)
		}
	}

	return res
}

// matchCustomMapping consults a user-supplied {leftDisplayName →
// rightDisplayName} map; each entry consumes exactly one policy from each
// side (spec §4.4). Policies not named by any mapping entry fall into their
// side's orphan bucket.
func (m *Matcher) matchCustomMapping(left, right []*sdk.NormalizedPolicy, mapping map[string]string) *Result {
	res := &Result{}

	leftByName := indexByName(left)
	rightByName := indexByName(right)

	usedLeft := make(map[string]bool, len(mapping))
	usedRight := make(map[string]bool, len(mapping))

	for leftName, rightName := range mapping {
		lp, lok := leftByName[leftName]
		rp, rok := rightByName[rightName]
		if !lok || !rok {
			m.log.Warn("custom mapping entry has no matching policy on one side", "left", leftName, "right", rightName)
			continue
		}
		res.Pairs = append(res.Pairs, Pair{Left: lp, Right: rp})
		usedLeft[leftName] = true
		usedRight[rightName] = true
	}

	for _, p := range left {
		if !usedLeft[p.DisplayName] {
			res.LeftOnly = append(res.LeftOnly, p)
		}
	}
	for _, p := range right {
		if !usedRight[p.DisplayName] {
			res.RightOnly = append(res.RightOnly, p)
		}
	}

	return res
}

func indexByName(policies []*sdk.NormalizedPolicy) map[string]*sdk.NormalizedPolicy {
	out := make(map[string]*sdk.NormalizedPolicy, len(policies))
	for _, p := range policies {
		if _, exists := out[p.DisplayName]; !exists {
			out[p.DisplayName] = p
		}
	}
	return out
}
