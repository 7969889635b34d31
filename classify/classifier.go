// Package classify implements the Change Classifier (C6): deriving a
// canonical changeType for each raw Difference and tagging it critical,
// nonCritical, or ignored against the built-in tables and the operator's
// --fail-on/--ignore overrides.
package classify

import (
	"strings"

	"github.com/cloudsec/policydrift/sdk"
)

// Classifier applies one sdk.ClassificationConfig across a run.
type Classifier struct {
	failOn []string
	ignore []string
}

// New returns a Classifier built from cfg. Override prefixes are used
// exactly as configured: an entry in FailOnChangeTypes/IgnoreChangeTypes is
// matched the same way as a built-in prefix (itself or a dotted ancestor).
func New(cfg sdk.ClassificationConfig) *Classifier {
	return &Classifier{
		failOn: cfg.FailOnChangeTypes,
		ignore: cfg.IgnoreChangeTypes,
	}
}

// Classify derives changeType and classification for d, returning the
// tagged copy. The input d.ChangeType, if already set by the diff engine to
// the raw path, is recomputed here to the canonical longest-prefix key
// (spec §4.6 rule 1).
func (c *Classifier) Classify(d sdk.Difference) sdk.Difference {
	d.ChangeType = c.changeType(d.Path)
	d.Classification = c.classification(d.ChangeType)
	return d
}

// ClassifyAll classifies every diff in diffs and partitions the result into
// the diff list surfaced downstream (ignored entries excluded) and the
// ignored diffs retained for reporting (spec §4.6 rule 4).
func (c *Classifier) ClassifyAll(diffs []sdk.Difference) (classified, ignored []sdk.Difference) {
	for _, d := range diffs {
		tagged := c.Classify(d)
		if tagged.Classification == sdk.ClassIgnored {
			ignored = append(ignored, tagged)
			continue
		}
		classified = append(classified, tagged)
	}
	return classified, ignored
}

// changeType derives the canonical classifier key for path: the longest
// dotted prefix appearing in either the built-in tables or the operator's
// own --fail-on/--ignore prefixes, since those are additional entries in
// "the classification tables" per spec §4.6 rule 1, not a separate lookup
// applied only after the fact.
func (c *Classifier) changeType(path string) string {
	if prefix, ok := longestPrefixMatch(path, c.allKnownPrefixes()); ok {
		return prefix
	}
	return path
}

// classification applies the ignore > failOn > built-ins precedence (spec
// §4.6 rule 5), defaulting to nonCritical when no table matches (rule 6).
func (c *Classifier) classification(changeType string) string {
	if matchesAny(changeType, c.ignore) {
		return sdk.ClassIgnored
	}
	if matchesAny(changeType, c.failOn) {
		return sdk.ClassCritical
	}
	if matchesAny(changeType, builtInCriticalPrefixes) {
		return sdk.ClassCritical
	}
	if matchesAny(changeType, builtInNonCriticalPrefixes) {
		return sdk.ClassNonCritical
	}
	return sdk.ClassNonCritical
}

func matchesAny(changeType string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.EqualFold(changeType, p) {
			return true
		}
		if len(changeType) > len(p) && strings.EqualFold(changeType[:len(p)], p) && changeType[len(p)] == '.' {
			return true
		}
	}
	return false
}

func (c *Classifier) allKnownPrefixes() []string {
	all := make([]string, 0, len(builtInCriticalPrefixes)+len(builtInNonCriticalPrefixes)+len(c.failOn)+len(c.ignore))
	all = append(all, builtInCriticalPrefixes...)
	all = append(all, builtInNonCriticalPrefixes...)
	all = append(all, c.failOn...)
	all = append(all, c.ignore...)
	return all
}
