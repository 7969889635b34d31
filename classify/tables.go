package classify

// builtInCriticalPrefixes are always critical unless explicitly ignored
// (spec §4.6 rule 2).
var builtInCriticalPrefixes = []string{
	"grantControls",
	"sessionControls",
	"state",
	"conditions.signInRiskLevels",
	"conditions.userRiskLevels",
	"conditions.applications",
	"conditions.users",
}

// builtInNonCriticalPrefixes are non-critical by default (spec §4.6 rule 3).
var builtInNonCriticalPrefixes = []string{
	"createdDateTime",
	"modifiedDateTime",
	"id",
	"description",
	"displayName",
}

// longestPrefixMatch returns the longest entry in prefixes that is either
// equal to path or a dotted ancestor of it, and whether any entry matched.
func longestPrefixMatch(path string, prefixes []string) (string, bool) {
	best := ""
	found := false
	for _, prefix := range prefixes {
		if !isPrefixOrEqual(path, prefix) {
			continue
		}
		if !found || len(prefix) > len(best) {
			best = prefix
			found = true
		}
	}
	return best, found
}

func isPrefixOrEqual(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '.'
}
