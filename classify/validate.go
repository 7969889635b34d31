package classify

import (
	"fmt"
	"regexp"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/cloudsec/policydrift/helper/errutil"
	"github.com/cloudsec/policydrift/policyerr"
)

// changeTypeKeyPattern matches a single dotted changeType key: one or more
// camelCase segments separated by dots, e.g. "grantControls" or
// "conditions.signInRiskLevels". It is deliberately the same shape as the
// built-in tables in tables.go.
var changeTypeKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*(\.[A-Za-z][A-Za-z0-9]*)*$`)

// ValidatePrefixes checks that every --fail-on/--ignore key the operator
// configured is a well-formed dotted changeType prefix, returning a
// policyerr.KindInvalidConfiguration error that lists every malformed entry
// when any are found (spec §4.6, policyerr's own taxonomy doc comment: this
// is where "malformed --fail-on/--ignore keys" actually gets enforced).
func ValidatePrefixes(failOn, ignore []string) error {
	var errs *multierror.Error

	check := func(flag string, keys []string) {
		for _, k := range keys {
			if !changeTypeKeyPattern.MatchString(k) {
				errs = multierror.Append(errs, fmt.Errorf("%s: %q is not a valid dotted changeType key", flag, k))
			}
		}
	}

	check("--fail-on", failOn)
	check("--ignore", ignore)

	if err := errutil.Formatted(errs); err != nil {
		return policyerr.Wrap(policyerr.KindInvalidConfiguration, "malformed classification override key", err)
	}
	return nil
}
