// Package errutil provides small helpers for working with
// github.com/hashicorp/go-multierror that are shared by the HCL loader and
// classifier config validation.
package errutil

import (
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

// ListFormat renders a multierror as a semicolon separated list of messages
// rather than the library's default numbered/bulleted block. It reads better
// in a single warning log line or a one-line CLI error.
func ListFormat(err []error) string {
	points := make([]string, len(err))
	for i, e := range err {
		points[i] = e.Error()
	}
	return strings.Join(points, "; ")
}

// Formatted wraps a non-nil multierror with ListFormat and returns nil if err
// has accumulated no errors. It is safe to call regardless of whether err is
// nil.
func Formatted(err *multierror.Error) error {
	if err != nil {
		err.ErrorFormat = ListFormat
	}
	return err.ErrorOrNil()
}
