// Package report implements the closed set of output writers named in
// spec §6: console, json, html, csv, pipelineJson, markdown. Each writer
// satisfies sdk.ReportWriter and renders the same ComparisonResult /
// PipelineOutcome pair to a different audience — a human terminal, a CI
// machine step, or a static artifact for upload.
package report

import (
	"fmt"
	"io"

	"github.com/cloudsec/policydrift/sdk"
)

// Name constants for the closed set of writers (spec §6 --formats).
const (
	NameConsole      = "console"
	NameJSON         = "json"
	NameHTML         = "html"
	NameCSV          = "csv"
	NamePipelineJSON = "pipelineJson"
	NameMarkdown     = "markdown"
)

// New builds the named writer, rendering to w. An unrecognized name is an
// invalidConfiguration error at the CLI layer, not here; this factory only
// knows the closed set.
func New(name string, w io.Writer) (sdk.ReportWriter, error) {
	switch name {
	case NameConsole:
		return newConsoleWriter(w), nil
	case NameJSON:
		return newJSONWriter(w), nil
	case NameHTML:
		return newHTMLWriter(w), nil
	case NameCSV:
		return newCSVWriter(w), nil
	case NamePipelineJSON:
		return newPipelineJSONWriter(w), nil
	case NameMarkdown:
		return newMarkdownWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", name)
	}
}
