package report

import (
	"context"
	"html/template"
	"io"

	"github.com/cloudsec/policydrift/sdk"
)

// htmlWriter renders a static HTML artifact, for upload as a build artifact
// or attachment to a CI run.
type htmlWriter struct {
	w io.Writer
}

func newHTMLWriter(w io.Writer) *htmlWriter {
	return &htmlWriter{w: w}
}

func (h *htmlWriter) Name() string { return NameHTML }

var htmlReportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Policy drift report</title></head>
<body>
<h1>Policy drift: {{.Outcome.Status}}</h1>
<p>{{.Outcome.Message}} (exit code {{.Outcome.ExitCode}})</p>
{{if .Result}}
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>left-only</th><th>right-only</th><th>identical</th><th>differing</th><th>critical</th><th>non-critical</th></tr>
<tr>
<td>{{.Result.Summary.LeftOnlyCount}}</td>
<td>{{.Result.Summary.RightOnlyCount}}</td>
<td>{{.Result.Summary.IdenticalCount}}</td>
<td>{{.Result.Summary.DifferingCount}}</td>
<td>{{.Result.Summary.CriticalCount}}</td>
<td>{{.Result.Summary.NonCriticalCount}}</td>
</tr>
</table>
<h2>Comparisons</h2>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>policy</th><th>status</th><th>path</th><th>kind</th><th>classification</th></tr>
{{range .Result.Comparisons}}{{$name := .PolicyName}}{{$status := .Status}}{{range .ClassifiedDiffs}}
<tr><td>{{$name}}</td><td>{{$status}}</td><td>{{.Path}}</td><td>{{.Kind}}</td><td>{{.Classification}}</td></tr>
{{end}}{{end}}
</table>
{{end}}
</body>
</html>
`))

func (h *htmlWriter) Write(ctx context.Context, result *sdk.ComparisonResult, outcome *sdk.PipelineOutcome) error {
	data := struct {
		Result  *sdk.ComparisonResult
		Outcome *sdk.PipelineOutcome
	}{Result: result, Outcome: outcome}

	return htmlReportTemplate.Execute(h.w, data)
}
