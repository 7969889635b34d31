package report

import (
	"context"
	"encoding/json"
	"io"

	"github.com/cloudsec/policydrift/sdk"
)

// jsonWriter renders the full ComparisonResult, including every diff, for
// archival or downstream tooling that wants more than the pipelineJson
// summary carries.
type jsonWriter struct {
	w io.Writer
}

func newJSONWriter(w io.Writer) *jsonWriter {
	return &jsonWriter{w: w}
}

func (j *jsonWriter) Name() string { return NameJSON }

type jsonDoc struct {
	Result  *sdk.ComparisonResult `json:"result"`
	Outcome *sdk.PipelineOutcome  `json:"outcome"`
}

func (j *jsonWriter) Write(ctx context.Context, result *sdk.ComparisonResult, outcome *sdk.PipelineOutcome) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonDoc{Result: result, Outcome: outcome})
}
