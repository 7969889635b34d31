// Package engine wires the comparison pipeline's seven components into a
// single run: load both sides, match policies across them, diff and
// classify each pair, and aggregate the result into the CI/CD-consumable
// outcome. It is the orchestrator the CLI command calls through, kept
// separate from command/ so it can be driven by tests or other front ends
// without a cli.Command in the loop (the same separation the autoscaler
// draws between its agent command and its internal agent.Agent).
package engine

import (
	"context"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/cloudsec/policydrift/classify"
	"github.com/cloudsec/policydrift/diff"
	"github.com/cloudsec/policydrift/helper/uuid"
	"github.com/cloudsec/policydrift/loader/hcl"
	"github.com/cloudsec/policydrift/loader/json"
	"github.com/cloudsec/policydrift/match"
	"github.com/cloudsec/policydrift/outcome"
	"github.com/cloudsec/policydrift/policyerr"
	"github.com/cloudsec/policydrift/sdk"
)

// Options configures one comparison run. ReferenceDir is always the "left"
// side; the "right" side comes from EntraFile when set, or from Live
// otherwise (spec §6: --entra-file is optional, falling back to the live
// source collaborator).
type Options struct {
	ReferenceDir string
	EntraFile    string
	Live         sdk.LivePolicySource

	Matching       sdk.MatchingOptions
	Classification sdk.ClassificationConfig

	// ComparedAt is injected rather than read from time.Now() so runs are
	// reproducible in tests.
	ComparedAt time.Time
}

// Engine runs the comparison pipeline. It holds no mutable state between
// runs; every field is a stateless collaborator.
type Engine struct {
	log hclog.Logger

	jsonLoader *json.Loader
	hclLoader  *hcl.Loader
	matcher    *match.Matcher
	diffEngine *diff.Engine
}

// New builds an Engine. A nil logger is replaced with a no-op logger, the
// same convention every other component in this module follows.
func New(log hclog.Logger) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	log = log.Named("engine")

	return &Engine{
		log:        log,
		jsonLoader: json.New(log),
		hclLoader:  hcl.New(log),
		matcher:    match.New(log),
		diffEngine: diff.New(),
	}
}

// Run executes one full comparison and returns the aggregated result plus
// the derived pipeline outcome. A fatal error from either side's load
// short-circuits the remaining work (spec §7 propagation policy); it never
// returns a nil outcome — callers that only care about the exit code can
// ignore the error and read outcome.ExitCode.
func (e *Engine) Run(ctx context.Context, opts Options) (*sdk.ComparisonResult, *sdk.PipelineOutcome, error) {
	runLog := e.log.With("runID", uuid.Generate())

	if err := ctx.Err(); err != nil {
		return nil, outcome.ErrorOutcome("comparison cancelled before start"), policyerr.Wrap(policyerr.KindCancelled, "run", err)
	}

	runLog.Info("starting comparison run", "referenceDir", opts.ReferenceDir, "entraFile", opts.EntraFile)

	left, leftWarnings, err := e.loadReference(ctx, opts.ReferenceDir)
	if err != nil {
		return nil, outcome.ErrorOutcome(err.Error()), err
	}

	right, rightWarnings, tenantID, err := e.loadLive(ctx, opts)
	if err != nil {
		return nil, outcome.ErrorOutcome(err.Error()), err
	}

	for _, w := range append(leftWarnings, rightWarnings...) {
		runLog.Warn(w)
	}

	if err := ctx.Err(); err != nil {
		return nil, outcome.ErrorOutcome("comparison cancelled"), policyerr.Wrap(policyerr.KindCancelled, "run", err)
	}

	matchResult := e.matcher.Match(left, right, opts.Matching)
	classifier := classify.New(opts.Classification)

	comparisons := make([]sdk.PolicyComparison, 0, len(matchResult.Pairs)+len(matchResult.LeftOnly)+len(matchResult.RightOnly))

	for _, pair := range matchResult.Pairs {
		comparisons = append(comparisons, e.comparePair(pair, classifier))
	}
	for _, p := range matchResult.LeftOnly {
		comparisons = append(comparisons, sdk.PolicyComparison{PolicyID: p.ID, PolicyName: p.DisplayName, Status: sdk.StatusLeftOnly, LeftRaw: p.Raw})
	}
	for _, p := range matchResult.RightOnly {
		comparisons = append(comparisons, sdk.PolicyComparison{PolicyID: p.ID, PolicyName: p.DisplayName, Status: sdk.StatusRightOnly, RightRaw: p.Raw})
	}

	comparedAt := opts.ComparedAt
	if comparedAt.IsZero() {
		comparedAt = time.Now().UTC()
	}

	result := outcome.Aggregate(comparisons, opts.ReferenceDir, rightLabel(opts), tenantID, comparedAt)
	out := outcome.BuildOutcome(result, opts.Classification)
	runLog.Info("comparison run complete", "status", out.Status, "exitCode", out.ExitCode)
	return result, out, nil
}

// comparePair diffs and classifies a single matched pair. A pair whose
// field-by-field diff is empty is then checked with
// diff.IsSemanticallyEquivalent: two differently-dialected but canonically
// identical policies are semanticallyEquivalent rather than identical.
func (e *Engine) comparePair(pair match.Pair, classifier *classify.Classifier) sdk.PolicyComparison {
	diffs := e.diffEngine.Compare(pair.Left, pair.Right)
	classified, ignored := classifier.ClassifyAll(diffs)

	status := sdk.StatusIdentical
	switch {
	case len(diffs) > 0:
		status = sdk.StatusDiffer
	case diff.IsSemanticallyEquivalent(pair.Left, pair.Right):
		status = sdk.StatusSemanticallyEquivalent
	}

	return sdk.PolicyComparison{
		PolicyID:        firstNonEmpty(pair.Left.ID, pair.Right.ID),
		PolicyName:      firstNonEmpty(pair.Left.DisplayName, pair.Right.DisplayName),
		Status:          status,
		Diffs:           diffs,
		ClassifiedDiffs: classified,
		IgnoredDiffs:    ignored,
		LeftRaw:         pair.Left.Raw,
		RightRaw:        pair.Right.Raw,
	}
}

// loadReference loads the reference directory through both dialect loaders
// and concatenates whatever each found; a directory holding only one
// dialect's files simply gets an empty, error-free Result from the other
// loader (each filters by its own file suffix before ever opening a file).
func (e *Engine) loadReference(ctx context.Context, dir string) ([]*sdk.NormalizedPolicy, []string, error) {
	if dir == "" {
		return nil, nil, policyerr.New(policyerr.KindInvalidConfiguration, "--reference-dir is required")
	}

	jsonRes, err := e.jsonLoader.Load(ctx, dir)
	if err != nil {
		return nil, nil, err
	}

	hclRes, err := e.hclLoader.Load(ctx, dir)
	if err != nil {
		return nil, nil, err
	}

	policies := append(append([]*sdk.NormalizedPolicy{}, jsonRes.Policies...), hclRes.Policies...)
	warnings := append(append([]string{}, jsonRes.Warnings...), hclRes.Warnings...)
	return policies, warnings, nil
}

// loadLive returns the right-hand policy set: from EntraFile when given, or
// by invoking the Live collaborator exactly once otherwise (spec §6).
func (e *Engine) loadLive(ctx context.Context, opts Options) ([]*sdk.NormalizedPolicy, []string, string, error) {
	if opts.EntraFile != "" {
		res, err := e.jsonLoader.Load(ctx, opts.EntraFile)
		if err != nil {
			return nil, nil, "", err
		}
		return res.Policies, res.Warnings, res.TenantID, nil
	}

	if opts.Live == nil {
		return nil, nil, "", policyerr.New(policyerr.KindInvalidConfiguration, "neither --entra-file nor a live source was configured")
	}

	raw, err := opts.Live(ctx)
	if err != nil {
		return nil, nil, "", policyerr.Wrap(policyerr.KindIO, "live policy source", err)
	}

	res, err := e.jsonLoader.LoadBytes(raw, "live")
	if err != nil {
		return nil, nil, "", err
	}
	return res.Policies, res.Warnings, res.TenantID, nil
}

func rightLabel(opts Options) string {
	if opts.EntraFile != "" {
		return opts.EntraFile
	}
	return "live"
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
