package command

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/cloudsec/policydrift/classify"
	"github.com/cloudsec/policydrift/engine"
	flaghelper "github.com/cloudsec/policydrift/helper/flag"
	"github.com/cloudsec/policydrift/policyerr"
	"github.com/cloudsec/policydrift/report"
	"github.com/cloudsec/policydrift/sdk"
)

// CompareCommand runs one comparison of a reference policy directory against
// a live or file-based Entra export and writes the result in every
// requested format.
type CompareCommand struct {
	Ctx context.Context

	// Live supplies the comparison's right-hand side when --entra-file is
	// not given. main wires in source/live, which is nil when its credential
	// environment variables are unset; tests inject a fake.
	Live sdk.LivePolicySource

	args []string
}

func (c *CompareCommand) Help() string {
	helpText := `
Usage: policydrift compare [options]

  Compares a reference directory of Conditional Access Policies against a
  live tenant export (or a file standing in for one) and reports the drift
  between them.

Options:

  -reference-dir=<path>
    Directory of reference policy files, JSON and/or HCL. Required.

  -entra-file=<path>
    A JSON export file to compare against, in place of the live source.

  -config=<path>
    JSON file supplying "matching"/"classification" defaults, overlaid by
    any CLI flags explicitly passed. Optional.

  -matching=<byName|byId|customMapping>
    The strategy used to pair policies across the two sides. Default byName.

  -case-sensitive
    Compare policy names case-sensitively under the byName strategy.
    Default false.

  -exit-on-differences
    Return a non-zero exit code when drift is found. Default false: the
    status is still computed and reported, but drift never changes the exit
    code from 0. An operational error still exits 3.

  -max-differences=<n>
    Treat more than n non-ignored differences as a threshold breach,
    regardless of their classification.

  -fail-on=<csv>
    Change-type prefixes to classify as critical, in addition to the built-in
    table. Repeatable and comma-separated both accepted.

  -ignore=<csv>
    Change-type prefixes to exclude entirely. Repeatable and comma-separated
    both accepted; takes precedence over -fail-on.

  -log-level=<trace|debug|info|warn|error>
    Root logger level. Default warn.

  -log-json
    Emit log lines as JSON instead of hclog's human format. Default false.

  -quiet
    Suppress informational output; only the status line and any error print.
    Also lowers the effective log level to error regardless of -log-level.

  -formats=<csv>
    Report formats to write, any subset of console, json, html, csv,
    pipelineJson, markdown. Default console.
`
	return strings.TrimSpace(helpText)
}

func (c *CompareCommand) Synopsis() string {
	return "Compares reference policies against a live or file-based export"
}

func (c *CompareCommand) Run(args []string) int {
	c.args = args

	parsed, err := c.parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command arguments: %v\n", err)
		return policyerr.ExitCode(policyerr.KindInvalidConfiguration)
	}

	parsed.opts.Live = c.Live

	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	log := buildLogger(parsed.logLevel, parsed.logJSON, parsed.quiet)

	result, outcome, runErr := engine.New(log).Run(ctx, parsed.opts)

	if writeErr := c.writeReports(ctx, parsed.formats, result, outcome, parsed.quiet); writeErr != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", writeErr)
		return policyerr.ExitCode(policyerr.KindIO)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
	}

	return outcome.ExitCode
}

// buildLogger constructs the root hclog.Logger from the parsed -log-level /
// -log-json flags (SPEC_FULL.md §A.1). --quiet forces the effective level
// down to hclog.Error rather than swapping in a second, separate logging
// mechanism: informational output is still suppressed, but a genuine error
// still gets logged and can still be upgraded to hclog.Debug/Trace output by
// a future -log-level without touching this function.
func buildLogger(logLevel string, logJSON, quiet bool) hclog.Logger {
	level := hclog.LevelFromString(logLevel)
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	if quiet && level < hclog.Error {
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "policydrift",
		Level:      level,
		JSONFormat: logJSON,
	})
}

func (c *CompareCommand) writeReports(ctx context.Context, formats []string, result *sdk.ComparisonResult, outcome *sdk.PipelineOutcome, quiet bool) error {
	if len(formats) == 0 {
		formats = []string{report.NameConsole}
	}

	for _, name := range formats {
		// -quiet collapses the console writer's summary block down to the
		// single status line spec §7 asks for; machine formats that were
		// explicitly requested (json, pipelineJson, ...) are not
		// "informational output" and still render in full.
		if quiet && name == report.NameConsole {
			fmt.Fprintf(os.Stdout, "status: %s (exit %d)\n", outcome.Status, outcome.ExitCode)
			continue
		}
		w, err := report.New(name, os.Stdout)
		if err != nil {
			return err
		}
		if err := w.Write(ctx, result, outcome); err != nil {
			return err
		}
	}
	return nil
}

// parsedFlags bundles parseFlags' result so Run doesn't juggle five return
// values.
type parsedFlags struct {
	opts     engine.Options
	formats  []string
	quiet    bool
	logLevel string
	logJSON  bool
}

// fileConfig is the shape of the optional -config JSON file: a subset of
// engine.Options' tunables, overlaid by CLI flags via Default()+Merge()
// (SPEC_FULL.md §A.3), the same layering the teacher's agent/config package
// applies to its own Agent struct.
type fileConfig struct {
	Matching       sdk.MatchingOptions      `json:"matching"`
	Classification sdk.ClassificationConfig `json:"classification"`
}

func (c *CompareCommand) parseFlags() (parsedFlags, error) {
	var (
		referenceDir   string
		entraFile      string
		configFile     string
		matching       string
		caseSensitive  bool
		exitOnDiffs    bool
		maxDifferences int
		maxDiffsSet    bool
		failOn         flaghelper.CSVFlag
		ignore         flaghelper.CSVFlag
		quiet          bool
		formatsFlag    flaghelper.CSVFlag
		logLevel       string
		logJSON        bool
	)

	flags := flag.NewFlagSet("compare", flag.ContinueOnError)
	flags.Usage = func() { fmt.Fprintln(os.Stderr, c.Help()) }

	flags.StringVar(&referenceDir, "reference-dir", "", "")
	flags.StringVar(&entraFile, "entra-file", "", "")
	flags.StringVar(&configFile, "config", "", "")
	flags.StringVar(&matching, "matching", "", "")
	flags.BoolVar(&caseSensitive, "case-sensitive", false, "")
	flags.BoolVar(&exitOnDiffs, "exit-on-differences", false, "")
	flags.Func("max-differences", "", func(v string) error {
		n, err := parseNonNegativeInt(v)
		if err != nil {
			return err
		}
		maxDifferences = n
		maxDiffsSet = true
		return nil
	})
	flags.Var(&failOn, "fail-on", "")
	flags.Var(&ignore, "ignore", "")
	flags.BoolVar(&quiet, "quiet", false, "")
	flags.Var(&formatsFlag, "formats", "")
	flags.StringVar(&logLevel, "log-level", "warn", "")
	flags.BoolVar(&logJSON, "log-json", false, "")

	if err := flags.Parse(c.args); err != nil {
		return parsedFlags{}, err
	}

	if referenceDir == "" {
		return parsedFlags{}, policyerr.New(policyerr.KindInvalidConfiguration, "-reference-dir is required")
	}

	explicit := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if matching != "" {
		if _, err := matchingStrategy(matching); err != nil {
			return parsedFlags{}, err
		}
	}

	if err := validateFormats(formatsFlag); err != nil {
		return parsedFlags{}, err
	}

	if err := classify.ValidatePrefixes(failOn, ignore); err != nil {
		return parsedFlags{}, err
	}

	resolvedMatching, resolvedClassification, err := resolveConfig(configFile, matching, caseSensitive, exitOnDiffs, failOn, ignore, maxDifferences, maxDiffsSet, explicit)
	if err != nil {
		return parsedFlags{}, err
	}

	return parsedFlags{
		opts: engine.Options{
			ReferenceDir:   referenceDir,
			EntraFile:      entraFile,
			Matching:       resolvedMatching,
			Classification: resolvedClassification,
		},
		formats:  formatsFlag,
		quiet:    quiet,
		logLevel: logLevel,
		logJSON:  logJSON,
	}, nil
}

// resolveConfig layers MatchingOptions/ClassificationConfig the way
// SPEC_FULL.md §A.3 describes: start from Default(), merge in the -config
// file (if any), then merge in whichever CLI flags were actually passed
// (flags left at their zero value don't clobber the config file's values).
func resolveConfig(
	configFile string,
	matching string,
	caseSensitive bool,
	exitOnDiffs bool,
	failOn, ignore []string,
	maxDifferences int,
	maxDiffsSet bool,
	explicit map[string]bool,
) (sdk.MatchingOptions, sdk.ClassificationConfig, error) {
	resolvedMatching := sdk.MatchingOptions{}.Default()
	resolvedClassification := sdk.ClassificationConfig{}.Default()

	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		if err != nil {
			return sdk.MatchingOptions{}, sdk.ClassificationConfig{}, policyerr.Wrap(policyerr.KindIO, "cannot read -config file "+configFile, err)
		}
		var fc fileConfig
		if err := json.Unmarshal(raw, &fc); err != nil {
			return sdk.MatchingOptions{}, sdk.ClassificationConfig{}, policyerr.Wrap(policyerr.KindInvalidConfiguration, "cannot parse -config file "+configFile, err)
		}
		resolvedMatching = resolvedMatching.Merge(fc.Matching)
		resolvedClassification = resolvedClassification.Merge(fc.Classification)
	}

	var flagMatching sdk.MatchingOptions
	if explicit["matching"] {
		flagMatching.Strategy = matching
	}
	if explicit["case-sensitive"] {
		flagMatching.CaseSensitive = caseSensitive
	}
	resolvedMatching = resolvedMatching.Merge(flagMatching)

	var flagClassification sdk.ClassificationConfig
	if len(failOn) > 0 {
		flagClassification.FailOnChangeTypes = failOn
	}
	if len(ignore) > 0 {
		flagClassification.IgnoreChangeTypes = ignore
	}
	if maxDiffsSet {
		flagClassification.MaxDifferences = &maxDifferences
	}
	if explicit["exit-on-differences"] {
		flagClassification.ExitOnDifferences = exitOnDiffs
	}
	resolvedClassification = resolvedClassification.Merge(flagClassification)

	return resolvedMatching, resolvedClassification, nil
}

func matchingStrategy(value string) (string, error) {
	switch value {
	case sdk.MatchByName, sdk.MatchByID, sdk.MatchCustomMapping:
		return value, nil
	default:
		return "", policyerr.New(policyerr.KindInvalidConfiguration, "unknown matching strategy: "+value)
	}
}

func validateFormats(formats []string) error {
	for _, name := range formats {
		switch name {
		case report.NameConsole, report.NameJSON, report.NameHTML, report.NameCSV, report.NamePipelineJSON, report.NameMarkdown:
		default:
			return policyerr.New(policyerr.KindInvalidConfiguration, "unknown report format: "+name)
		}
	}
	return nil
}

func parseNonNegativeInt(v string) (int, error) {
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid -max-differences value: %q", v)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
