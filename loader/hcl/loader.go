package hcl

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/cloudsec/policydrift/helper/errutil"
	"github.com/cloudsec/policydrift/helper/file"
	"github.com/cloudsec/policydrift/helper/workerpool"
	"github.com/cloudsec/policydrift/normalize"
	"github.com/cloudsec/policydrift/policyerr"
	"github.com/cloudsec/policydrift/sdk"
)

// Result bundles everything one Load call produced.
type Result struct {
	Policies []*sdk.NormalizedPolicy
	Warnings []string
}

// Loader decodes the HCL dialect (spec §4.3) into NormalizedPolicy values.
type Loader struct {
	log hclog.Logger
}

// New returns a Loader that logs under the given parent logger.
func New(log hclog.Logger) *Loader {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Loader{log: log.Named("loader.hcl")}
}

// Load reads path, which may be a single HCL file or a directory scanned
// recursively for .hcl files, decoding every conditional_access_policy
// block it finds. A syntax error in one file does not abort sibling files;
// it is recorded as a warning, per spec §4.3 ("per-block errors are
// collected and the file continues").
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, policyerr.Wrap(policyerr.KindIO, "cannot stat reference path "+path, err)
	}

	var paths []string
	if info.IsDir() {
		paths, err = file.ListRecursive(path, ".hcl")
		if err != nil {
			return nil, policyerr.Wrap(policyerr.KindIO, "cannot list reference directory "+path, err)
		}
	} else {
		paths = []string{path}
	}

	type fileResult struct {
		policies []*sdk.NormalizedPolicy
		warnings []string
	}

	results, errs := workerpool.Map(ctx, workerpool.Size(), paths, func(ctx context.Context, p string) (fileResult, error) {
		policies, warnings, err := l.loadFile(p)
		return fileResult{policies: policies, warnings: warnings}, err
	})

	agg := &Result{}
	for i, fr := range results {
		if err := errs[i]; err != nil {
			l.log.Warn("skipping file with HCL parse errors", "path", paths[i], "error", err)
			agg.Warnings = append(agg.Warnings, fmt.Sprintf("%s: %v", paths[i], err))
			continue
		}
		agg.Policies = append(agg.Policies, fr.policies...)
		agg.Warnings = append(agg.Warnings, fr.warnings...)
	}

	sort.SliceStable(agg.Policies, func(i, j int) bool {
		if agg.Policies[i].SourceRef != agg.Policies[j].SourceRef {
			return agg.Policies[i].SourceRef < agg.Policies[j].SourceRef
		}
		return agg.Policies[i].DisplayName < agg.Policies[j].DisplayName
	})

	return agg, nil
}

func (l *Loader) loadFile(path string) ([]*sdk.NormalizedPolicy, []string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, policyerr.Wrap(policyerr.KindIO, "cannot read "+path, err)
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, nil, policyerr.New(policyerr.KindInvalidDocument, diags.Error())
	}

	content, remain, diags := f.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: resourceBlockType, LabelNames: []string{"type", "name"}},
		},
	})
	if diags.HasErrors() {
		return nil, nil, policyerr.New(policyerr.KindInvalidDocument, diags.Error())
	}

	var warnings []string
	if _, diags := remain.Content(&hcl.BodySchema{}); diags.HasErrors() {
		for _, d := range diags {
			warnings = append(warnings, fmt.Sprintf("%s: unrecognized top-level content: %s", path, d.Summary))
		}
	}

	var policies []*sdk.NormalizedPolicy
	var blockErrs *multierror.Error

	for _, block := range content.Blocks {
		// Only resource "conditional_access_policy" "<name>" blocks are
		// recognized (spec §8 Scenario S1's own literal Terraform-style
		// two-label form); any other resource type is left for a future
		// loader to claim and is silently skipped here.
		if block.Type != resourceBlockType || len(block.Labels) != 2 || block.Labels[0] != blockType {
			continue
		}
		name := block.Labels[1]

		var pb policyBlock
		if diags := gohcl.DecodeBody(block.Body, nil, &pb); diags.HasErrors() {
			blockErrs = multierror.Append(blockErrs, fmt.Errorf("block %q: %s", name, diags.Error()))
			continue
		}
		pb.Name = name

		n := normalize.New()
		policy, blockWarnings := convert(&pb, path, n)
		n.Policy(policy)

		policies = append(policies, policy)
		warnings = append(warnings, blockWarnings...)
		warnings = append(warnings, unknownContentWarnings(path, name, &pb)...)
		for _, w := range n.Warnings() {
			warnings = append(warnings, fmt.Sprintf("%s: %s %q: %s", path, w.Field, w.Token, w.Message))
		}
	}

	if err := errutil.Formatted(blockErrs); err != nil {
		// Individual block failures are surfaced as warnings, not a fatal
		// error: the file's other, well-formed blocks still load (spec
		// §4.3: "per-block errors are collected and the file continues").
		warnings = append(warnings, err.Error())
	}

	return policies, warnings, nil
}

func convert(pb *policyBlock, path string, n *normalize.Normalizer) (*sdk.NormalizedPolicy, []string) {
	var warnings []string

	resolve := func(field string, expr hcl.Expression) []string {
		vals, w := resolveStringList(field, expr)
		warnings = append(warnings, w...)
		return vals
	}

	p := &sdk.NormalizedPolicy{
		DisplayName:  pb.Name,
		Description:  pb.Description,
		State:        pb.State,
		SourceFormat: sdk.SourceFormatHCL,
		SourceRef:    pb.Name,
		// Raw carries only the scalar attributes the block declares at its
		// top level: the hcl.Expression-typed condition/control fields hold
		// unresolved syntax, not values, and would marshal to nonsense.
		Raw: RawBlock{Name: pb.Name, State: pb.State, Description: pb.Description},
	}

	if c := pb.Conditions; c != nil {
		p.Conditions = &sdk.Conditions{
			ClientAppTypes:   resolve("conditions.client_app_types", c.ClientAppTypes),
			SignInRiskLevels: resolve("conditions.sign_in_risk_levels", c.SignInRiskLevels),
			UserRiskLevels:   resolve("conditions.user_risk_levels", c.UserRiskLevels),
		}
		if a := c.Applications; a != nil {
			p.Conditions.Applications = &sdk.ApplicationsCondition{
				Include:            resolve("conditions.applications.include", a.Include),
				Exclude:            resolve("conditions.applications.exclude", a.Exclude),
				IncludeUserActions: resolve("conditions.applications.include_user_actions", a.IncludeUserActions),
			}
		}
		if u := c.Users; u != nil {
			p.Conditions.Users = &sdk.UsersCondition{
				IncludeUsers:  resolve("conditions.users.include_users", u.IncludeUsers),
				ExcludeUsers:  resolve("conditions.users.exclude_users", u.ExcludeUsers),
				IncludeGroups: resolve("conditions.users.include_groups", u.IncludeGroups),
				ExcludeGroups: resolve("conditions.users.exclude_groups", u.ExcludeGroups),
				IncludeRoles:  resolve("conditions.users.include_roles", u.IncludeRoles),
				ExcludeRoles:  resolve("conditions.users.exclude_roles", u.ExcludeRoles),
			}
		}
		if pl := c.Platforms; pl != nil {
			p.Conditions.Platforms = &sdk.PlatformsCondition{
				Include: resolve("conditions.platforms.include", pl.Include),
				Exclude: resolve("conditions.platforms.exclude", pl.Exclude),
			}
		}
		if loc := c.Locations; loc != nil {
			p.Conditions.Locations = &sdk.LocationsCondition{
				Include: resolve("conditions.locations.include", loc.Include),
				Exclude: resolve("conditions.locations.exclude", loc.Exclude),
			}
		}
	}

	if g := pb.GrantControls; g != nil {
		p.GrantControls = &sdk.GrantControls{
			Operator:          g.Operator,
			BuiltInControls:   resolve("grantControls.builtInControls", g.BuiltInControls),
			CustomAuthFactors: resolve("grantControls.customAuthFactors", g.CustomAuthFactors),
			TermsOfUse:        resolve("grantControls.termsOfUse", g.TermsOfUse),
		}
		if as := g.AuthenticationStrength; as != nil {
			p.GrantControls.AuthenticationStrength = &sdk.AuthenticationStrength{
				ID:          as.ID,
				DisplayName: as.DisplayName,
			}
		}
	}

	if s := pb.SessionControls; s != nil {
		p.SessionControls = &sdk.SessionControls{}
		if r := s.ApplicationEnforcedRestrictions; r != nil {
			p.SessionControls.ApplicationEnforcedRestrictions = &sdk.ApplicationEnforcedRestrictions{Enabled: r.Enabled}
		}
		if c := s.CloudAppSecurity; c != nil {
			p.SessionControls.CloudAppSecurity = &sdk.CloudAppSecurity{
				Enabled:               c.Enabled,
				CloudAppSecurityType: c.CloudAppSecurityType,
			}
		}
		if b := s.PersistentBrowser; b != nil {
			p.SessionControls.PersistentBrowser = &sdk.PersistentBrowser{Enabled: b.Enabled, Mode: b.Mode}
		}
		if f := s.SignInFrequency; f != nil {
			p.SessionControls.SignInFrequency = &sdk.SignInFrequency{
				Enabled:           f.Enabled,
				Value:             f.Value,
				Type:              f.Type,
				FrequencyInterval: f.FrequencyInterval,
			}
		}
	}

	return p, warnings
}

// unknownContentWarnings surfaces one warning per unrecognized attribute or
// nested block left over in a decoded policy block's remainder bodies (spec
// §4.3: "the loader also surfaces a parse warning for each unknown
// attribute or nested block encountered"). Only the block itself and its
// three direct children are checked; a deeper unknown attribute nested two
// levels down is caught by the same mechanism if that child gains its own
// Remain field.
func unknownContentWarnings(path, label string, pb *policyBlock) []string {
	var out []string

	collect := func(scope string, body hcl.Body) {
		if body == nil {
			return
		}
		if _, diags := body.Content(&hcl.BodySchema{}); diags.HasErrors() {
			for _, d := range diags {
				out = append(out, fmt.Sprintf("%s: block %q: %s: %s", path, label, scope, d.Summary))
			}
		}
	}

	collect("policy", pb.Remain)
	if pb.Conditions != nil {
		collect("conditions", pb.Conditions.Remain)
	}
	if pb.GrantControls != nil {
		collect("grant_controls", pb.GrantControls.Remain)
	}
	if pb.SessionControls != nil {
		collect("session_controls", pb.SessionControls.Remain)
	}

	return out
}

// resolveStringList evaluates a list-or-scalar attribute expression into a
// string slice. A bare scalar becomes a one-element slice (spec §4.3:
// "single-value attributes become one-element sequences where the model
// expects a sequence"). An expression referencing an unresolved variable or
// local is preserved verbatim as its source text, accompanied by a warning,
// rather than failing the whole decode (spec §4.3).
func resolveStringList(field string, expr hcl.Expression) ([]string, []string) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		token := string(expr.Range().SliceBytes(sourceBytes(expr)))
		return []string{token}, []string{fmt.Sprintf("%s: unresolved reference %q preserved as opaque token", field, token)}
	}

	if val.IsNull() {
		return nil, nil
	}

	listVal, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		// Not list-convertible (e.g. a bare string): treat it as the sole
		// element of a one-element sequence.
		strVal, strErr := convert.Convert(val, cty.String)
		if strErr != nil {
			return nil, []string{fmt.Sprintf("%s: value could not be converted to a string or list of strings", field)}
		}
		return []string{strVal.AsString()}, nil
	}

	var out []string
	for it := listVal.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		out = append(out, ev.AsString())
	}
	return out, nil
}

// sourceBytes recovers the original file bytes behind a parsed expression so
// resolveStringList can slice out an unresolved reference's literal source
// text. hclsyntax expressions carry their range's filename; the parser
// keeps every file it has seen, so a second, cheap read reconstructs it
// without threading the byte slice through every call site.
func sourceBytes(expr hcl.Expression) []byte {
	b, err := os.ReadFile(expr.Range().Filename)
	if err != nil {
		return nil
	}
	return b
}
