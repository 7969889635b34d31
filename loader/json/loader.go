package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/cloudsec/policydrift/helper/file"
	"github.com/cloudsec/policydrift/helper/workerpool"
	"github.com/cloudsec/policydrift/normalize"
	"github.com/cloudsec/policydrift/policyerr"
	"github.com/cloudsec/policydrift/sdk"
)

// streamThreshold is the file size above which Load switches from a single
// json.Unmarshal to token-by-token streaming decode, bounding peak memory to
// roughly one policy rather than the whole export (spec §4.2: "files larger
// than 10MiB are streamed rather than fully buffered").
const streamThreshold = 10 * 1024 * 1024

// Result bundles everything one Load call produced: the decoded policies in
// file order, any non-fatal warnings worth surfacing to the operator, and
// the tenant identifier carried by an envelope document, if any.
type Result struct {
	Policies []*sdk.NormalizedPolicy
	Warnings []string
	TenantID string
}

// Loader decodes the JSON dialect (spec §4.2) into NormalizedPolicy values.
type Loader struct {
	log hclog.Logger
}

// New returns a Loader that logs under the given parent logger.
func New(log hclog.Logger) *Loader {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Loader{log: log.Named("loader.json")}
}

// Load reads path, which may be a single export envelope file, a single
// per-policy file, or a directory of either, and returns every policy it
// could decode. A malformed individual file never aborts the whole load; it
// is recorded as a warning and skipped, per spec §4.2's "one bad file does
// not fail the whole directory" rule.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, policyerr.Wrap(policyerr.KindIO, "cannot stat reference path "+path, err)
	}

	if info.IsDir() {
		return l.loadDirectory(ctx, path)
	}
	return l.loadFile(ctx, path, info.Size())
}

// LoadBytes decodes an already-fetched document (the shape a LivePolicySource
// collaborator returns) without touching the filesystem. sourceRef is used
// only as a diagnostic label on the resulting policies' SourceRef field.
func (l *Loader) LoadBytes(raw []byte, sourceRef string) (*Result, error) {
	return l.decodeBuffer(sourceRef, raw)
}

func (l *Loader) loadDirectory(ctx context.Context, dir string) (*Result, error) {
	paths, err := file.ListRecursive(dir, ".json")
	if err != nil {
		return nil, policyerr.Wrap(policyerr.KindIO, "cannot list reference directory "+dir, err)
	}

	type fileResult struct {
		res *Result
		err error
	}

	results, errs := workerpool.Map(ctx, workerpool.Size(), paths, func(ctx context.Context, p string) (fileResult, error) {
		info, statErr := os.Stat(p)
		if statErr != nil {
			return fileResult{err: statErr}, nil
		}
		res, loadErr := l.loadFile(ctx, p, info.Size())
		return fileResult{res: res, err: loadErr}, nil
	})

	agg := &Result{}
	for i, fr := range results {
		if err := errs[i]; err != nil {
			agg.Warnings = append(agg.Warnings, fmt.Sprintf("%s: %v", paths[i], err))
			continue
		}
		if fr.err != nil {
			l.log.Warn("skipping unreadable policy file", "path", paths[i], "error", fr.err)
			agg.Warnings = append(agg.Warnings, fmt.Sprintf("%s: %v", paths[i], fr.err))
			continue
		}
		agg.Policies = append(agg.Policies, fr.res.Policies...)
		agg.Warnings = append(agg.Warnings, fr.res.Warnings...)
		if agg.TenantID == "" {
			agg.TenantID = fr.res.TenantID
		}
	}

	return agg, nil
}

func (l *Loader) loadFile(ctx context.Context, path string, size int64) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, policyerr.Wrap(policyerr.KindIO, "cannot open "+path, err)
	}
	defer f.Close()

	if size > streamThreshold {
		return l.decodeStream(ctx, path, f)
	}

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, policyerr.Wrap(policyerr.KindIO, "cannot read "+path, err)
	}
	return l.decodeBuffer(path, raw)
}

// decodeBuffer handles the common, small-file case: try the envelope shape
// first, fall back to a bare single-policy document.
func (l *Loader) decodeBuffer(path string, raw []byte) (*Result, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Policies) > 0 {
		var rawEnv struct {
			Policies []json.RawMessage `json:"policies"`
		}
		// Best effort: a failure here just leaves NormalizedPolicy.Raw unset
		// for this file, it never fails the load itself.
		_ = json.Unmarshal(raw, &rawEnv)
		return l.buildResult(path, env.TenantID, env.Policies, rawEnv.Policies)
	}

	var doc policyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "neither an export envelope nor a policy document: "+path, err)
	}
	if doc.DisplayName == "" && doc.ID == "" {
		return nil, policyerr.New(policyerr.KindInvalidDocument, "empty or unrecognized policy document: "+path)
	}
	return l.buildResult(path, "", []policyDoc{doc}, []json.RawMessage{raw})
}

// decodeStream is used for files over streamThreshold: it walks the JSON
// token stream instead of unmarshaling the whole document, so peak memory is
// bounded by the largest single policy rather than the full export.
func (l *Loader) decodeStream(ctx context.Context, path string, r io.Reader) (*Result, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "empty or truncated document: "+path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, policyerr.New(policyerr.KindInvalidDocument, "expected a JSON object at top level: "+path)
	}

	var tenantID string
	var docs []policyDoc
	var rawDocs []json.RawMessage

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return nil, policyerr.Wrap(policyerr.KindCancelled, "streaming decode cancelled: "+path, err)
		}

		keyTok, err := dec.Token()
		if err != nil {
			return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "malformed document: "+path, err)
		}
		key, _ := keyTok.(string)

		switch key {
		case "tenantId":
			if err := dec.Decode(&tenantID); err != nil {
				return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "malformed tenantId: "+path, err)
			}
		case "policies":
			arrTok, err := dec.Token()
			if err != nil {
				return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "malformed policies array: "+path, err)
			}
			if delim, ok := arrTok.(json.Delim); !ok || delim != '[' {
				return nil, policyerr.New(policyerr.KindInvalidDocument, "policies is not an array: "+path)
			}
			for dec.More() {
				// Decode each element as raw bytes first, then into the
				// typed shape: peak memory stays bounded by one policy at a
				// time (spec §4.2), while still letting NormalizedPolicy.Raw
				// retain the element's own document for report rendering.
				var rawDoc json.RawMessage
				if err := dec.Decode(&rawDoc); err != nil {
					return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "malformed policy element: "+path, err)
				}
				var doc policyDoc
				if err := json.Unmarshal(rawDoc, &doc); err != nil {
					return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "malformed policy element: "+path, err)
				}
				docs = append(docs, doc)
				rawDocs = append(rawDocs, rawDoc)
			}
			if _, err := dec.Token(); err != nil {
				return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "unterminated policies array: "+path, err)
			}
		default:
			// Skip any value we don't care about (exportedAt, policiesCount,
			// unknown top-level keys) without buffering it.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, policyerr.Wrap(policyerr.KindInvalidDocument, "malformed document: "+path, err)
			}
		}
	}

	if len(docs) == 0 {
		return nil, policyerr.New(policyerr.KindInvalidDocument, "streamed document carried no policies: "+path)
	}

	return l.buildResult(path, tenantID, docs, rawDocs)
}

func (l *Loader) buildResult(path, tenantID string, docs []policyDoc, rawDocs []json.RawMessage) (*Result, error) {
	res := &Result{TenantID: tenantID}

	for i, doc := range docs {
		n := normalize.New()
		policy := convert(doc, filepath.Clean(path), n)
		if i < len(rawDocs) {
			var rawMap map[string]any
			if err := json.Unmarshal(rawDocs[i], &rawMap); err == nil {
				policy.Raw = rawMap
			}
		}
		n.Policy(policy)
		res.Policies = append(res.Policies, policy)

		for _, w := range n.Warnings() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s %q: %s", path, w.Field, w.Token, w.Message))
		}
	}

	return res, nil
}

func convert(doc policyDoc, sourceRef string, n *normalize.Normalizer) *sdk.NormalizedPolicy {
	p := &sdk.NormalizedPolicy{
		ID:           doc.ID,
		DisplayName:  doc.DisplayName,
		Description:  doc.Description,
		State:        doc.State,
		SourceFormat: sdk.SourceFormatJSON,
		SourceRef:    sourceRef,
	}

	if t, ok := parseUTC(doc.CreatedDateTime); ok {
		p.CreatedDateTime = &t
	} else if doc.CreatedDateTime != "" {
		n.WarnField("createdDateTime", doc.CreatedDateTime, "unparseable timestamp, dropped")
	}
	if t, ok := parseUTC(doc.ModifiedDateTime); ok {
		p.ModifiedDateTime = &t
	} else if doc.ModifiedDateTime != "" {
		n.WarnField("modifiedDateTime", doc.ModifiedDateTime, "unparseable timestamp, dropped")
	}

	if doc.Conditions != nil {
		p.Conditions = &sdk.Conditions{
			ClientAppTypes:   doc.Conditions.ClientAppTypes,
			SignInRiskLevels: doc.Conditions.SignInRiskLevels,
			UserRiskLevels:   doc.Conditions.UserRiskLevels,
		}
		if a := doc.Conditions.Applications; a != nil {
			p.Conditions.Applications = &sdk.ApplicationsCondition{
				Include:            a.Include,
				Exclude:            a.Exclude,
				IncludeUserActions: a.IncludeUserActions,
			}
		}
		if u := doc.Conditions.Users; u != nil {
			p.Conditions.Users = &sdk.UsersCondition{
				IncludeUsers:  u.IncludeUsers,
				ExcludeUsers:  u.ExcludeUsers,
				IncludeGroups: u.IncludeGroups,
				ExcludeGroups: u.ExcludeGroups,
				IncludeRoles:  u.IncludeRoles,
				ExcludeRoles:  u.ExcludeRoles,
			}
		}
		if pl := doc.Conditions.Platforms; pl != nil {
			p.Conditions.Platforms = &sdk.PlatformsCondition{Include: pl.Include, Exclude: pl.Exclude}
		}
		if loc := doc.Conditions.Locations; loc != nil {
			p.Conditions.Locations = &sdk.LocationsCondition{Include: loc.Include, Exclude: loc.Exclude}
		}
	}

	if doc.GrantControls != nil {
		g := doc.GrantControls
		p.GrantControls = &sdk.GrantControls{
			Operator:          g.Operator,
			BuiltInControls:   g.BuiltInControls,
			CustomAuthFactors: g.CustomAuthFactors,
			TermsOfUse:        g.TermsOfUse,
		}
		if as := g.AuthenticationStrength; as != nil {
			p.GrantControls.AuthenticationStrength = &sdk.AuthenticationStrength{
				ID:          as.ID,
				DisplayName: as.DisplayName,
			}
		}
	}

	if doc.SessionControls != nil {
		s := doc.SessionControls
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

	return p
}
