// Package json implements the JSON Policy Loader (C2): parsing either a live
// export envelope or a directory of per-policy files into the dialect-
// agnostic sdk.NormalizedPolicy model.
//
// Field mapping relies on encoding/json's built-in case-insensitive fallback
// matching (it only falls back to a case-insensitive match when no exact tag
// match exists, which is exactly the "keys are compared case-insensitively"
// rule in spec §4.2). Unknown keys are preserved into the policy's Raw field
// via a parallel decode into map[string]any but otherwise ignored by the
// model.
package json

import (
	"time"
)

// envelope is the shape of a live/export document: spec §4.2.
type envelope struct {
	ExportedAt     string           `json:"exportedAt"`
	TenantID       string           `json:"tenantId"`
	PoliciesCount  int              `json:"policiesCount"`
	Policies       []policyDoc      `json:"policies"`
}

// policyDoc is the on-the-wire shape of one policy, matching
// NormalizedPolicy's public fields (spec §6 "On-disk reference policy file
// format"), used both for envelope entries and for the single-policy
// directory files.
type policyDoc struct {
	ID               string            `json:"id"`
	DisplayName      string            `json:"displayName"`
	Description      string            `json:"description"`
	State            string            `json:"state"`
	CreatedDateTime  string            `json:"createdDateTime"`
	ModifiedDateTime string            `json:"modifiedDateTime"`
	Conditions       *conditionsDoc    `json:"conditions"`
	GrantControls    *grantControlsDoc `json:"grantControls"`
	SessionControls   *sessionControlsDoc `json:"sessionControls"`
}

type conditionsDoc struct {
	Applications *applicationsDoc `json:"applications"`
	Users        *usersDoc        `json:"users"`

	ClientAppTypes []string `json:"clientAppTypes"`

	Platforms *platformsDoc `json:"platforms"`
	Locations *locationsDoc `json:"locations"`

	SignInRiskLevels []string `json:"signInRiskLevels"`
	UserRiskLevels   []string `json:"userRiskLevels"`
}

type applicationsDoc struct {
	Include            []string `json:"include"`
	Exclude            []string `json:"exclude"`
	IncludeUserActions []string `json:"includeUserActions"`
}

type usersDoc struct {
	IncludeUsers  []string `json:"includeUsers"`
	ExcludeUsers  []string `json:"excludeUsers"`
	IncludeGroups []string `json:"includeGroups"`
	ExcludeGroups []string `json:"excludeGroups"`
	IncludeRoles  []string `json:"includeRoles"`
	ExcludeRoles  []string `json:"excludeRoles"`
}

type platformsDoc struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

type locationsDoc struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

type grantControlsDoc struct {
	Operator               string                     `json:"operator"`
	BuiltInControls        []string                   `json:"builtInControls"`
	CustomAuthFactors      []string                   `json:"customAuthFactors"`
	TermsOfUse             []string                   `json:"termsOfUse"`
	AuthenticationStrength *authenticationStrengthDoc `json:"authenticationStrength"`
}

type authenticationStrengthDoc struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type sessionControlsDoc struct {
	ApplicationEnforcedRestrictions *applicationEnforcedRestrictionsDoc `json:"applicationEnforcedRestrictions"`
	CloudAppSecurity                *cloudAppSecurityDoc                `json:"cloudAppSecurity"`
	PersistentBrowser                *persistentBrowserDoc                `json:"persistentBrowser"`
	SignInFrequency                  *signInFrequencyDoc                  `json:"signInFrequency"`
}

type applicationEnforcedRestrictionsDoc struct {
	Enabled bool `json:"enabled"`
}

type cloudAppSecurityDoc struct {
	Enabled               bool   `json:"enabled"`
	CloudAppSecurityType string `json:"cloudAppSecurityType"`
}

type persistentBrowserDoc struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
}

type signInFrequencyDoc struct {
	Enabled           bool   `json:"enabled"`
	Value             int    `json:"value"`
	Type              string `json:"type"`
	FrequencyInterval string `json:"frequencyInterval"`
}

// parseUTC parses an RFC3339 timestamp into UTC, returning ok=false for an
// empty or unparseable value rather than an error (spec §4.2: "unparseable
// timestamps are dropped with a warning").
func parseUTC(raw string) (t time.Time, ok bool) {
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}
