// Package hcl implements the HCL Policy Loader (C3): scanning files for
// conditional_access_policy resource blocks and decoding them into the same
// NormalizedPolicy model the JSON loader produces, using
// github.com/hashicorp/hcl/v2's hclparse/gohcl the way the teacher's plugin
// configuration decodes hclsimple-tagged structs.
package hcl

import "github.com/hashicorp/hcl/v2"

// resourceBlockType is the HCL block keyword every policy is nested under;
// blockType is the single well-known resource-type label this loader
// recognizes (spec §4.3: "the single well-known conditional-access-policy
// type"), matching the two-label `resource "<type>" "<name>" { ... }` shape
// spec §8 Scenario S1 uses literally.
const (
	resourceBlockType = "resource"
	blockType         = "conditional_access_policy"
)

// RawBlock is the value NormalizedPolicy.Raw holds for HCL-sourced policies:
// just the scalar top-level attributes, since policyBlock's condition and
// control fields are hcl.Expression trees that don't marshal meaningfully
// (see sdk.NormalizedPolicy.Raw).
type RawBlock struct {
	Name        string `json:"name"`
	State       string `json:"state,omitempty"`
	Description string `json:"description,omitempty"`
}

// policyBlock mirrors sdk.NormalizedPolicy's shape with snake_case HCL
// attribute names. Name is populated manually from the enclosing resource
// block's second label, not decoded via an hcl tag: gohcl.DecodeBody only
// ever sees the block's Body, which carries no label information. List-like
// attributes decode through hcl.Expression rather than []string so
// resolveStringList can both accept a bare scalar in place of a one-element
// list (spec §4.3) and preserve an unresolved variable/local reference as
// an opaque token instead of failing the decode.
type policyBlock struct {
	Name string `hcl:"-"`

	State       string `hcl:"state,optional"`
	Description string `hcl:"description,optional"`

	Conditions      *conditionsBlock      `hcl:"conditions,block"`
	GrantControls   *grantControlsBlock   `hcl:"grant_controls,block"`
	SessionControls *sessionControlsBlock `hcl:"session_controls,block"`

	Remain hcl.Body `hcl:",remain"`
}

type conditionsBlock struct {
	Applications *applicationsBlock `hcl:"applications,block"`
	Users        *usersBlock        `hcl:"users,block"`

	ClientAppTypes hcl.Expression `hcl:"client_app_types,optional"`

	Platforms *platformsBlock `hcl:"platforms,block"`
	Locations *locationsBlock `hcl:"locations,block"`

	SignInRiskLevels hcl.Expression `hcl:"sign_in_risk_levels,optional"`
	UserRiskLevels   hcl.Expression `hcl:"user_risk_levels,optional"`

	Remain hcl.Body `hcl:",remain"`
}

type applicationsBlock struct {
	Include            hcl.Expression `hcl:"include,optional"`
	Exclude            hcl.Expression `hcl:"exclude,optional"`
	IncludeUserActions hcl.Expression `hcl:"include_user_actions,optional"`
}

type usersBlock struct {
	IncludeUsers  hcl.Expression `hcl:"include_users,optional"`
	ExcludeUsers  hcl.Expression `hcl:"exclude_users,optional"`
	IncludeGroups hcl.Expression `hcl:"include_groups,optional"`
	ExcludeGroups hcl.Expression `hcl:"exclude_groups,optional"`
	IncludeRoles  hcl.Expression `hcl:"include_roles,optional"`
	ExcludeRoles  hcl.Expression `hcl:"exclude_roles,optional"`
}

type platformsBlock struct {
	Include hcl.Expression `hcl:"include,optional"`
	Exclude hcl.Expression `hcl:"exclude,optional"`
}

type locationsBlock struct {
	Include hcl.Expression `hcl:"include,optional"`
	Exclude hcl.Expression `hcl:"exclude,optional"`
}

type grantControlsBlock struct {
	Operator          string         `hcl:"operator,optional"`
	BuiltInControls   hcl.Expression `hcl:"built_in_controls,optional"`
	CustomAuthFactors hcl.Expression `hcl:"custom_auth_factors,optional"`
	TermsOfUse        hcl.Expression `hcl:"terms_of_use,optional"`

	AuthenticationStrength *authStrengthBlock `hcl:"authentication_strength,block"`

	Remain hcl.Body `hcl:",remain"`
}

type authStrengthBlock struct {
	ID          string `hcl:"id,optional"`
	DisplayName string `hcl:"display_name,optional"`
}

type sessionControlsBlock struct {
	ApplicationEnforcedRestrictions *appEnforcedRestrictionsBlock `hcl:"application_enforced_restrictions,block"`
	CloudAppSecurity                *cloudAppSecurityBlock        `hcl:"cloud_app_security,block"`
	PersistentBrowser               *persistentBrowserBlock       `hcl:"persistent_browser,block"`
	SignInFrequency                 *signInFrequencyBlock         `hcl:"sign_in_frequency,block"`

	Remain hcl.Body `hcl:",remain"`
}

type appEnforcedRestrictionsBlock struct {
	Enabled bool `hcl:"enabled,optional"`
}

type cloudAppSecurityBlock struct {
	Enabled               bool   `hcl:"enabled,optional"`
	CloudAppSecurityType string `hcl:"cloud_app_security_type,optional"`
}

type persistentBrowserBlock struct {
	Enabled bool   `hcl:"enabled,optional"`
	Mode    string `hcl:"mode,optional"`
}

type signInFrequencyBlock struct {
	Enabled           bool   `hcl:"enabled,optional"`
	Value             int    `hcl:"value,optional"`
	Type              string `hcl:"type,optional"`
	FrequencyInterval string `hcl:"frequency_interval,optional"`
}
