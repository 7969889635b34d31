// Package sdk defines the dialect-agnostic policy model and the
// collaborator contracts (LivePolicySource, ClassificationConfig,
// ReportWriter) that the comparison engine is built around. Every other
// package in this module — the normalizer, the two loaders, the matcher,
// the diff engine, the classifier, and the outcome aggregator — operates
// purely in terms of the types defined here, the same way the autoscaler's
// sdk package gives policy.Manager, the plugin runners, and the CLI a
// shared vocabulary without any of them depending on each other directly.
package sdk

import "time"

const (
	// StateEnabled indicates the policy is actively enforced.
	StateEnabled = "enabled"
	// StateDisabled indicates the policy is not evaluated at all.
	StateDisabled = "disabled"
	// StateReportOnly indicates the policy is evaluated but not enforced.
	StateReportOnly = "reportOnly"

	// SourceFormatJSON marks a policy decoded from the JSON dialect.
	SourceFormatJSON = "json"
	// SourceFormatHCL marks a policy decoded from the HCL dialect.
	SourceFormatHCL = "hcl"

	// GrantControlOperatorAND requires every control to be satisfied.
	GrantControlOperatorAND = "AND"
	// GrantControlOperatorOR requires any one control to be satisfied.
	GrantControlOperatorOR = "OR"
)

// NormalizedPolicy is the dialect-agnostic representation of one access
// control policy. Every loader (JSON, HCL) produces these; every downstream
// component (matcher, diff engine, classifier) consumes only these.
type NormalizedPolicy struct {
	// ID is an opaque identifier; it may be empty if the source dialect does
	// not carry one (plain HCL resource blocks have no natural ID and leave
	// it empty).
	ID string

	// DisplayName is the human-readable policy name. It is required and is
	// the identity used by the byName matching strategy.
	DisplayName string

	// Description is free-form operator text; classified non-critical by
	// default (spec §4.6).
	Description string

	// State is one of StateEnabled, StateDisabled, StateReportOnly.
	State string

	// CreatedDateTime and ModifiedDateTime are UTC timestamps carried by the
	// JSON dialect (the HCL dialect has no equivalent attribute and leaves
	// these nil). Both are classified non-critical by default (spec §4.6)
	// and are commonly ignored outright via --ignore.
	CreatedDateTime  *time.Time
	ModifiedDateTime *time.Time

	// SourceFormat is one of SourceFormatJSON, SourceFormatHCL.
	SourceFormat string

	// SourceRef is diagnostic only: a file path or resource address.
	SourceRef string

	Conditions      *Conditions
	GrantControls   *GrantControls
	SessionControls *SessionControls

	// Raw is the original decoded document, retained for report rendering.
	// Its dynamic type depends on the source dialect: a map[string]any
	// decoded straight from the document for JSON, a small scalar-attribute
	// struct for HCL (loader/hcl's resource blocks carry unresolved
	// expressions that don't marshal usefully). It plays no role in
	// comparison.
	Raw any
}

// Conditions holds the sets of string tokens that scope when a policy
// applies. Every sequence field is expected to already be in canonical
// (sorted, deduplicated) form by the time it reaches the diff engine; see
// package normalize for how loaders get there.
type Conditions struct {
	Applications *ApplicationsCondition
	Users        *UsersCondition

	ClientAppTypes []string

	Platforms *PlatformsCondition
	Locations *LocationsCondition

	SignInRiskLevels []string
	UserRiskLevels   []string
}

// ApplicationsCondition scopes a policy to specific applications.
type ApplicationsCondition struct {
	Include            []string
	Exclude            []string
	IncludeUserActions []string
}

// UsersCondition scopes a policy to specific users, groups, and roles.
type UsersCondition struct {
	IncludeUsers  []string
	ExcludeUsers  []string
	IncludeGroups []string
	ExcludeGroups []string
	IncludeRoles  []string
	ExcludeRoles  []string
}

// PlatformsCondition scopes a policy to specific device platforms.
type PlatformsCondition struct {
	Include []string
	Exclude []string
}

// LocationsCondition scopes a policy to specific named locations.
type LocationsCondition struct {
	Include []string
	Exclude []string
}

// GrantControls describes what must be satisfied for access to be granted.
type GrantControls struct {
	// Operator is one of GrantControlOperatorAND, GrantControlOperatorOR.
	Operator string

	BuiltInControls       []string
	CustomAuthFactors     []string
	TermsOfUse            []string
	AuthenticationStrength *AuthenticationStrength
}

// AuthenticationStrength identifies a named authentication strength policy.
type AuthenticationStrength struct {
	ID          string
	DisplayName string
}

// SessionControls describes restrictions applied during an active session.
type SessionControls struct {
	ApplicationEnforcedRestrictions *ApplicationEnforcedRestrictions
	CloudAppSecurity                *CloudAppSecurity
	PersistentBrowser                *PersistentBrowser
	SignInFrequency                  *SignInFrequency
}

// ApplicationEnforcedRestrictions toggles app-enforced session restrictions.
type ApplicationEnforcedRestrictions struct {
	Enabled bool
}

// CloudAppSecurity configures Cloud App Security session monitoring.
type CloudAppSecurity struct {
	Enabled     bool
	CloudAppSecurityType string
}

// PersistentBrowser configures whether browser sessions persist.
type PersistentBrowser struct {
	Enabled bool
	Mode    string
}

// SignInFrequency configures how often a user must re-authenticate.
type SignInFrequency struct {
	Enabled       bool
	Value         int
	Type          string
	FrequencyInterval string
}
