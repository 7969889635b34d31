package normalize

import "github.com/cloudsec/policydrift/sdk"

// Policy canonicalizes every enum-like and set-semantic field on p in
// place, recording any unknown-token warnings against n. Both loaders call
// this exactly once after building a NormalizedPolicy from their dialect;
// the diff engine also calls it defensively on both sides of a pair before
// walking fields (spec §4.5 step 1), so a policy that was somehow
// constructed without going through a loader still compares correctly.
func (n *Normalizer) Policy(p *sdk.NormalizedPolicy) {
	if p == nil {
		return
	}

	p.State = n.State(p.State)
	n.conditions(p.Conditions)
	n.grantControls(p.GrantControls)
}

func (n *Normalizer) conditions(c *sdk.Conditions) {
	if c == nil {
		return
	}

	if c.Applications != nil {
		c.Applications.Include = Sequence(c.Applications.Include, Identity)
		c.Applications.Exclude = Sequence(c.Applications.Exclude, Identity)
		c.Applications.IncludeUserActions = Sequence(c.Applications.IncludeUserActions, Identity)
	}

	if c.Users != nil {
		c.Users.IncludeUsers = Sequence(c.Users.IncludeUsers, Identity)
		c.Users.ExcludeUsers = Sequence(c.Users.ExcludeUsers, Identity)
		c.Users.IncludeGroups = Sequence(c.Users.IncludeGroups, Identity)
		c.Users.ExcludeGroups = Sequence(c.Users.ExcludeGroups, Identity)
		c.Users.IncludeRoles = Sequence(c.Users.IncludeRoles, Identity)
		c.Users.ExcludeRoles = Sequence(c.Users.ExcludeRoles, Identity)
	}

	c.ClientAppTypes = Sequence(c.ClientAppTypes, n.ClientAppType)

	if c.Platforms != nil {
		c.Platforms.Include = Sequence(c.Platforms.Include, n.LowercaseToken)
		c.Platforms.Exclude = Sequence(c.Platforms.Exclude, n.LowercaseToken)
	}

	if c.Locations != nil {
		c.Locations.Include = Sequence(c.Locations.Include, n.LowercaseToken)
		c.Locations.Exclude = Sequence(c.Locations.Exclude, n.LowercaseToken)
	}

	c.SignInRiskLevels = Sequence(c.SignInRiskLevels, n.LowercaseToken)
	c.UserRiskLevels = Sequence(c.UserRiskLevels, n.LowercaseToken)
}

func (n *Normalizer) grantControls(g *sdk.GrantControls) {
	if g == nil {
		return
	}

	g.BuiltInControls = Sequence(g.BuiltInControls, n.BuiltInControl)
	g.CustomAuthFactors = Sequence(g.CustomAuthFactors, Identity)
	g.TermsOfUse = Sequence(g.TermsOfUse, Identity)
}
