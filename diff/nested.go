package diff

import (
	"fmt"

	"github.com/cloudsec/policydrift/sdk"
)

// nestedDiff implements spec §4.5 step 5 generically: if exactly one side
// has a nested record, emit a single added/removed diff carrying the whole
// record as an opaque value and do not recurse; if both sides have it,
// recurse via walk. Since both sides are the same static Go type by
// construction, the step 6 typeChanged case (scalar on one side, sequence
// on the other) cannot arise at this layer — it is the loaders' job to
// reject a document that can't be coerced into the model in the first
// place.
func nestedDiff[T any](path string, left, right *T, walk func(string, *T, *T) []sdk.Difference) []sdk.Difference {
	switch {
	case left == nil && right == nil:
		return nil
	case left == nil:
		return []sdk.Difference{{Path: path, Kind: sdk.DiffAdded, RightValue: fmt.Sprintf("%+v", *right), ChangeType: path}}
	case right == nil:
		return []sdk.Difference{{Path: path, Kind: sdk.DiffRemoved, LeftValue: fmt.Sprintf("%+v", *left), ChangeType: path}}
	default:
		return walk(path, left, right)
	}
}

func conditionsDiff(path string, left, right *sdk.Conditions) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.Conditions) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, applicationsDiff(path+".applications", left.Applications, right.Applications)...)
		diffs = append(diffs, usersDiff(path+".users", left.Users, right.Users)...)
		diffs = append(diffs, sequenceDiff(path+".clientAppTypes", left.ClientAppTypes, right.ClientAppTypes)...)
		diffs = append(diffs, platformsDiff(path+".platforms", left.Platforms, right.Platforms)...)
		diffs = append(diffs, locationsDiff(path+".locations", left.Locations, right.Locations)...)
		diffs = append(diffs, sequenceDiff(path+".signInRiskLevels", left.SignInRiskLevels, right.SignInRiskLevels)...)
		diffs = append(diffs, sequenceDiff(path+".userRiskLevels", left.UserRiskLevels, right.UserRiskLevels)...)
		return diffs
	})
}

func applicationsDiff(path string, left, right *sdk.ApplicationsCondition) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.ApplicationsCondition) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, sequenceDiff(path+".include", left.Include, right.Include)...)
		diffs = append(diffs, sequenceDiff(path+".exclude", left.Exclude, right.Exclude)...)
		diffs = append(diffs, sequenceDiff(path+".includeUserActions", left.IncludeUserActions, right.IncludeUserActions)...)
		return diffs
	})
}

func usersDiff(path string, left, right *sdk.UsersCondition) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.UsersCondition) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, sequenceDiff(path+".includeUsers", left.IncludeUsers, right.IncludeUsers)...)
		diffs = append(diffs, sequenceDiff(path+".excludeUsers", left.ExcludeUsers, right.ExcludeUsers)...)
		diffs = append(diffs, sequenceDiff(path+".includeGroups", left.IncludeGroups, right.IncludeGroups)...)
		diffs = append(diffs, sequenceDiff(path+".excludeGroups", left.ExcludeGroups, right.ExcludeGroups)...)
		diffs = append(diffs, sequenceDiff(path+".includeRoles", left.IncludeRoles, right.IncludeRoles)...)
		diffs = append(diffs, sequenceDiff(path+".excludeRoles", left.ExcludeRoles, right.ExcludeRoles)...)
		return diffs
	})
}

func platformsDiff(path string, left, right *sdk.PlatformsCondition) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.PlatformsCondition) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, sequenceDiff(path+".include", left.Include, right.Include)...)
		diffs = append(diffs, sequenceDiff(path+".exclude", left.Exclude, right.Exclude)...)
		return diffs
	})
}

func locationsDiff(path string, left, right *sdk.LocationsCondition) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.LocationsCondition) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, sequenceDiff(path+".include", left.Include, right.Include)...)
		diffs = append(diffs, sequenceDiff(path+".exclude", left.Exclude, right.Exclude)...)
		return diffs
	})
}

func grantControlsDiff(path string, left, right *sdk.GrantControls) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.GrantControls) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, scalarDiff(path+".operator", left.Operator, right.Operator)...)
		diffs = append(diffs, sequenceDiff(path+".builtInControls", left.BuiltInControls, right.BuiltInControls)...)
		diffs = append(diffs, sequenceDiff(path+".customAuthFactors", left.CustomAuthFactors, right.CustomAuthFactors)...)
		diffs = append(diffs, sequenceDiff(path+".termsOfUse", left.TermsOfUse, right.TermsOfUse)...)
		diffs = append(diffs, authenticationStrengthDiff(path+".authenticationStrength", left.AuthenticationStrength, right.AuthenticationStrength)...)
		return diffs
	})
}

func authenticationStrengthDiff(path string, left, right *sdk.AuthenticationStrength) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.AuthenticationStrength) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, scalarDiff(path+".id", left.ID, right.ID)...)
		diffs = append(diffs, scalarDiff(path+".displayName", left.DisplayName, right.DisplayName)...)
		return diffs
	})
}

func sessionControlsDiff(path string, left, right *sdk.SessionControls) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.SessionControls) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, applicationEnforcedRestrictionsDiff(path+".applicationEnforcedRestrictions", left.ApplicationEnforcedRestrictions, right.ApplicationEnforcedRestrictions)...)
		diffs = append(diffs, cloudAppSecurityDiff(path+".cloudAppSecurity", left.CloudAppSecurity, right.CloudAppSecurity)...)
		diffs = append(diffs, persistentBrowserDiff(path+".persistentBrowser", left.PersistentBrowser, right.PersistentBrowser)...)
		diffs = append(diffs, signInFrequencyDiff(path+".signInFrequency", left.SignInFrequency, right.SignInFrequency)...)
		return diffs
	})
}

func applicationEnforcedRestrictionsDiff(path string, left, right *sdk.ApplicationEnforcedRestrictions) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.ApplicationEnforcedRestrictions) []sdk.Difference {
		return boolDiff(path+".enabled", left.Enabled, right.Enabled)
	})
}

func cloudAppSecurityDiff(path string, left, right *sdk.CloudAppSecurity) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.CloudAppSecurity) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, boolDiff(path+".enabled", left.Enabled, right.Enabled)...)
		diffs = append(diffs, scalarDiff(path+".cloudAppSecurityType", left.CloudAppSecurityType, right.CloudAppSecurityType)...)
		return diffs
	})
}

func persistentBrowserDiff(path string, left, right *sdk.PersistentBrowser) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.PersistentBrowser) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, boolDiff(path+".enabled", left.Enabled, right.Enabled)...)
		diffs = append(diffs, scalarDiff(path+".mode", left.Mode, right.Mode)...)
		return diffs
	})
}

func signInFrequencyDiff(path string, left, right *sdk.SignInFrequency) []sdk.Difference {
	return nestedDiff(path, left, right, func(path string, left, right *sdk.SignInFrequency) []sdk.Difference {
		var diffs []sdk.Difference
		diffs = append(diffs, boolDiff(path+".enabled", left.Enabled, right.Enabled)...)
		diffs = append(diffs, intDiff(path+".value", left.Value, right.Value)...)
		diffs = append(diffs, scalarDiff(path+".type", left.Type, right.Type)...)
		diffs = append(diffs, scalarDiff(path+".frequencyInterval", left.FrequencyInterval, right.FrequencyInterval)...)
		return diffs
	})
}

func boolDiff(path string, left, right bool) []sdk.Difference {
	if left == right {
		return nil
	}
	return []sdk.Difference{{Path: path, Kind: sdk.DiffModified, LeftValue: left, RightValue: right, ChangeType: path}}
}

func intDiff(path string, left, right int) []sdk.Difference {
	if left == right {
		return nil
	}
	return []sdk.Difference{{Path: path, Kind: sdk.DiffModified, LeftValue: left, RightValue: right, ChangeType: path}}
}
