// Package version exposes build-time version metadata, populated via
// -ldflags at release build time and defaulted here for development builds.
package version

import (
	"fmt"
	"strings"
)

var (
	// GitCommit and GitDescribe are set via -ldflags at build time.
	GitCommit   string
	GitDescribe string

	// Version is the main version number under active development.
	Version = "0.1.0"

	// VersionPrerelease denotes a pre-release marker for the version; if
	// empty this is a main release.
	VersionPrerelease = "dev"

	// VersionMetadata is metadata further describing the build type.
	VersionMetadata = ""
)

// GetHumanVersion composes the parts of the version into a human-readable
// string, preferring a git describe tag over the bare Version when one was
// baked in at build time.
func GetHumanVersion() string {
	var ver string
	if GitDescribe != "" {
		ver = GitDescribe
	} else {
		ver = "v" + Version
	}

	if VersionPrerelease != "" {
		if !strings.HasSuffix(ver, "-"+VersionPrerelease) {
			ver += fmt.Sprintf("-%s", VersionPrerelease)
		}
		if GitCommit != "" {
			ver += fmt.Sprintf(" (%s)", GitCommit)
		}
	}

	if VersionMetadata != "" {
		ver += fmt.Sprintf("+%s", VersionMetadata)
	}

	return ver
}
