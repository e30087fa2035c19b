// Package version holds the build version, overridden at link time with
// -ldflags "-X glidecore/pkg/version.Version=...".
package version

import "strings"

var Version = "v0.4.0-dev"

// Dev reports whether the binary was built without a release version.
func Dev() bool {
	return Version == "" || strings.HasSuffix(Version, "-dev")
}
