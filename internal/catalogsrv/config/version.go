package config

import (
	"github.com/Masterminds/semver/v3"
)

// Version is the configuration file format version this build reads.
// The version follows semantic versioning (MAJOR.MINOR.PATCH).
const Version = "0.1.0"

// versionConstraint accepts config files written for the same major.minor.
var versionConstraint *semver.Constraints

func init() {
	var err error
	versionConstraint, err = semver.NewConstraint("~" + Version)
	if err != nil {
		panic(err)
	}
}

// IsVersionCompatible reports whether a config file's format version can be
// read by this build. Returns false for invalid version strings.
func IsVersionCompatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return versionConstraint.Check(v)
}
