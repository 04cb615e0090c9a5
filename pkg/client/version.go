package client

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor pair. Parts are compared as integers, so 4.10 is
// newer than 4.4.
type Version struct {
	Major int
	Minor int
}

// ParseVersion keeps major and minor, "120.0.6099.71" becomes 120.0. An
// unparsable version is the zero version.
func ParseVersion(version string) Version {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}
	}

	v := Version{Major: major}
	if len(parts) > 1 {
		if minor, err := strconv.Atoi(parts[1]); err == nil && minor >= 0 {
			v.Minor = minor
		}
	}
	return v
}

func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
