package document

import (
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// CompareVersions compares two PDF version strings such as "1.4" and "1.7"
// numerically. Malformed versions compare equal to everything.
func CompareVersions(a, b string) int {
	pa := versionPattern.FindStringSubmatch(a)
	pb := versionPattern.FindStringSubmatch(b)
	if pa == nil || pb == nil {
		return 0
	}
	for i := 1; i <= 2; i++ {
		x, _ := strconv.Atoi(pa[i])
		y, _ := strconv.Atoi(pb[i])
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// MaxVersion returns the highest of the given versions, ignoring malformed
// and empty ones. It returns "" when none is usable.
func MaxVersion(versions ...string) string {
	best := ""
	for _, v := range versions {
		if !versionPattern.MatchString(v) {
			continue
		}
		if best == "" || CompareVersions(v, best) > 0 {
			best = v
		}
	}
	return best
}
