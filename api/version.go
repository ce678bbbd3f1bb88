package gameapi

import (
	"strconv"
	"strings"
)

// API version the host implements, and the oldest client API it accepts.
const (
	APIVersion    = "1.0.3"
	MinAPIVersion = "1.0.0"
)

// CompareVersions compares two dotted numeric versions and returns -1, 0
// or 1. Missing components count as zero, so "1.0" equals "1.0.0". A
// component that isn't a number compares as zero.
func CompareVersions(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}

	for i := 0; i < n; i++ {
		av := versionComponent(as, i)
		bv := versionComponent(bs, i)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}

func versionComponent(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	v, err := strconv.Atoi(parts[i])
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ValidVersion reports whether v is a non-empty dotted numeric version.
func ValidVersion(v string) bool {
	if v == "" {
		return false
	}
	for _, p := range strings.Split(v, ".") {
		if p == "" {
			return false
		}
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}

// VersionCompatible reports whether a client built against clientVersion,
// and able to talk to hosts down to clientMin, can be driven by this host.
func VersionCompatible(clientVersion, clientMin string) bool {
	if !ValidVersion(clientVersion) || !ValidVersion(clientMin) {
		return false
	}
	return CompareVersions(clientVersion, MinAPIVersion) >= 0 &&
		CompareVersions(clientMin, APIVersion) <= 0
}
