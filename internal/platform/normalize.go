package platform

import (
	"strings"
)

// Linux distribution family constants exposed to configs.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyGentoo  = "gentoo"
	FamilyUnknown = "unknown"
)

// familyMap maps gopsutil family strings to canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// goosMap maps GOOS values to page platforms.
var goosMap = map[string]Platform{
	"linux":   Linux,
	"darwin":  OSX,
	"ios":     OSX,
	"windows": Windows,
	"android": Android,
	"freebsd": FreeBSD,
	"netbsd":  NetBSD,
	"openbsd": OpenBSD,
	"solaris": SunOS,
	"illumos": SunOS,
}

// fromGOOS maps an OS name to a page platform. Unknown systems fall back to
// Common.
func fromGOOS(goos string) Platform {
	if p, ok := goosMap[normalizeName(goos)]; ok {
		return p
	}
	return Common
}

// normalizeName lowercases and trims detection output.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := normalizeName(family)
	if normalized == "" {
		return ""
	}
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
