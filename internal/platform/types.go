// Package platform resolves which page platform to search first.
//
// Pages are grouped by the operating system they document. The host OS is
// detected from the Go runtime, refined with gopsutil host information, and
// mapped onto the platform directories used by the page archives. "common"
// holds pages that apply everywhere and is always searched after the specific
// platform.
package platform

import (
	"context"
	"fmt"
	"strings"
)

// Platform is a page platform directory name.
type Platform string

const (
	Common  Platform = "common"
	Linux   Platform = "linux"
	OSX     Platform = "osx"
	Windows Platform = "windows"
	Android Platform = "android"
	FreeBSD Platform = "freebsd"
	NetBSD  Platform = "netbsd"
	OpenBSD Platform = "openbsd"
	SunOS   Platform = "sunos"
)

// All lists the known platforms. Common is first.
var All = []Platform{Common, Linux, OSX, Windows, Android, FreeBSD, NetBSD, OpenBSD, SunOS}

// aliases maps alternative spellings accepted on the command line.
var aliases = map[string]Platform{
	"macos":   OSX,
	"darwin":  OSX,
	"solaris": SunOS,
}

// String returns the directory name of the platform.
func (p Platform) String() string {
	return string(p)
}

// IsCommon reports whether p is the universal fallback bucket.
func (p Platform) IsCommon() bool {
	return p == Common
}

// Parse validates a platform name. Matching is case-insensitive and accepts
// a few aliases such as "macos".
func Parse(s string) (Platform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := aliases[name]; ok {
		return alias, nil
	}
	for _, p := range All {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (possible values: %s)", s, Names())
}

// Names returns the known platform names joined for display.
func Names() string {
	names := make([]string, len(All))
	for i, p := range All {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Info contains host detection results.
type Info struct {
	OS       string   // "linux", "darwin", "windows", ...
	Arch     string   // GOARCH
	Platform Platform // page platform the OS maps to
	Distro   string   // distro ID (Linux only, e.g. "ubuntu")
	Family   string   // canonical distro family (e.g. "debian")
	Version  string   // distro or OS version
}

// IsLinux returns true if the host is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the host is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the host is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// Detector is the interface for host platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// Resolve returns the platform to search first: the explicit override when
// one is given, otherwise the detected host platform.
func Resolve(ctx context.Context, override string, detector Detector) (Platform, error) {
	if override != "" {
		return Parse(override)
	}

	if detector == nil {
		detector = NewDetector()
	}

	info, err := detector.Detect(ctx)
	if err != nil {
		return "", fmt.Errorf("detect platform: %w", err)
	}
	if info == nil || info.Platform == "" {
		return Common, nil
	}
	return info.Platform, nil
}
