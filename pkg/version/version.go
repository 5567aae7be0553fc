// Package version reports build information, set through ldflags or read
// from the embedded module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version   string // Set via ldflags.
	BuildDate string // Set via ldflags.

	Revision  = getRevision()
	GoVersion = runtime.Version()
	GoOS      = runtime.GOOS
	GoArch    = runtime.GOARCH
)

// GetVersion returns [Version], or the VCS revision for untagged builds.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	return Revision
}

// String describes the build on one line, e.g.
// "v1.2.0 (abc1234) go1.25.5 linux/amd64 2025-01-02".
func String() string {
	var b strings.Builder

	b.WriteString(GetVersion())

	if Version != "" && Revision != "unknown" {
		fmt.Fprintf(&b, " (%s)", Revision)
	}

	fmt.Fprintf(&b, " %s %s/%s", GoVersion, GoOS, GoArch)

	if BuildDate != "" {
		b.WriteString(" " + BuildDate)
	}

	return b.String()
}

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
			if len(rev) > 7 {
				rev = rev[:7]
			}

		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
