// Package version provides build information for sim6502
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

var (
	// These will be set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
	Modified  bool   `json:"modified"`
}

// GetBuildInfo merges the -ldflags values with the VCS settings the Go
// toolchain embeds
func GetBuildInfo() BuildInfo {
	buildInfo := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if GitCommit == "unknown" {
					buildInfo.GitCommit = setting.Value
				}
			case "vcs.time":
				if BuildTime == "unknown" {
					buildInfo.BuildTime = setting.Value
				}
			case "vcs.modified":
				buildInfo.Modified = setting.Value == "true"
			}
		}
	}

	return buildInfo
}

// ShortCommit returns the first seven characters of the commit hash
func (b BuildInfo) ShortCommit() string {
	if len(b.GitCommit) > 7 {
		return b.GitCommit[:7]
	}
	return b.GitCommit
}

// String renders the one-line version banner
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "sim6502 version %s", b.Version)

	if b.GitCommit != "unknown" {
		fmt.Fprintf(&sb, " (commit %s", b.ShortCommit())
		if b.Modified {
			sb.WriteString(", modified")
		}
		sb.WriteString(")")
	}

	if b.BuildTime != "unknown" {
		if parsed, err := time.Parse(time.RFC3339, b.BuildTime); err == nil {
			fmt.Fprintf(&sb, " built on %s", parsed.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Fprintf(&sb, " built on %s", b.BuildTime)
		}
	}

	fmt.Fprintf(&sb, " with %s for %s/%s", b.GoVersion, b.Platform, b.Arch)
	return sb.String()
}

// GetVersion returns a simple version string
func GetVersion() string {
	if Version == "dev" {
		if commit := GetBuildInfo().ShortCommit(); commit != "unknown" && len(commit) == 7 {
			return fmt.Sprintf("dev-%s", commit)
		}
	}
	return Version
}

// GetDetailedVersion returns a detailed version string
func GetDetailedVersion() string {
	return GetBuildInfo().String()
}

// WriteBuildInfo prints formatted build information
func WriteBuildInfo(w io.Writer) {
	b := GetBuildInfo()

	fmt.Fprintf(w, "sim6502 - MOS 6502 emulator\n")
	fmt.Fprintf(w, "Version:     %s\n", b.Version)
	fmt.Fprintf(w, "Git Commit:  %s\n", b.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", b.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", b.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", b.Platform, b.Arch)
}
