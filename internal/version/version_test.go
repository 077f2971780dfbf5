package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "1.2.0",
		GitCommit: "0123456789abcdef",
		BuildTime: "2024-03-01T10:20:30Z",
		GoVersion: "go1.25.0",
		Platform:  "linux",
		Arch:      "amd64",
	}
	assert.Equal(t, "sim6502 version 1.2.0 (commit 0123456) built on 2024-03-01 10:20:30 with go1.25.0 for linux/amd64", info.String())

	info.Modified = true
	info.BuildTime = "yesterday"
	assert.Equal(t, "sim6502 version 1.2.0 (commit 0123456, modified) built on yesterday with go1.25.0 for linux/amd64", info.String())

	info.GitCommit = "unknown"
	info.BuildTime = "unknown"
	assert.Equal(t, "sim6502 version 1.2.0 with go1.25.0 for linux/amd64", info.String())
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "abc", BuildInfo{GitCommit: "abc"}.ShortCommit())
	assert.Equal(t, "abcdef0", BuildInfo{GitCommit: "abcdef0123"}.ShortCommit())
}

func TestGetVersion(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()

	Version = "2.0.1"
	assert.Equal(t, "2.0.1", GetVersion())
	assert.True(t, strings.HasPrefix(GetDetailedVersion(), "sim6502 version 2.0.1"))

	Version = "dev"
	assert.True(t, strings.HasPrefix(GetVersion(), "dev"))
}

func TestWriteBuildInfo(t *testing.T) {
	var buf bytes.Buffer
	WriteBuildInfo(&buf)

	out := buf.String()
	assert.Contains(t, out, "sim6502 - MOS 6502 emulator")
	assert.Contains(t, out, "Go Version:")
	assert.Equal(t, 6, strings.Count(out, "\n"))
}
