package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

type build struct {
	version, commit, branch, time, goVersion string
}

// setBuild overrides the ldflags variables for the rest of the test.
func setBuild(t *testing.T, b build) {
	t.Helper()
	prev := build{Version, GitCommit, GitBranch, BuildTime, GoVersion}
	Version, GitCommit, GitBranch, BuildTime, GoVersion = b.version, b.commit, b.branch, b.time, b.goVersion
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime, GoVersion = prev.version, prev.commit, prev.branch, prev.time, prev.goVersion
	})
}

func TestGetVersionInfo(t *testing.T) {
	setBuild(t, build{"1.2.0", "abc1234", "main", "2025-03-01T08:00:00Z", "go1.26.0"})

	info := GetVersionInfo()
	if !info.IsRelease || info.GitCommit != "abc1234" || info.GoVersion != "go1.26.0" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.BuildDate.Year() != 2025 || info.BuildDate.Month() != 3 {
		t.Errorf("build time not parsed: %s", info.BuildDate)
	}
}

func TestGetVersionInfo_Unreleased(t *testing.T) {
	for _, v := range []string{"dev", "1.2.0-dirty"} {
		setBuild(t, build{version: v})
		info := GetVersionInfo()
		if info.IsRelease {
			t.Errorf("%q reported as release", v)
		}
		if info.BuildDate.IsZero() {
			t.Errorf("%q: expected a fallback build date", v)
		}
	}
}

func TestApplyBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "fedcba9876543210"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-06-30T12:00:00Z"},
		},
	}

	info := &Info{Version: "dev"}
	applyBuildInfo(info, bi)
	if info.GitCommit != "fedcba9" || !info.IsDirty || info.GoVersion != "go1.26.0" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.BuildTime != "2025-06-30T12:00:00Z" {
		t.Errorf("vcs.time not applied: %q", info.BuildTime)
	}

	pinned := &Info{GitCommit: "abc1234", BuildTime: "2024-01-01T00:00:00Z", GoVersion: "go1.25"}
	applyBuildInfo(pinned, bi)
	if pinned.GitCommit != "abc1234" || pinned.BuildTime != "2024-01-01T00:00:00Z" || pinned.GoVersion != "go1.25" {
		t.Errorf("ldflags values should win: %+v", pinned)
	}
}

func TestVersionStrings(t *testing.T) {
	tests := []struct {
		name      string
		build     build
		short     string
		fullHas   []string
		fullLacks []string
	}{
		{
			name:    "dev",
			build:   build{version: "dev"},
			short:   "dev",
			fullHas: []string{"dev (built "},
		},
		{
			name:      "release on main",
			build:     build{"1.2.0", "abc1234", "main", "2025-03-01T08:00:00Z", ""},
			short:     "1.2.0-abc1234",
			fullHas:   []string{"1.2.0-abc1234", "built 2025-03-01"},
			fullLacks: []string{"main"},
		},
		{
			name:    "feature branch",
			build:   build{"1.2.0", "abc1234", "proxy-auth", "2025-03-01T08:00:00Z", ""},
			short:   "1.2.0-abc1234",
			fullHas: []string{"1.2.0-abc1234-proxy-auth"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBuild(t, tc.build)
			if got := GetShortVersion(); got != tc.short {
				t.Errorf("short: got %q, want %q", got, tc.short)
			}
			full := GetFullVersion()
			for _, s := range tc.fullHas {
				if !strings.Contains(full, s) {
					t.Errorf("full %q missing %q", full, s)
				}
			}
			for _, s := range tc.fullLacks {
				if strings.Contains(full, s) {
					t.Errorf("full %q should not contain %q", full, s)
				}
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	setBuild(t, build{version: "1.4.0", commit: "abc1234"})
	if ua := UserAgent(); ua != "httpkit/1.4.0-abc1234" {
		t.Errorf("unexpected user agent %q", ua)
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("got %q", got)
	}
}
