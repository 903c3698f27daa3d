package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version and GitCommit are set via ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func GetModuleBuildInfo() (string, string, bool) {
	if Version != "dev" {
		return Version, GitCommit, true
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}

	gitCommit := GitCommit
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			gitCommit = setting.Value
			break
		}
	}
	return info.Main.Version, gitCommit, true
}

func GetVersion() string {
	version, gitCommit, ok := GetModuleBuildInfo()
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s (git: %s)", version, gitCommit)
}

// GetUserAgent is sent with every API request.
func GetUserAgent() string {
	version, _, ok := GetModuleBuildInfo()
	if !ok || len(version) == 0 {
		version = Version
	}
	return fmt.Sprintf("westmarch/%s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}
