package config

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/tokencrypt-go/internal/config.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns build metadata
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("tokencrypt %s (commit %s, built %s, %s %s)",
		v.Version, v.GitCommit, v.BuildDate, v.GoVersion, v.Platform)
}
