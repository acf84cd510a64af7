package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build metadata. The release build overrides these with
// -ldflags "-X penyusutan/pkg/contracts.Version=...".
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	// DataFormatVersion tags the layout of the cleaned table in exports.
	DataFormatVersion = "v1"
	APIVersion        = "v1"
)

// VersionInfo is the build description served by /api/version and printed
// by the CLI.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo falls back to the VCS stamp embedded by the go tool when
// the commit or build time were not set at link time.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == "unknown":
			info.GitCommit = shortCommit(s.Value)
		case s.Key == "vcs.time" && info.BuildTime == "unknown":
			info.BuildTime = s.Value
		}
	}
	return info
}

func shortCommit(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// GetVersionString is the one-line product name and version.
func GetVersionString() string {
	return "Penyusutan Dashboard v" + Version
}

func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (commit %s, built %s, %s %s/%s, data format %s)",
		GetVersionString(), info.GitCommit, info.BuildTime,
		info.GoVersion, info.OS, info.Architecture, info.DataFormat)
}
