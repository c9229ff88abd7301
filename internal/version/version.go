// Package version holds build-time information for the binrep CLI, set via
// linker flags at build time:
//
//	go build -ldflags '-X github.com/binrep/binrep/internal/version.version=v1.2.3'
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
)

var (
	version   = "dev"
	gitCommit = ""
	buildDate = "1970-01-01T00:00:00Z"
)

// Info is the structured build information reported by `binrep version`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current process's build information.
func Get() Info {
	return Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Write renders Info to w as text, or as indented JSON when json is true.
func Write(w io.Writer, info Info, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	_, err := fmt.Fprintf(w, "binrep %s (%s, built %s, %s)\n", info.Version, info.GitCommit, info.BuildDate, info.Platform)
	return err
}
