// Package version reports build metadata, set at link time:
//
//	go build -ldflags "-X github.com/tomz197/bolas/internal/version.Version=v1.2.0 \
//	  -X github.com/tomz197/bolas/internal/version.GitRevision=$(git rev-parse HEAD) \
//	  -X github.com/tomz197/bolas/internal/version.BuildTimestamp=$(date -u +%FT%TZ)"
package version

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
)

var (
	Version        = "dev"
	GitRevision    = ""
	BuildTimestamp = ""
)

// Info is the body served by Handler.
type Info struct {
	Version        string `json:"version"`
	GitRevision    string `json:"git_revision"`
	BuildTimestamp string `json:"build_timestamp"`
	GoVersion      string `json:"go_version"`
}

// Get returns the build metadata, falling back to the VCS stamp embedded by the Go toolchain.
func Get() Info {
	info := Info{Version: Version, GitRevision: GitRevision, BuildTimestamp: BuildTimestamp}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitRevision == "" {
				info.GitRevision = s.Value
			}
		case "vcs.time":
			if info.BuildTimestamp == "" {
				info.BuildTimestamp = s.Value
			}
		}
	}
	return info
}

// Handler serves Get as JSON.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Get())
	})
}
