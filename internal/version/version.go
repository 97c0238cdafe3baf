// Package version exposes build metadata set via -ldflags and the embedded
// Go build info.
package version

import (
	"fmt"
	"runtime/debug"
)

const AppName = "gzassets"

// set with -ldflags "-X github.com/keithlinneman/gzassets/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate string
)

type Info struct {
	AppName    string `json:"app"`
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	CommitDate string `json:"commit_date"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	VCSDirty   *bool  `json:"vcs_dirty,omitempty"`
}

func Get() Info {
	out := Info{
		AppName:   AppName,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	out.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if out.Commit == "none" && s.Value != "" {
				out.Commit = s.Value
			}
		case "vcs.time":
			out.CommitDate = s.Value
			if out.BuildDate == "" {
				out.BuildDate = s.Value
			}
		case "vcs.modified":
			dirty := s.Value == "true"
			out.VCSDirty = &dirty
		}
	}
	return out
}

// String renders a one-line summary for -V output
func (i Info) String() string {
	dirty := false
	if i.VCSDirty != nil {
		dirty = *i.VCSDirty
	}
	return fmt.Sprintf("%s %s (commit=%s, commit_date=%s, build_date=%s, go=%s, dirty=%v)",
		i.AppName, i.Version, i.Commit, i.CommitDate, i.BuildDate, i.GoVersion, dirty)
}
