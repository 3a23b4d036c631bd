// Package build describes the running binary: its version and the commit it
// was built from. Release builds inject Embedded via -ldflags; other builds
// fall back to what the Go toolchain records in the binary.
package build

import (
	"encoding/json"
	"runtime/debug"

	"github.com/amp-labs/mealy/logger"
)

// Embedded holds build info as JSON, set at link time with
//
//	-ldflags "-X github.com/amp-labs/mealy/build.Embedded=$(cat build.json)"
var Embedded string //nolint:gochecknoglobals

// Info contains build metadata.
type Info struct {
	Version      string            `json:"version"                yaml:"version"`
	GitCommit    string            `json:"gitCommit,omitempty"    yaml:"gitCommit,omitempty"`
	GitDate      string            `json:"gitDate,omitempty"      yaml:"gitDate,omitempty"`
	Modified     bool              `json:"modified,omitempty"     yaml:"modified,omitempty"`
	BuildTime    string            `json:"buildTime,omitempty"    yaml:"buildTime,omitempty"`
	GoVersion    string            `json:"goVersion"              yaml:"goVersion"`
	Dependencies map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Parse deserializes a JSON string into build Info.
// Returns (nil, false) if the input is empty, "{}", or fails to parse.
func Parse(js string) (*Info, bool) {
	if len(js) == 0 {
		return nil, false
	}

	if js == "{}" {
		return nil, false
	}

	var info Info

	err := json.Unmarshal([]byte(js), &info)
	if err != nil {
		logger.Get().Warn("Failed to parse build info from JSON",
			"data", js,
			"error", err)

		return nil, false
	}

	return &info, true
}

// FromBuildInfo converts the toolchain's build info. A nil bi yields an
// Info with an unknown version.
func FromBuildInfo(bi *debug.BuildInfo) *Info {
	info := &Info{Version: "(devel)"}

	if bi == nil {
		return info
	}

	if bi.Main.Version != "" {
		info.Version = bi.Main.Version
	}

	info.GoVersion = bi.GoVersion

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.GitCommit = setting.Value
		case "vcs.time":
			info.GitDate = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}

	if len(bi.Deps) > 0 {
		info.Dependencies = make(map[string]string, len(bi.Deps))

		for _, dep := range bi.Deps {
			info.Dependencies[dep.Path] = dep.Version
		}
	}

	return info
}

// Current returns the embedded build info if there is any, otherwise the
// info recorded by the toolchain.
func Current() *Info {
	if info, ok := Parse(Embedded); ok {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return FromBuildInfo(nil)
	}

	return FromBuildInfo(bi)
}
