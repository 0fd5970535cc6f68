package main

import (
	"runtime/debug"

	"github.com/marcus/storefront/cmd"
)

// Version is injected with -ldflags "-X main.Version=v1.2.3". Unstamped
// builds fall back to module or VCS info.
var Version = "dev"

func buildVersion(stamped string, info *debug.BuildInfo) string {
	if stamped != "" && stamped != "dev" {
		return stamped
	}
	if info == nil {
		return stamped
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	vcs := map[string]string{}
	for _, s := range info.Settings {
		vcs[s.Key] = s.Value
	}
	rev := vcs["vcs.revision"]
	if rev == "" {
		return stamped
	}
	v := "devel+" + rev[:min(len(rev), 12)]
	if vcs["vcs.modified"] == "true" {
		v += "+dirty"
	}
	return v
}

func main() {
	info, _ := debug.ReadBuildInfo()
	cmd.SetVersion(buildVersion(Version, info))
	cmd.Execute()
}
