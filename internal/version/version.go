// Package version holds build information for ui-smoke. The variables are
// set with -ldflags "-X github.com/gotrs-io/ui-smoke/internal/version.Version=...".
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const playwrightModule = "github.com/playwright-community/playwright-go"

// Info is the structured build information printed by "ui-smoke version".
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	Playwright string `json:"playwright"`
}

func GetInfo() Info {
	return Info{
		Version:    Version,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Playwright: playwrightVersion(),
	}
}

// playwrightVersion reports the linked playwright-go module version, which
// pins the driver and browser builds that "install" downloads.
func playwrightVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == playwrightModule {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return "unknown"
}

// String returns "v0.3.0 (abc1234)".
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

// Full adds the build date, Go and playwright-go versions.
func Full() string {
	i := GetInfo()
	return fmt.Sprintf("%s (%s) built %s with %s, playwright-go %s", i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Playwright)
}
