package config

import "fmt"

// Injected at build time, e.g.
//
//	go build -ldflags "-X github/chapool/go-batchpay/internal/config.Commit=$(git rev-parse HEAD)"
var (
	ModuleName = "build.local/misses/ldflags"
	Commit     = "< 40 chars git commit hash via ldflags >"
	BuildDate  = "1970-01-01T00:00:00+00:00"
)

// GetFormattedBuildArgs returns string representation of buildsargs set via ldflags "<ModuleName> @ <Commit> (<BuildDate>)"
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
