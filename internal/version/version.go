// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/archivist/internal/version.Version=...
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent identifies archivist in outbound HTTP calls.
func UserAgent() string {
	return "archivist/" + Version
}
