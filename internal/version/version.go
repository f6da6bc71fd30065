package version

// Set via ldflags during build:
// -X github.com/bryanwahyu/audit-compliance/internal/version.Version=...
// -X github.com/bryanwahyu/audit-compliance/internal/version.Build=...
var (
	Version = "0.1.0"
	Build   = "dev"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version + "-" + Build
}
