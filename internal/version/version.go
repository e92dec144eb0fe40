package version

// Version is the current version, overridden at build time with
// -ldflags "-X github.com/cwa-tools/cwa-inventory/internal/version.Version=...".
var Version = "0.1.0-dev"

// GitCommit is set at build time.
var GitCommit = ""

// String returns the version with the commit appended when known.
func String() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
