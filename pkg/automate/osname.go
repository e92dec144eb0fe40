package automate

import "strings"

// UnknownOS is the label for computers that report no operating system.
const UnknownOS = "Unknown"

type osPattern struct {
	label    string
	contains []string
}

// osPatterns are checked in order; the first match wins, so specific
// versions come before the generic families.
var osPatterns = []osPattern{
	{"Windows 11", []string{"windows 11"}},
	{"Windows 10", []string{"windows 10"}},
	{"Windows Server 2022", []string{"server 2022"}},
	{"Windows Server 2019", []string{"server 2019"}},
	{"Windows Server 2016", []string{"server 2016"}},
	{"Windows Server 2012", []string{"server 2012"}},
	{"Windows Server (other)", []string{"windows server"}},
	{"Windows (other)", []string{"windows"}},
	{"macOS", []string{"macos", "mac os", "os x", "darwin"}},
	{"Linux", []string{"linux", "ubuntu", "debian", "centos", "red hat", "rhel", "fedora", "suse", "rocky", "alma"}},
}

// NormalizeOS maps a raw operating system name to a canonical label.
// Unrecognized names are returned unchanged.
func NormalizeOS(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnknownOS
	}

	lower := strings.ToLower(name)
	for _, p := range osPatterns {
		for _, s := range p.contains {
			if strings.Contains(lower, s) {
				return p.label
			}
		}
	}
	return name
}
