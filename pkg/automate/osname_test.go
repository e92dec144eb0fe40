package automate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Microsoft Windows 11 Enterprise x64", "Windows 11"},
		{"Microsoft Windows 10 Pro x64", "Windows 10"},
		{"Microsoft Windows Server 2022 Datacenter", "Windows Server 2022"},
		{"Microsoft Windows Server 2019 Standard", "Windows Server 2019"},
		{"Microsoft Windows Server 2016 Standard", "Windows Server 2016"},
		{"Microsoft Windows Server 2012 R2 Standard", "Windows Server 2012"},
		{"Microsoft Windows Server 2008 R2 Standard", "Windows Server (other)"},
		{"Microsoft Windows 7 Professional", "Windows (other)"},
		{"macOS 14.4 Sonoma", "macOS"},
		{"Mac OS X 10.15.7", "macOS"},
		{"Ubuntu 22.04.1 LTS", "Linux"},
		{"Red Hat Enterprise Linux 9", "Linux"},
		{"CentOS 7", "Linux"},
		{"", "Unknown"},
		{"   ", "Unknown"},
		{"FreeBSD 13.2", "FreeBSD 13.2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOS(tt.in))
		})
	}
}
