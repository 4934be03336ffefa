// SPDX-License-Identifier: MPL-2.0

package ovf

import "strings"

// FormatVMDK is the tag for disks in VMware's VMDK format.
const FormatVMDK DiskFormat = "vmdk"

// DiskFormat is the canonical tag of a disk image format. The zero value
// means the format URL was not recognized.
type DiskFormat string

// formatMarkers maps a case-insensitive substring of an OVF disk format URL
// to its canonical tag. VMware and VirtualBox both publish format URLs of the
// form ".../vmdk.html#streamOptimized".
var formatMarkers = []struct {
	marker string
	format DiskFormat
}{
	{"vmdk.html", FormatVMDK},
}

// ParseDiskFormat maps an ovf:format URL to a canonical tag, or "" when the
// URL is not recognized.
func ParseDiskFormat(url string) DiskFormat {
	lower := strings.ToLower(url)
	for _, m := range formatMarkers {
		if strings.Contains(lower, m.marker) {
			return m.format
		}
	}
	return ""
}

// IsKnown reports whether the format was recognized.
func (f DiskFormat) IsKnown() bool { return f != "" }

// String returns the tag, or "unknown" for the zero value.
func (f DiskFormat) String() string {
	if f == "" {
		return "unknown"
	}
	return string(f)
}
