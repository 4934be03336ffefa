// SPDX-License-Identifier: MPL-2.0

package ovf_test

import (
	"fmt"
	"strings"
)

// envelopeXML renders a minimal OVF 1.x envelope. files and disks are raw
// element bodies placed in References and DiskSection; a nil networks slice
// omits the NetworkSection entirely.
func envelopeXML(files, disks, networks []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1"
          xmlns:ovf="http://schemas.dmtf.org/ovf/envelope/1"
          xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <References>
`)
	for _, f := range files {
		fmt.Fprintf(&b, "    %s\n", f)
	}
	b.WriteString("  </References>\n  <DiskSection>\n    <Info>Virtual disk information</Info>\n")
	for _, d := range disks {
		fmt.Fprintf(&b, "    %s\n", d)
	}
	b.WriteString("  </DiskSection>\n")
	if networks != nil {
		b.WriteString("  <NetworkSection>\n    <Info>The list of logical networks</Info>\n")
		for _, n := range networks {
			fmt.Fprintf(&b, "    %s\n", n)
		}
		b.WriteString("  </NetworkSection>\n")
	}
	b.WriteString("</Envelope>\n")
	return b.String()
}

const (
	vmdkFormat = "http://www.vmware.com/interfaces/specifications/vmdk.html#streamOptimized"

	fileDisk1 = `<File ovf:id="file1" ovf:href="disk1.vmdk" ovf:size="1024"/>`
	diskOne   = `<Disk ovf:diskId="vmdisk1" ovf:fileRef="file1" ovf:capacity="10" ovf:capacityAllocationUnits="byte * 2^20" ovf:format="` + vmdkFormat + `"/>`
)
