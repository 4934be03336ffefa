// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"github.com/ovfconv/ovfconv/internal/integrity"
	"github.com/ovfconv/ovfconv/pkg/diag"
	"github.com/ovfconv/ovfconv/pkg/ovf"
	"github.com/ovfconv/ovfconv/pkg/types"
)

// Package is the resolved view of one OVF package. It is built once per
// Resolve call and not modified afterwards.
type Package struct {
	EnvelopePath types.FilesystemPath
	// Files lists every declared file in document order.
	Files    []ovf.FileReference
	Disk     ovf.DiskDescriptor
	Networks []ovf.NetworkDescriptor
	// Integrity is nil when verification was not requested.
	Integrity *integrity.Report
	// Diagnostics holds the non-fatal findings of this pass.
	Diagnostics []diag.Diagnostic
}

// File returns the FileReference with the given id.
func (p *Package) File(id string) (ovf.FileReference, bool) {
	for _, f := range p.Files {
		if f.ID == id {
			return f, true
		}
	}
	return ovf.FileReference{}, false
}

// DiskFile returns the file backing the package's disk.
func (p *Package) DiskFile() ovf.FileReference {
	f, _ := p.File(p.Disk.FileRef)
	return f
}

// ImageSizeMiB is the disk capacity in whole mebibytes, the unit image
// provisioning metadata expects.
func (p *Package) ImageSizeMiB() uint64 {
	return p.Disk.CapacityBytes.MiBFloor()
}

// IntegrityOK reports whether verification passed or was not run.
func (p *Package) IntegrityOK() bool {
	return p.Integrity == nil || p.Integrity.OK()
}
