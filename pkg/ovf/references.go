// SPDX-License-Identifier: MPL-2.0

package ovf

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ovfconv/ovfconv/pkg/diag"
	"github.com/ovfconv/ovfconv/pkg/fspath"
	"github.com/ovfconv/ovfconv/pkg/types"
)

// DefaultOutputExt is the canonical extension of converted images.
const DefaultOutputExt = ".zfs.bz2"

// hrefSchemePattern matches a URI scheme prefix such as "http://".
var hrefSchemePattern = regexp.MustCompile(`^(\w+)://`)

type (
	// FileReference is a backing file declared in the envelope's References.
	FileReference struct {
		ID        string
		SizeBytes types.ByteCount
		Href      string
		// SourcePath is the backing file on disk, under the envelope directory.
		SourcePath types.FilesystemPath
		// OutputPath is where the converted image goes: Href with its extension
		// replaced, under the output directory.
		OutputPath types.FilesystemPath
	}

	// DiskDescriptor is the package's virtual disk.
	DiskDescriptor struct {
		DiskID        string
		CapacityBytes types.ByteCount
		Format        DiskFormat
		// RawFormat is the ovf:format URL exactly as declared.
		RawFormat string
		// FileRef is the ID of the backing FileReference.
		FileRef string
	}

	// ResolveOptions controls where paths resolve.
	ResolveOptions struct {
		// EnvelopeDir is the directory containing the envelope; hrefs resolve
		// under it.
		EnvelopeDir types.FilesystemPath
		// OutputDir receives converted images. Defaults to ".".
		OutputDir types.FilesystemPath
		// OutputExt replaces each href's extension. Defaults to DefaultOutputExt.
		OutputExt string
	}

	// References is the result of ResolveReferences.
	References struct {
		// Files lists every declared file in document order.
		Files []FileReference
		// Disk is the package's single disk.
		Disk DiskDescriptor
	}
)

// File returns the FileReference with the given id.
func (r *References) File(id string) (FileReference, bool) {
	for _, f := range r.Files {
		if f.ID == id {
			return f, true
		}
	}
	return FileReference{}, false
}

// DiskFile returns the FileReference backing the disk. It always succeeds on
// a References value built by ResolveReferences.
func (r *References) DiskFile() FileReference {
	f, _ := r.File(r.Disk.FileRef)
	return f
}

// ResolveReferences builds the file and disk descriptors from env. Warnings
// for unparsed allocation units, unrecognized formats, and hrefs that try to
// leave the envelope directory go to sink; everything else that prevents a
// usable result is returned as an error wrapping ErrResolution.
func ResolveReferences(env *Envelope, opts ResolveOptions, sink diag.Sink) (*References, error) {
	if sink == nil {
		sink = diag.Discard
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.OutputExt == "" {
		opts.OutputExt = DefaultOutputExt
	}
	if opts.EnvelopeDir == "" {
		opts.EnvelopeDir = "."
	}

	files, err := resolveFiles(env.References.ChildrenNamed("File"), opts, sink)
	if err != nil {
		return nil, err
	}

	disks := env.DiskSection.ChildrenNamed("Disk")
	if len(disks) != 1 {
		return nil, &UnsupportedConfigurationError{DiskCount: len(disks)}
	}

	disk, err := resolveDisk(disks[0], sink)
	if err != nil {
		return nil, err
	}

	refs := &References{Files: files, Disk: disk}
	if _, ok := refs.File(disk.FileRef); !ok {
		return nil, &MissingFileReferenceError{DiskID: disk.DiskID, FileRef: disk.FileRef}
	}
	return refs, nil
}

func resolveFiles(nodes []*Node, opts ResolveOptions, sink diag.Sink) ([]FileReference, error) {
	files := make([]FileReference, 0, len(nodes))
	seen := make(map[string]struct{}, len(nodes))

	for _, n := range nodes {
		id, ok := n.Attr("id")
		if !ok || id == "" {
			return nil, &InvalidAttributeError{Element: "File", Attribute: "ovf:id", Reason: "required"}
		}
		if _, dup := seen[id]; dup {
			return nil, &InvalidAttributeError{Element: "File", ID: id, Attribute: "ovf:id", Value: id, Reason: "duplicate file id"}
		}
		seen[id] = struct{}{}

		href, _ := n.Attr("href")
		if href == "" {
			return nil, &InvalidAttributeError{Element: "File", ID: id, Attribute: "ovf:href", Reason: "required"}
		}
		if m := hrefSchemePattern.FindStringSubmatch(href); m != nil {
			return nil, &UnsupportedReferenceError{FileID: id, Href: href, Scheme: m[1]}
		}
		if !fspath.IsLocal(href) {
			diag.Warn(sink, diag.CodeHrefNotLocal,
				fmt.Sprintf("file %q href %q points outside the envelope directory; confining it", id, href),
				href, nil)
		}

		var size uint64
		if raw, ok := n.Attr("size"); ok && raw != "" {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, &InvalidAttributeError{Element: "File", ID: id, Attribute: "ovf:size", Value: raw, Reason: "not a non-negative integer"}
			}
			size = v
		}

		source, err := fspath.ConfinedJoin(opts.EnvelopeDir, href)
		if err != nil {
			return nil, &InvalidAttributeError{Element: "File", ID: id, Attribute: "ovf:href", Value: href, Reason: err.Error()}
		}
		output, err := fspath.ConfinedJoin(opts.OutputDir, string(fspath.ReplaceExt(types.FilesystemPath(href), opts.OutputExt)))
		if err != nil {
			return nil, &InvalidAttributeError{Element: "File", ID: id, Attribute: "ovf:href", Value: href, Reason: err.Error()}
		}

		files = append(files, FileReference{
			ID:         id,
			SizeBytes:  types.ByteCount(size),
			Href:       href,
			SourcePath: source,
			OutputPath: output,
		})
	}

	return files, nil
}

func resolveDisk(n *Node, sink diag.Sink) (DiskDescriptor, error) {
	id, ok := n.Attr("diskId")
	if !ok || id == "" {
		return DiskDescriptor{}, &InvalidAttributeError{Element: "Disk", Attribute: "ovf:diskId", Reason: "required"}
	}

	fileRef, _ := n.Attr("fileRef")
	if fileRef == "" {
		return DiskDescriptor{}, &InvalidAttributeError{Element: "Disk", ID: id, Attribute: "ovf:fileRef", Reason: "required"}
	}

	rawCapacity, _ := n.Attr("capacity")
	if rawCapacity == "" {
		return DiskDescriptor{}, &InvalidAttributeError{Element: "Disk", ID: id, Attribute: "ovf:capacity", Reason: "required"}
	}
	capacity, err := strconv.ParseUint(rawCapacity, 10, 64)
	if err != nil {
		return DiskDescriptor{}, &InvalidAttributeError{Element: "Disk", ID: id, Attribute: "ovf:capacity", Value: rawCapacity, Reason: "not a non-negative integer"}
	}

	units, _ := n.Attr("capacityAllocationUnits")
	capacity, warning := NormalizeCapacity(capacity, units)
	if warning != nil {
		diag.Warn(sink, diag.CodeCapacityUnitsUnparsed,
			fmt.Sprintf("disk %q: %s", id, warning.Error()), "", warning)
	}

	rawFormat, _ := n.Attr("format")
	format := ParseDiskFormat(rawFormat)
	if !format.IsKnown() {
		diag.Warn(sink, diag.CodeDiskFormatUnrecognized,
			fmt.Sprintf("disk %q: unrecognized format %q", id, rawFormat), "", nil)
	}

	return DiskDescriptor{
		DiskID:        id,
		CapacityBytes: types.ByteCount(capacity),
		Format:        format,
		RawFormat:     rawFormat,
		FileRef:       fileRef,
	}, nil
}
