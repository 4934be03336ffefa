// SPDX-License-Identifier: MPL-2.0

package handoff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ovfconv/ovfconv/internal/integrity"
	"github.com/ovfconv/ovfconv/internal/resolve"
)

// Supported plan encodings.
const (
	PlanJSON PlanFormat = "json"
	PlanTOML PlanFormat = "toml"
)

// ErrUnknownPlanFormat is returned for an encoding other than json or toml.
var ErrUnknownPlanFormat = errors.New("unknown plan format")

type (
	// PlanFormat selects the encoding used by WritePlan.
	PlanFormat string

	// Plan is the serializable view of a resolved package, consumed by the
	// provisioning-metadata writer.
	Plan struct {
		Envelope    string           `json:"envelope" toml:"envelope"`
		Disk        PlanDisk         `json:"disk" toml:"disk"`
		Files       []PlanFile       `json:"files" toml:"files"`
		Networks    []PlanNetwork    `json:"networks" toml:"networks"`
		Integrity   *PlanIntegrity   `json:"integrity,omitempty" toml:"integrity,omitempty"`
		Diagnostics []PlanDiagnostic `json:"diagnostics,omitempty" toml:"diagnostics,omitempty"`
	}

	// PlanDisk describes the package's disk and its conversion target.
	PlanDisk struct {
		ID            string `json:"id" toml:"id"`
		Format        string `json:"format" toml:"format"`
		FormatURL     string `json:"format_url" toml:"format_url"`
		CapacityBytes uint64 `json:"capacity_bytes" toml:"capacity_bytes"`
		ImageSizeMiB  uint64 `json:"image_size_mib" toml:"image_size_mib"`
		FileRef       string `json:"file_ref" toml:"file_ref"`
		Source        string `json:"source" toml:"source"`
		Output        string `json:"output" toml:"output"`
	}

	// PlanFile is one declared backing file.
	PlanFile struct {
		ID        string `json:"id" toml:"id"`
		Href      string `json:"href" toml:"href"`
		SizeBytes uint64 `json:"size_bytes" toml:"size_bytes"`
		Source    string `json:"source" toml:"source"`
		Output    string `json:"output" toml:"output"`
	}

	// PlanNetwork is a synthetic network name with its description.
	PlanNetwork struct {
		Name        string `json:"name" toml:"name"`
		Description string `json:"description" toml:"description"`
	}

	// PlanIntegrity summarizes manifest verification.
	PlanIntegrity struct {
		Manifest      string        `json:"manifest" toml:"manifest"`
		ManifestFound bool          `json:"manifest_found" toml:"manifest_found"`
		Verified      int           `json:"verified" toml:"verified"`
		Failures      []PlanFailure `json:"failures,omitempty" toml:"failures,omitempty"`
	}

	// PlanFailure is a file that failed verification.
	PlanFailure struct {
		File  string `json:"file" toml:"file"`
		Error string `json:"error" toml:"error"`
	}

	// PlanDiagnostic is a non-fatal finding of the resolution pass.
	PlanDiagnostic struct {
		Severity string `json:"severity" toml:"severity"`
		Code     string `json:"code" toml:"code"`
		Message  string `json:"message" toml:"message"`
		Path     string `json:"path,omitempty" toml:"path,omitempty"`
	}
)

// ParsePlanFormat parses a plan format name, case-insensitively.
func ParsePlanFormat(s string) (PlanFormat, error) {
	switch f := PlanFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case PlanJSON, PlanTOML:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (valid: json, toml)", ErrUnknownPlanFormat, s)
	}
}

// NewPlan builds the plan for a resolved package.
func NewPlan(pkg *resolve.Package) Plan {
	file := pkg.DiskFile()
	plan := Plan{
		Envelope: string(pkg.EnvelopePath),
		Disk: PlanDisk{
			ID:            pkg.Disk.DiskID,
			Format:        string(pkg.Disk.Format),
			FormatURL:     pkg.Disk.RawFormat,
			CapacityBytes: uint64(pkg.Disk.CapacityBytes),
			ImageSizeMiB:  pkg.ImageSizeMiB(),
			FileRef:       pkg.Disk.FileRef,
			Source:        string(file.SourcePath),
			Output:        string(file.OutputPath),
		},
		Files:    make([]PlanFile, 0, len(pkg.Files)),
		Networks: make([]PlanNetwork, 0, len(pkg.Networks)),
	}

	for _, f := range pkg.Files {
		plan.Files = append(plan.Files, PlanFile{
			ID:        f.ID,
			Href:      f.Href,
			SizeBytes: uint64(f.SizeBytes),
			Source:    string(f.SourcePath),
			Output:    string(f.OutputPath),
		})
	}
	for _, n := range pkg.Networks {
		plan.Networks = append(plan.Networks, PlanNetwork{Name: n.SyntheticName, Description: n.Description})
	}
	for _, d := range pkg.Diagnostics {
		plan.Diagnostics = append(plan.Diagnostics, PlanDiagnostic{
			Severity: string(d.Severity),
			Code:     d.Code,
			Message:  d.Message,
			Path:     d.Path,
		})
	}

	if r := pkg.Integrity; r != nil {
		summary := &PlanIntegrity{
			Manifest:      string(r.ManifestPath),
			ManifestFound: r.ManifestFound,
			Verified:      r.Verified(),
		}
		for _, res := range r.Results {
			if res.Status == integrity.StatusFailed {
				summary.Failures = append(summary.Failures, PlanFailure{File: res.Entry.Filename, Error: res.Err.Error()})
			}
		}
		plan.Integrity = summary
	}

	return plan
}

// WritePlan encodes the package's plan to w.
func WritePlan(w io.Writer, pkg *resolve.Package, format PlanFormat) error {
	plan := NewPlan(pkg)

	switch format {
	case PlanJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			return fmt.Errorf("failed to encode plan as JSON: %w", err)
		}
	case PlanTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		if err := enc.Encode(plan.clampSizes()); err != nil {
			return fmt.Errorf("failed to encode plan as TOML: %w", err)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownPlanFormat, format)
	}

	return nil
}

// clampSizes caps every size at math.MaxInt64, the largest integer TOML can
// hold. Sizes past that are not meaningful for a disk image anyway.
func (p Plan) clampSizes() Plan {
	p.Disk.CapacityBytes = min(p.Disk.CapacityBytes, math.MaxInt64)
	p.Disk.ImageSizeMiB = min(p.Disk.ImageSizeMiB, math.MaxInt64)
	files := make([]PlanFile, len(p.Files))
	for i, f := range p.Files {
		f.SizeBytes = min(f.SizeBytes, math.MaxInt64)
		files[i] = f
	}
	p.Files = files
	return p
}
