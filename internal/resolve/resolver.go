// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ovfconv/ovfconv/internal/integrity"
	"github.com/ovfconv/ovfconv/pkg/diag"
	"github.com/ovfconv/ovfconv/pkg/fspath"
	"github.com/ovfconv/ovfconv/pkg/ovf"
	"github.com/ovfconv/ovfconv/pkg/types"
)

type (
	// Options configures a Resolver.
	Options struct {
		// OutputDir receives converted images. Defaults to ".".
		OutputDir types.FilesystemPath
		// OutputExt is the converted image extension. Defaults to
		// ovf.DefaultOutputExt.
		OutputExt string
		// Verify enables manifest verification.
		Verify bool
		// Verifier checks integrity when Verify is set. A nil Verifier uses
		// the zero-value defaults.
		Verifier *integrity.Verifier
		// Sink also receives every diagnostic, as it is reported. Optional.
		Sink diag.Sink
	}

	// Resolver runs the resolution pipeline.
	Resolver struct {
		opts Options
	}
)

// New creates a Resolver.
func New(opts Options) *Resolver {
	if opts.Verifier == nil {
		opts.Verifier = &integrity.Verifier{}
	}
	return &Resolver{opts: opts}
}

// Resolve reads the envelope at path and resolves it. Parse and reference
// errors abort the pass and are returned as-is (wrapped with the path), so
// callers can match them with errors.Is/As. Per-file integrity failures do
// not fail the pass: they are in Package.Integrity for the caller to judge.
// When verification is cancelled or times out, the package is returned along
// with the error and its Integrity holds the partial report.
func (r *Resolver) Resolve(ctx context.Context, path types.FilesystemPath) (*Package, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read envelope at %s: %w", path, err)
	}
	pkg, err := r.ResolveBytes(data, path)
	if err != nil {
		return nil, err
	}

	if r.opts.Verify {
		report, err := r.opts.Verifier.Verify(ctx, path)
		if err != nil {
			// A cancelled pass still carries the results gathered so far.
			if report != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				pkg.Integrity = report
				return pkg, fmt.Errorf("verify %s: %w", path, err)
			}
			return nil, fmt.Errorf("verify %s: %w", path, err)
		}
		if !report.ManifestFound {
			d := diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Code:     diag.CodeManifestAbsent,
				Message:  "no manifest found; backing files were not verified",
				Path:     string(report.ManifestPath),
			}
			pkg.Diagnostics = append(pkg.Diagnostics, d)
			if r.opts.Sink != nil {
				r.opts.Sink.Report(d)
			}
		}
		pkg.Integrity = report
	}

	return pkg, nil
}

// ResolveBytes resolves envelope content already in memory. path locates the
// envelope directory for href resolution. No integrity check is done.
func (r *Resolver) ResolveBytes(data []byte, path types.FilesystemPath) (*Package, error) {
	collector := diag.NewCollector()
	sink := diag.Tee(collector, r.opts.Sink)

	env, err := ovf.ParseBytes(data, string(path))
	if err != nil {
		return nil, err
	}

	refs, err := ovf.ResolveReferences(env, ovf.ResolveOptions{
		EnvelopeDir: fspath.Dir(path),
		OutputDir:   r.opts.OutputDir,
		OutputExt:   r.opts.OutputExt,
	}, sink)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	return &Package{
		EnvelopePath: path,
		Files:        refs.Files,
		Disk:         refs.Disk,
		Networks:     ovf.ResolveNetworks(env),
		Diagnostics:  collector.Diagnostics(),
	}, nil
}
