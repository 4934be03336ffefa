// SPDX-License-Identifier: MPL-2.0

package integrity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ovfconv/ovfconv/pkg/fspath"
	"github.com/ovfconv/ovfconv/pkg/manifest"
	"github.com/ovfconv/ovfconv/pkg/types"
)

// DefaultConcurrency is the worker pool size used when Verifier.Concurrency
// is not set.
const DefaultConcurrency = 4

const copyBufferSize = 1 << 20

type (
	// Verifier checks backing files against a manifest. The zero value is
	// usable: four workers, no timeout, every SHA-family algorithm allowed.
	Verifier struct {
		// Concurrency bounds the number of files digested at once.
		Concurrency int
		// Timeout bounds the whole pass. Zero means no timeout beyond the
		// caller's context.
		Timeout time.Duration
		// Algorithms restricts which digest algorithms are accepted. Entries
		// using any other algorithm fail with UnsupportedAlgorithmError.
		// Empty allows every supported algorithm.
		Algorithms []manifest.Algorithm
		// Logger receives per-file debug output. Optional.
		Logger *log.Logger

		// digest computes one file's digest; nil means digestFile.
		digest func(context.Context, types.FilesystemPath, manifest.Algorithm) (string, error)
	}

	// ctxReader fails reads once its context is done, so a large file being
	// hashed stops promptly on cancellation.
	ctxReader struct {
		ctx context.Context
		r   io.Reader
	}
)

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Verify locates the manifest next to the envelope (same name, ".mf"
// extension) and checks it. A missing manifest yields a report with
// ManifestFound false and no error.
func (v *Verifier) Verify(ctx context.Context, envelope types.FilesystemPath) (*Report, error) {
	return v.VerifyManifest(ctx, manifest.PathFor(envelope))
}

// VerifyManifest checks every entry of the manifest at path. Per-file
// failures are collected in the report; the returned error is reserved for
// problems with the manifest itself and for cancellation. On cancellation the
// partial report is returned together with an error wrapping ctx.Err().
func (v *Verifier) VerifyManifest(ctx context.Context, path types.FilesystemPath) (*Report, error) {
	report := &Report{ManifestPath: path}

	f, err := os.Open(string(path))
	if errors.Is(err, fs.ErrNotExist) {
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	entries, err := manifest.Parse(f, string(path))
	_ = f.Close()
	if err != nil {
		return nil, err
	}
	report.ManifestFound = true

	report.Results = make([]Result, len(entries))
	for i, e := range entries {
		report.Results[i] = Result{Entry: e, Status: StatusSkipped}
	}

	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	concurrency := v.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	dir := fspath.Dir(path)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range report.Results {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return v.check(gctx, dir, &report.Results[i])
		})
	}

	// Workers only return errors on cancellation; per-file failures live in
	// the results, so Wait joins everything without cutting the pass short.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("verifying %s: %w", path, err)
	}
	return report, nil
}

// check fills in res. It returns a non-nil error only when ctx is done.
func (v *Verifier) check(ctx context.Context, dir types.FilesystemPath, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := res.Entry
	alg, ok := manifest.ParseAlgorithm(e.Algorithm)
	if !ok || !v.allowed(alg) {
		res.Status = StatusFailed
		res.Err = &manifest.UnsupportedAlgorithmError{Algorithm: e.Algorithm, Filename: e.Filename}
		return nil
	}

	path, err := fspath.ConfinedJoin(dir, e.Filename)
	if err != nil {
		res.Status = StatusFailed
		res.Err = &FileAccessError{Filename: e.Filename, Err: err}
		return nil
	}
	res.Path = path

	start := time.Now()
	digest := v.digest
	if digest == nil {
		digest = digestFile
	}
	actual, err := digest(ctx, path, alg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		res.Status = StatusFailed
		res.Err = &FileAccessError{Filename: e.Filename, Err: err}
		return nil
	}
	res.Actual = actual

	if actual != e.ExpectedDigest {
		res.Status = StatusFailed
		res.Err = &DigestMismatchError{
			Filename:  e.Filename,
			Algorithm: e.Algorithm,
			Expected:  e.ExpectedDigest,
			Actual:    actual,
		}
		return nil
	}

	res.Status = StatusOK
	if v.Logger != nil {
		v.Logger.Debug("digest verified", "file", e.Filename, "algorithm", alg, "duration", time.Since(start))
	}
	return nil
}

func (v *Verifier) allowed(alg manifest.Algorithm) bool {
	return len(v.Algorithms) == 0 || slices.Contains(v.Algorithms, alg)
}

// digestFile returns the lower-case hex digest of the regular file at path.
// Anything else is rejected before it is opened, since opening a FIFO or a
// device can block or never reach EOF.
func digestFile(ctx context.Context, path types.FilesystemPath, alg manifest.Algorithm) (string, error) {
	info, err := os.Stat(string(path))
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w (mode %s)", ErrNotRegularFile, info.Mode().Type())
	}

	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := alg.New()
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(h, &ctxReader{ctx: ctx, r: f}, buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
