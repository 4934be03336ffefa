// SPDX-License-Identifier: MPL-2.0

package handoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ovfconv/ovfconv/internal/resolve"
	"github.com/ovfconv/ovfconv/pkg/ovf"
	"github.com/ovfconv/ovfconv/pkg/types"
)

// Environment variables exposed to a ShellConverter command.
const (
	EnvFormat        = "OVF_FORMAT"
	EnvSource        = "OVF_SOURCE"
	EnvOutput        = "OVF_OUTPUT"
	EnvCapacityBytes = "OVF_CAPACITY_BYTES"
	EnvImageSizeMiB  = "OVF_IMAGE_SIZE_MIB"
)

var (
	// ErrNoConverter is returned when no conversion command is configured.
	ErrNoConverter = errors.New("no converter configured")
	// ErrConversionFailed is the sentinel wrapped by ConversionError.
	ErrConversionFailed = errors.New("conversion failed")
)

type (
	// ConversionRequest is what the image converter needs for one disk.
	ConversionRequest struct {
		// Format is the source disk format; empty when unrecognized.
		Format        ovf.DiskFormat
		SourcePath    types.FilesystemPath
		OutputPath    types.FilesystemPath
		CapacityBytes types.ByteCount
	}

	// Converter turns a backing file into the destination image format.
	Converter interface {
		Convert(ctx context.Context, req ConversionRequest) error
	}

	// ShellConverter runs a shell command through the embedded mvdan/sh
	// interpreter, so the same command line works on every platform. The
	// request is passed in OVF_* environment variables on top of the
	// process environment.
	ShellConverter struct {
		Command string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Stdout and Stderr receive the command's output. Nil discards it.
		Stdout io.Writer
		Stderr io.Writer
		// Logger receives a debug line per conversion. Optional.
		Logger *log.Logger
	}

	// ConversionError reports a converter command that exited non-zero.
	ConversionError struct {
		Command  string
		ExitCode int
	}
)

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("converter exited with status %d", e.ExitCode)
}

// Unwrap returns ErrConversionFailed for errors.Is() compatibility.
func (e *ConversionError) Unwrap() error { return ErrConversionFailed }

// FromPackage builds the conversion request for the package's disk.
func FromPackage(pkg *resolve.Package) ConversionRequest {
	file := pkg.DiskFile()
	return ConversionRequest{
		Format:        pkg.Disk.Format,
		SourcePath:    file.SourcePath,
		OutputPath:    file.OutputPath,
		CapacityBytes: pkg.Disk.CapacityBytes,
	}
}

// ImageSizeMiB is the capacity in whole mebibytes.
func (r ConversionRequest) ImageSizeMiB() uint64 { return r.CapacityBytes.MiBFloor() }

// Environ returns the OVF_* variables describing the request, in KEY=value form.
func (r ConversionRequest) Environ() []string {
	return []string{
		EnvFormat + "=" + string(r.Format),
		EnvSource + "=" + string(r.SourcePath),
		EnvOutput + "=" + string(r.OutputPath),
		EnvCapacityBytes + "=" + r.CapacityBytes.String(),
		EnvImageSizeMiB + "=" + strconv.FormatUint(r.ImageSizeMiB(), 10),
	}
}

// Convert implements Converter.
func (c *ShellConverter) Convert(ctx context.Context, req ConversionRequest) error {
	if strings.TrimSpace(c.Command) == "" {
		return ErrNoConverter
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(c.Command), "convert")
	if err != nil {
		return fmt.Errorf("failed to parse converter command: %w", err)
	}

	stdout, stderr := c.Stdout, c.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	env := append(os.Environ(), req.Environ()...)
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
	}
	if c.Dir != "" {
		opts = append(opts, interp.Dir(c.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if c.Logger != nil {
		c.Logger.Debug("running converter", "source", req.SourcePath, "output", req.OutputPath, "format", req.Format)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ConversionError{Command: c.Command, ExitCode: int(exitStatus)}
		}
		return fmt.Errorf("converter execution failed: %w", err)
	}

	return nil
}
