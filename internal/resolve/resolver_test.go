// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"crypto/sha1" //nolint:gosec // test fixture digests
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ovfconv/ovfconv/internal/integrity"
	"github.com/ovfconv/ovfconv/pkg/diag"
	"github.com/ovfconv/ovfconv/pkg/ovf"
	"github.com/ovfconv/ovfconv/pkg/types"
)

const testEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1" xmlns:ovf="http://schemas.dmtf.org/ovf/envelope/1">
  <References>
    <File ovf:id="file1" ovf:href="%s" ovf:size="15"/>
  </References>
  <DiskSection>
    <Info>Virtual disk information</Info>
    <Disk ovf:diskId="vmdisk1" ovf:fileRef="file1" ovf:capacity="%s" ovf:capacityAllocationUnits="%s"
          ovf:format="http://www.vmware.com/interfaces/specifications/vmdk.html#streamOptimized"/>
  </DiskSection>
  <NetworkSection>
    <Info>Logical networks</Info>
    <Network ovf:name="VM Network"><Description>The VM Network network</Description></Network>
    <Network ovf:name="Backup"/>
  </NetworkSection>
</Envelope>
`

type fixture struct {
	href     string
	capacity string
	units    string
	manifest string
}

func writeFixture(t *testing.T, f fixture) types.FilesystemPath {
	t.Helper()

	if f.href == "" {
		f.href = "disk.img"
	}
	if f.capacity == "" {
		f.capacity = "10"
	}
	if f.units == "" {
		f.units = "byte * 2^20"
	}

	dir := t.TempDir()
	envelope := filepath.Join(dir, "vm.ovf")
	doc := fmt.Sprintf(testEnvelope, f.href, f.capacity, f.units)
	if err := os.WriteFile(envelope, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "disk.img"), []byte("disk image data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if f.manifest != "" {
		if err := os.WriteFile(filepath.Join(dir, "vm.mf"), []byte(f.manifest), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return types.FilesystemPath(envelope)
}

func sha1Hex(s string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(s))) //nolint:gosec // test fixture
}

func TestResolve_SingleDiskPackage(t *testing.T) {
	t.Parallel()

	envelope := writeFixture(t, fixture{})
	outDir := t.TempDir()

	pkg, err := New(Options{OutputDir: types.FilesystemPath(outDir)}).Resolve(context.Background(), envelope)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if pkg.Disk.DiskID != "vmdisk1" {
		t.Errorf("Disk.DiskID = %q, want vmdisk1", pkg.Disk.DiskID)
	}
	file := pkg.DiskFile()
	if file.ID != "file1" {
		t.Fatalf("DiskFile().ID = %q, want file1", file.ID)
	}
	wantSource := types.FilesystemPath(filepath.Join(filepath.Dir(string(envelope)), "disk.img"))
	if file.SourcePath != wantSource {
		t.Errorf("SourcePath = %q, want %q", file.SourcePath, wantSource)
	}
	wantOutput := types.FilesystemPath(filepath.Join(outDir, "disk.zfs.bz2"))
	if file.OutputPath != wantOutput {
		t.Errorf("OutputPath = %q, want %q", file.OutputPath, wantOutput)
	}
	if pkg.Disk.CapacityBytes != 10<<20 {
		t.Errorf("CapacityBytes = %d, want %d", pkg.Disk.CapacityBytes, 10<<20)
	}
	if pkg.ImageSizeMiB() != 10 {
		t.Errorf("ImageSizeMiB() = %d, want 10", pkg.ImageSizeMiB())
	}
	if len(pkg.Networks) != 2 || pkg.Networks[0].SyntheticName != "net0" || pkg.Networks[1].SyntheticName != "net1" {
		t.Errorf("Networks = %+v", pkg.Networks)
	}
	if pkg.Integrity != nil {
		t.Error("Integrity should be nil when verification is off")
	}
	if !pkg.IntegrityOK() {
		t.Error("IntegrityOK() should be true when verification is off")
	}
}

func TestResolve_VerifyMatching(t *testing.T) {
	t.Parallel()

	envelope := writeFixture(t, fixture{manifest: "SHA1(disk.img)= " + sha1Hex("disk image data") + "\n"})

	pkg, err := New(Options{Verify: true}).Resolve(context.Background(), envelope)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if pkg.Integrity == nil || !pkg.Integrity.ManifestFound {
		t.Fatal("expected an integrity report with a manifest")
	}
	if len(pkg.Integrity.Mismatches()) != 0 || !pkg.IntegrityOK() {
		t.Errorf("expected zero mismatches, got %v", pkg.Integrity.Failures())
	}
}

func TestResolve_VerifyMismatchIsNotFatal(t *testing.T) {
	t.Parallel()

	envelope := writeFixture(t, fixture{manifest: "SHA1(disk.img)= " + sha1Hex("tampered") + "\n"})

	pkg, err := New(Options{Verify: true}).Resolve(context.Background(), envelope)
	if err != nil {
		t.Fatalf("Resolve() error = %v, integrity failures must not abort resolution", err)
	}
	mismatches := pkg.Integrity.Mismatches()
	if len(mismatches) != 1 || mismatches[0].Filename != "disk.img" {
		t.Errorf("Mismatches() = %v, want one for disk.img", mismatches)
	}
	if pkg.IntegrityOK() {
		t.Error("IntegrityOK() = true, want false")
	}
}

func TestResolve_VerifyWithoutManifest(t *testing.T) {
	t.Parallel()

	envelope := writeFixture(t, fixture{})
	sink := diag.NewCollector()

	pkg, err := New(Options{Verify: true, Sink: sink}).Resolve(context.Background(), envelope)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if pkg.Integrity.ManifestFound {
		t.Error("ManifestFound = true, want false")
	}
	if !pkg.IntegrityOK() {
		t.Error("a missing manifest is success")
	}
	if len(sink.WithCode(diag.CodeManifestAbsent)) != 1 {
		t.Error("expected a manifest_absent diagnostic on the caller sink")
	}
}

func TestResolve_VerifyCancelled(t *testing.T) {
	t.Parallel()

	envelope := writeFixture(t, fixture{manifest: "SHA1(disk.img)= " + sha1Hex("disk image data") + "\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pkg, err := New(Options{Verify: true, Verifier: &integrity.Verifier{Concurrency: 1}}).Resolve(ctx, envelope)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve() error = %v, want context.Canceled", err)
	}
	if pkg == nil || pkg.Integrity == nil {
		t.Fatal("Resolve() dropped the partial integrity report on cancellation")
	}
	if !pkg.Integrity.ManifestFound || len(pkg.Integrity.Results) != 1 {
		t.Fatalf("partial report = %+v, want one manifest entry", pkg.Integrity)
	}
	if got := pkg.Integrity.Results[0].Status; got != integrity.StatusSkipped {
		t.Errorf("Results[0].Status = %v, want %v", got, integrity.StatusSkipped)
	}
}

func TestResolve_VerifyTimeoutKeepsMismatches(t *testing.T) {
	t.Parallel()

	manifest := "SHA1(disk.img)= " + sha1Hex("something else") + "\n" +
		"SHA1(big.img)= " + sha1Hex("") + "\n"
	envelope := writeFixture(t, fixture{manifest: manifest})

	// A sparse file large enough that hashing it outlasts the timeout.
	big, err := os.Create(filepath.Join(filepath.Dir(string(envelope)), "big.img"))
	if err != nil {
		t.Fatal(err)
	}
	if err := big.Truncate(8 << 30); err != nil {
		_ = big.Close()
		t.Skipf("sparse files unavailable: %v", err)
	}
	if err := big.Close(); err != nil {
		t.Fatal(err)
	}

	verifier := &integrity.Verifier{Concurrency: 1, Timeout: 200 * time.Millisecond}
	pkg, err := New(Options{Verify: true, Verifier: verifier}).Resolve(context.Background(), envelope)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Resolve() error = %v, want context.DeadlineExceeded", err)
	}
	if pkg == nil || pkg.Integrity == nil {
		t.Fatal("Resolve() dropped the partial integrity report on timeout")
	}
	mismatches := pkg.Integrity.Mismatches()
	if len(mismatches) != 1 || mismatches[0].Filename != "disk.img" {
		t.Fatalf("Mismatches() = %v, want the disk.img mismatch", mismatches)
	}
	if pkg.IntegrityOK() {
		t.Error("IntegrityOK() = true for a report with a mismatch")
	}
}

func TestResolve_StructuralErrors(t *testing.T) {
	t.Parallel()

	t.Run("remote href", func(t *testing.T) {
		t.Parallel()

		envelope := writeFixture(t, fixture{href: "http://host/disk.vmdk"})
		_, err := New(Options{}).Resolve(context.Background(), envelope)
		var ure *ovf.UnsupportedReferenceError
		if !errors.As(err, &ure) || ure.Scheme != "http" {
			t.Fatalf("Resolve() error = %v, want UnsupportedReferenceError{Scheme: http}", err)
		}
	})

	t.Run("malformed xml", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "vm.ovf")
		if err := os.WriteFile(path, []byte("<Envelope><References>"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := New(Options{}).Resolve(context.Background(), types.FilesystemPath(path))
		if !errors.Is(err, ovf.ErrParse) {
			t.Fatalf("Resolve() error = %v, want ErrParse", err)
		}
	})

	t.Run("missing envelope", func(t *testing.T) {
		t.Parallel()

		_, err := New(Options{}).Resolve(context.Background(), types.FilesystemPath(filepath.Join(t.TempDir(), "nope.ovf")))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("Resolve() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := New(Options{}).Resolve(context.Background(), "")
		if !errors.Is(err, types.ErrInvalidFilesystemPath) {
			t.Fatalf("Resolve() error = %v, want ErrInvalidFilesystemPath", err)
		}
	})
}

func TestResolve_UnitWarningCollected(t *testing.T) {
	t.Parallel()

	envelope := writeFixture(t, fixture{units: "foo"})
	sink := diag.NewCollector()

	pkg, err := New(Options{Sink: sink}).Resolve(context.Background(), envelope)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if pkg.Disk.CapacityBytes != 10 {
		t.Errorf("CapacityBytes = %d, want 10", pkg.Disk.CapacityBytes)
	}
	if len(pkg.Diagnostics) != 1 || pkg.Diagnostics[0].Code != diag.CodeCapacityUnitsUnparsed {
		t.Errorf("Diagnostics = %+v, want one capacity_units_unparsed", pkg.Diagnostics)
	}
	if len(sink.Diagnostics()) != 1 {
		t.Error("the caller sink should receive the warning too")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	envelope := writeFixture(t, fixture{})
	r := New(Options{OutputDir: "/out"})

	first, err := r.Resolve(context.Background(), envelope)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(context.Background(), envelope)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Resolve() is not idempotent:\n%+v\n%+v", first, second)
	}
}
