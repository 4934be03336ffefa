// SPDX-License-Identifier: MPL-2.0

package ovf_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ovfconv/ovfconv/pkg/ovf"
	"github.com/ovfconv/ovfconv/pkg/types"
)

func TestParseBytes_Sections(t *testing.T) {
	t.Parallel()

	doc := envelopeXML([]string{fileDisk1}, []string{diskOne}, []string{`<Network ovf:name="VM Network"><Description>The VM Network network</Description></Network>`})

	env, err := ovf.ParseBytes([]byte(doc), "vm.ovf")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if env.Root == nil || env.Root.Name != "ovf:Envelope" {
		t.Fatalf("Root.Name = %v, want ovf:Envelope", env.Root)
	}
	if env.References == nil || env.DiskSection == nil || env.NetworkSection == nil {
		t.Fatal("expected all three sections to be present")
	}

	file := env.References.Child("File")
	if got := file.Attrs["ovf:href"]; got != "disk1.vmdk" {
		t.Errorf(`Attrs["ovf:href"] = %q, want "disk1.vmdk"`, got)
	}
	disk := env.DiskSection.Child("Disk")
	if got, _ := disk.Attr("capacityAllocationUnits"); got != "byte * 2^20" {
		t.Errorf("Attr(capacityAllocationUnits) = %q, want %q", got, "byte * 2^20")
	}
	desc := env.NetworkSection.Child("Network").Child("Description")
	if desc == nil || desc.Text != "The VM Network network" {
		t.Errorf("Description text = %v, want %q", desc, "The VM Network network")
	}
}

func TestParseBytes_PrefixIndependentKeys(t *testing.T) {
	t.Parallel()

	// Same namespace, different prefix: keys must not change.
	doc := `<e:Envelope xmlns:e="http://schemas.dmtf.org/ovf/envelope/1">
  <e:References><e:File e:id="f" e:href="a.vmdk"/></e:References>
</e:Envelope>`

	env, err := ovf.ParseBytes([]byte(doc), "")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	file := env.References.Child("File")
	if file == nil {
		t.Fatal("File element not found")
	}
	if file.Name != "ovf:File" {
		t.Errorf("Name = %q, want ovf:File", file.Name)
	}
	if _, ok := file.Attrs["ovf:id"]; !ok {
		t.Errorf("Attrs = %v, want key ovf:id", file.Attrs)
	}
	if _, ok := file.Attrs["e:id"]; ok {
		t.Error("document prefix must not leak into attribute keys")
	}
}

func TestParseBytes_UnqualifiedAttributesFallback(t *testing.T) {
	t.Parallel()

	doc := `<Envelope><References><File id="f" href="a.vmdk"/></References></Envelope>`
	env, err := ovf.ParseBytes([]byte(doc), "")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	href, ok := env.References.Child("File").Attr("href")
	if !ok || href != "a.vmdk" {
		t.Errorf("Attr(href) = %q, %v; want a.vmdk, true", href, ok)
	}
}

func TestParseBytes_IndentedNestedText(t *testing.T) {
	t.Parallel()

	doc := `<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1"
          xmlns:ovf="http://schemas.dmtf.org/ovf/envelope/1">
  <References>
    <File ovf:href="a.vmdk" ovf:id="f"/>
  </References>
  <VirtualSystem ovf:id="vm">
    <Info>A virtual machine</Info>
    <VirtualHardwareSection>
      <Info>Virtual hardware requirements</Info>
      <Item>
        <ElementName>Hard disk 1</ElementName>
      </Item>
    </VirtualHardwareSection>
  </VirtualSystem>
</Envelope>
`

	env, err := ovf.ParseBytes([]byte(doc), "vm.ovf")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got := env.References.Child("File").Attrs["ovf:href"]; got != "a.vmdk" {
		t.Errorf(`File href = %q, want "a.vmdk"`, got)
	}

	vs := env.Root.Child("VirtualSystem")
	if vs == nil {
		t.Fatal("VirtualSystem not found")
	}
	if got := vs.Child("Info").Text; got != "A virtual machine" {
		t.Errorf("VirtualSystem Info = %q", got)
	}
	hw := vs.Child("VirtualHardwareSection")
	if got := hw.Child("Info").Text; got != "Virtual hardware requirements" {
		t.Errorf("VirtualHardwareSection Info = %q", got)
	}
	if got := hw.Child("Item").Child("ElementName").Text; got != "Hard disk 1" {
		t.Errorf("ElementName = %q, want %q", got, "Hard disk 1")
	}
	if strings.TrimSpace(hw.Text) != "" {
		t.Errorf("VirtualHardwareSection Text = %q, want whitespace only", hw.Text)
	}
}

func TestParseBytes_AbsentSections(t *testing.T) {
	t.Parallel()

	env, err := ovf.ParseBytes([]byte(`<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1"/>`), "")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if env.References != nil || env.DiskSection != nil || env.NetworkSection != nil {
		t.Error("absent sections should be nil")
	}
}

func TestParseBytes_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"only a prolog", `<?xml version="1.0"?>`},
		{"unclosed root", `<Envelope><References>`},
		{"mismatched tags", `<Envelope><References></DiskSection></Envelope>`},
		{"second root", `<Envelope/><Envelope/>`},
		{"not xml", `this is not xml`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ovf.ParseBytes([]byte(tt.doc), "broken.ovf")
			if err == nil {
				t.Fatal("ParseBytes() expected error")
			}
			if !errors.Is(err, ovf.ErrParse) {
				t.Errorf("error should match ErrParse, got %v", err)
			}
			var pe *ovf.ParseError
			if !errors.As(err, &pe) || pe.Path != "broken.ovf" {
				t.Errorf("error should be *ParseError with path, got %T %v", err, err)
			}
		})
	}
}

func TestParse_ReadsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vm.ovf")
	if err := os.WriteFile(path, []byte(envelopeXML([]string{fileDisk1}, []string{diskOne}, nil)), 0o644); err != nil {
		t.Fatal(err)
	}

	env, err := ovf.Parse(types.FilesystemPath(path))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if env.DiskSection == nil {
		t.Error("expected DiskSection")
	}

	if _, err := ovf.Parse(types.FilesystemPath(filepath.Join(dir, "missing.ovf"))); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Parse(missing) error = %v, want os.ErrNotExist", err)
	}
}
