// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	EnvelopeParseErrorId
	InvalidEnvelopeId
	RemoteReferenceId
	UnsupportedConfigurationId
	ManifestMalformedId
	IntegrityFailedId
	ConfigLoadFailedId
	ConverterNotConfiguredId
	ConversionFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // reference documentation for the problem
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's Markdown with glamour. stylePath is a glamour
// style name ("dark", "light", "notty") or a path to a style file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

const ovfSpecLink HttpLink = "https://www.dmtf.org/standards/ovf"

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

The envelope, or a file it references, does not exist.

## Things you can try:
- Check the path you passed on the command line
- Make sure every backing file was copied next to the envelope
- List the package directory:
~~~
$ ls -l "$(dirname appliance.ovf)"
~~~`,
	}

	envelopeParseErrorIssue = &Issue{
		id: EnvelopeParseErrorId,
		mdMsg: `
# Failed to parse the OVF envelope!

The envelope is not well-formed XML.

## Common causes:
- The export was interrupted and the file is truncated
- The file is an OVA (tar archive), not the .ovf inside it
- Extra content after the closing </Envelope> element

## Things you can try:
- Extract the .ovf from an OVA first:
~~~
$ tar -xf appliance.ova
~~~
- Check the file with an XML linter:
~~~
$ xmllint --noout appliance.ovf
~~~`,
		docLinks: []HttpLink{ovfSpecLink},
	}

	invalidEnvelopeIssue = &Issue{
		id: InvalidEnvelopeId,
		mdMsg: `
# The envelope is missing required information!

A File or Disk element lacks a required attribute, or a Disk points at a
file id that the References section does not declare.

## Required attributes:
- ` + "`File`" + `: ovf:id, ovf:href
- ` + "`Disk`" + `: ovf:diskId, ovf:fileRef, ovf:capacity

## Things you can try:
- Re-export the virtual machine from its hypervisor
- Compare the Disk's ovf:fileRef with the File ids in References`,
		docLinks: []HttpLink{ovfSpecLink},
	}

	remoteReferenceIssue = &Issue{
		id: RemoteReferenceId,
		mdMsg: `
# Remote backing files are not supported!

A File element's href is a URL (for example ` + "`http://...`" + `). Only files
stored next to the envelope can be converted.

## Things you can try:
- Download the file into the envelope's directory
- Edit the href to the local file name, then regenerate the manifest
  (or remove the stale manifest entry)`,
	}

	unsupportedConfigurationIssue = &Issue{
		id: UnsupportedConfigurationId,
		mdMsg: `
# Only single-disk packages are supported!

The DiskSection must declare exactly one Disk.

## Things you can try:
- Detach extra disks from the virtual machine and export it again
- Convert each disk separately from a trimmed copy of the envelope`,
	}

	manifestMalformedIssue = &Issue{
		id: ManifestMalformedId,
		mdMsg: `
# The manifest could not be read!

Every non-blank line of the .mf file must look like:
~~~
SHA256(disk1.vmdk)= 3a6eb0790f39ac87c94f3856b2dd2c5d110e6811602261a9a923d3bb23adc8b7
~~~

## Things you can try:
- Regenerate the manifest:
~~~
$ sha256sum --tag *.vmdk > appliance.mf
~~~
- Skip verification with ` + "`--skip-verify`" + ` if you trust the source`,
	}

	integrityFailedIssue = &Issue{
		id: IntegrityFailedId,
		mdMsg: `
# Integrity check failed!

One or more backing files do not match the digests in the manifest. The
files may be corrupted or incomplete.

## Things you can try:
- Copy or download the package again
- Compare the digest yourself:
~~~
$ sha256sum disk1.vmdk
~~~
- Run ` + "`ovfconv verify --verbose`" + ` to list every failing file`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The config file is not valid CUE, or a value does not match the schema.

## Things you can try:
- Show where the configuration is read from:
~~~
$ ovfconv config path
~~~
- Write a fresh default file:
~~~
$ ovfconv config init --force
~~~
- Check OVFCONV_* environment variables, which override the file`,
	}

	converterNotConfiguredIssue = &Issue{
		id: ConverterNotConfiguredId,
		mdMsg: `
# No converter configured!

ovfconv resolves and verifies packages; the conversion itself is done by a
command you configure.

## Things you can try:
- Set ` + "`convert.command`" + ` in your config file:
~~~cue
convert: command: "qemu-img convert -O raw \"$OVF_SOURCE\" \"$OVF_OUTPUT\""
~~~
- Or set OVFCONV_CONVERT_COMMAND for a single run`,
	}

	conversionFailedIssue = &Issue{
		id: ConversionFailedId,
		mdMsg: `
# Conversion failed!

The configured converter exited with an error.

## Things you can try:
- Run the converter by hand with the variables shown by ` + "`ovfconv inspect`" + `
- Check that the output directory is writable and has enough space`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to read the package or write the output.

## Things you can try:
- Check file/directory permissions
- Choose another output directory with ` + "`--output-dir`",
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():             fileNotFoundIssue,
		envelopeParseErrorIssue.Id():       envelopeParseErrorIssue,
		invalidEnvelopeIssue.Id():          invalidEnvelopeIssue,
		remoteReferenceIssue.Id():          remoteReferenceIssue,
		unsupportedConfigurationIssue.Id(): unsupportedConfigurationIssue,
		manifestMalformedIssue.Id():        manifestMalformedIssue,
		integrityFailedIssue.Id():          integrityFailedIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		converterNotConfiguredIssue.Id():   converterNotConfiguredIssue,
		conversionFailedIssue.Id():         conversionFailedIssue,
		permissionDeniedIssue.Id():         permissionDeniedIssue,
	}
)

// Values returns every catalogued issue, ordered by id.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
