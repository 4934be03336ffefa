// SPDX-License-Identifier: MPL-2.0

package ovf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ovfconv/ovfconv/pkg/types"
)

// DefaultMaxEnvelopeSize bounds the envelope document size accepted by Parse.
const DefaultMaxEnvelopeSize = 16 << 20

// Section element local names.
const (
	SectionReferences = "References"
	SectionDisk       = "DiskSection"
	SectionNetwork    = "NetworkSection"
)

// wellKnownNamespaces maps OVF-related namespace URIs to the prefixes used as
// attribute keys, so "ovf:capacity" means the same thing whatever prefix the
// exporting tool chose.
var wellKnownNamespaces = map[string]string{
	"http://schemas.dmtf.org/ovf/envelope/1":                                              "ovf",
	"http://schemas.dmtf.org/ovf/envelope/2":                                              "ovf",
	"http://schemas.dmtf.org/wbem/wscim/1/cim-schema/2/CIM_ResourceAllocationSettingData": "rasd",
	"http://schemas.dmtf.org/wbem/wscim/1/cim-schema/2/CIM_VirtualSystemSettingData":      "vssd",
	"http://www.vmware.com/schema/ovf":                                                    "vmw",
	"http://www.w3.org/2001/XMLSchema-instance":                                           "xsi",
	"http://www.w3.org/XML/1998/namespace":                                                "xml",
}

// ErrParse is the sentinel wrapped by ParseError.
var ErrParse = errors.New("malformed envelope")

type (
	// Node is a generic element of the envelope tree.
	Node struct {
		// Name is the namespace-qualified element name ("ovf:Disk", or the bare
		// local name when the element has no namespace).
		Name string
		// Local is the element name without namespace.
		Local string
		// Attrs holds attribute values keyed by namespace-qualified name.
		Attrs map[string]string
		// Text is the concatenated character data directly inside the element.
		Text string
		// Children are the child elements in document order.
		Children []*Node
	}

	// Envelope is the parsed OVF document. Section fields are nil when the
	// document does not declare them.
	Envelope struct {
		Root           *Node
		References     *Node
		DiskSection    *Node
		NetworkSection *Node
	}

	// ParseError is returned when the envelope XML cannot be read.
	ParseError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed envelope: %v", e.Err)
	}
	return fmt.Sprintf("malformed envelope %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrParse equivalence.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parse reads and parses the envelope file at path.
func Parse(path types.FilesystemPath) (*Envelope, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read envelope at %s: %w", path, err)
	}
	return ParseBytes(data, string(path))
}

// ParseBytes parses envelope content. path is used only for error messages.
func ParseBytes(data []byte, path string) (*Envelope, error) {
	if len(data) > DefaultMaxEnvelopeSize {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("document size %d bytes exceeds maximum %d bytes", len(data), DefaultMaxEnvelopeSize)}
	}

	root, err := decodeTree(xml.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return &Envelope{
		Root:           root,
		References:     root.Child(SectionReferences),
		DiskSection:    root.Child(SectionDisk),
		NetworkSection: root.Child(SectionNetwork),
	}, nil
}

// decodeTree builds the node tree from the token stream. It requires exactly
// one root element and rejects any element content after it.
func decodeTree(dec *xml.Decoder) (*Node, error) {
	var (
		root  *Node
		stack []*Node
		text  []*strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("unexpected element <%s> after document root", t.Name.Local)
			}
			n := newNode(t)
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.EndElement:
			top := len(stack) - 1
			stack[top].Text = text[top].String()
			stack = stack[:top]
			text = text[:top]
		case xml.CharData:
			if len(stack) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

func newNode(t xml.StartElement) *Node {
	n := &Node{
		Name:  qualify(t.Name),
		Local: t.Name.Local,
		Attrs: make(map[string]string, len(t.Attr)),
	}
	for _, a := range t.Attr {
		// Namespace declarations are not data.
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		n.Attrs[qualify(a.Name)] = a.Value
	}
	return n
}

func qualify(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := wellKnownNamespaces[name.Space]; ok {
		return prefix + ":" + name.Local
	}
	return "{" + name.Space + "}" + name.Local
}

// Child returns the first direct child whose local name is local, or nil.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Local == local {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child whose local name is local,
// in document order.
func (n *Node) ChildrenNamed(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// Attr looks up an OVF attribute by local name. The "ovf:" qualified key is
// preferred; some exporters omit the namespace, so the bare name is the
// fallback.
func (n *Node) Attr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	if v, ok := n.Attrs["ovf:"+local]; ok {
		return v, true
	}
	v, ok := n.Attrs[local]
	return v, ok
}
