// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ovfconv/ovfconv/pkg/fspath"
	"github.com/ovfconv/ovfconv/pkg/types"
)

// Ext is the manifest file extension.
const Ext = ".mf"

// maxLineSize bounds a single manifest line.
const maxLineSize = 64 << 10

var linePattern = regexp.MustCompile(`^\s*([A-Za-z0-9-]+)\s*\((.+)\)\s*=\s*([0-9A-Fa-f]+)\s*$`)

// ErrManifestFormat is the sentinel wrapped by FormatError.
var ErrManifestFormat = errors.New("malformed manifest")

type (
	// Entry is a single manifest line.
	Entry struct {
		// Algorithm is the declared digest name as written ("SHA1", "sha256").
		Algorithm string
		// Filename is the file the digest covers, relative to the manifest.
		Filename string
		// ExpectedDigest is the declared hex digest, lower-cased.
		ExpectedDigest string
	}

	// FormatError is returned for a line that does not match
	// "algorithm(filename) = hexdigest".
	FormatError struct {
		Path string
		Line int
		Text string
	}
)

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("manifest line %d: %q is not of the form algorithm(filename) = hexdigest", e.Line, e.Text)
	}
	return fmt.Sprintf("%s:%d: %q is not of the form algorithm(filename) = hexdigest", e.Path, e.Line, e.Text)
}

// Unwrap returns ErrManifestFormat for errors.Is() compatibility.
func (e *FormatError) Unwrap() error { return ErrManifestFormat }

// PathFor returns the manifest path belonging to an envelope: the same path
// with its extension replaced by ".mf".
func PathFor(envelope types.FilesystemPath) types.FilesystemPath {
	return fspath.ReplaceExt(envelope, Ext)
}

// Parse reads every entry from r. Blank lines are skipped and CRLF line
// endings are accepted. path is used only in error messages.
func Parse(r io.Reader, path string) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)

	var entries []Entry
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, ok := ParseLine(line)
		if !ok {
			return nil, &FormatError{Path: path, Line: lineNo, Text: line}
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return entries, nil
}

// ParseLine parses one manifest line.
func ParseLine(line string) (Entry, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	return Entry{
		Algorithm:      m[1],
		Filename:       m[2],
		ExpectedDigest: strings.ToLower(m[3]),
	}, true
}
