// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
)

// identityRender bypasses glamour so assertions see the raw Markdown.
func identityRender(in, _ string) (string, error) { return in, nil }

func TestId_Constants(t *testing.T) {
	t.Parallel()

	if FileNotFoundId != 1 {
		t.Errorf("FileNotFoundId = %d, want 1", FileNotFoundId)
	}
	if PermissionDeniedId != Id(len(issues)) {
		t.Errorf("last id = %d, want %d", PermissionDeniedId, len(issues))
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		contains string
	}{
		{FileNotFoundId, "File not found"},
		{EnvelopeParseErrorId, "Failed to parse the OVF envelope"},
		{InvalidEnvelopeId, "missing required information"},
		{RemoteReferenceId, "Remote backing files"},
		{UnsupportedConfigurationId, "single-disk"},
		{ManifestMalformedId, "manifest could not be read"},
		{IntegrityFailedId, "Integrity check failed"},
		{ConfigLoadFailedId, "Failed to load configuration"},
		{ConverterNotConfiguredId, "No converter configured"},
		{ConversionFailedId, "Conversion failed"},
		{PermissionDeniedId, "Permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			t.Parallel()

			issue := Get(tt.id)
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}

	if Get(Id(9999)) != nil {
		t.Error("Get(9999) should return nil")
	}
}

func TestValues_SortedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i, issue := range values {
		if issue.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), i+1)
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := Get(EnvelopeParseErrorId)
	links := issue.DocLinks()
	if len(links) == 0 {
		t.Fatal("expected doc links on the parse error issue")
	}
	links[0] = "modified"
	if issue.DocLinks()[0] == "modified" {
		t.Error("DocLinks() should return a clone")
	}
	if issue.ExtLinks() != nil {
		t.Error("ExtLinks() should be nil when none are set")
	}
}

//nolint:paralleltest // swaps the package-level renderer
func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()
	render = identityRender

	withLinks := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue\n\nThis is a test.",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}
	rendered, err := withLinks.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	for _, want := range []string{"## See also", "- <https://docs.example.com>", "- <https://external.example.com>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() missing %q:\n%s", want, rendered)
		}
	}

	noLinks := &Issue{id: Id(9998), mdMsg: "# Test Issue\n\nNo links here."}
	rendered, err = noLinks.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}

	for _, issue := range Values() {
		out, err := issue.Render("")
		if err != nil || out == "" {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	t.Parallel()

	// "notty" renders without ANSI sequences.
	out, err := glamour.Render(string(Get(IntegrityFailedId).MarkdownMsg()), "notty")
	if err != nil {
		t.Fatalf("glamour render failed: %v", err)
	}
	if !strings.Contains(out, "Integrity check failed") {
		t.Errorf("rendered output lost the heading:\n%s", out)
	}
}
