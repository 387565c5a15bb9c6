package importer

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	apperr "github.com/mankihq/manki/pkg/errors"
)

const dockerPage = `# docker

> Manage Docker containers and images.
> More information: <https://docs.docker.com/reference/cli/docker/>.

- Run a container:

` + "`docker run {{image}}`" + `

- List running containers:

` + "`docker ps`" + `
`

func TestParseMarkdown(t *testing.T) {
	cmd, err := ParseMarkdown([]byte(dockerPage), "en")
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	if cmd.Name != "docker" {
		t.Errorf("name = %q", cmd.Name)
	}
	if cmd.Description != "Manage Docker containers and images." {
		t.Errorf("description = %q", cmd.Description)
	}
	if len(cmd.Examples) != 2 {
		t.Fatalf("examples = %d, want 2", len(cmd.Examples))
	}
	if cmd.Examples[0].Description != "Run a container" {
		t.Errorf("example description = %q", cmd.Examples[0].Description)
	}
	if cmd.Examples[0].Code != "docker run {{image}}" {
		t.Errorf("placeholder not preserved: %q", cmd.Examples[0].Code)
	}
	if cmd.Lang != "en" {
		t.Errorf("lang = %q", cmd.Lang)
	}
}

func TestParseMarkdownRoundTrip(t *testing.T) {
	first, err := ParseMarkdown([]byte(dockerPage), "en")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseMarkdown([]byte(RenderMarkdown(first)), "en")
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	// Content mirrors whichever source was parsed, so it is excluded from
	// the equivalence check.
	first.Content, second.Content = "", ""
	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip diverged:\n%+v\n%+v", first, second)
	}
}

func TestParseMarkdownContentRetainsFullSource(t *testing.T) {
	cmd, err := ParseMarkdown([]byte(dockerPage), "en")
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	// Every part of the page stays searchable through the content field,
	// including text already consumed by the name/description/example
	// grammar.
	for _, want := range []string{
		"# docker",
		"Manage Docker containers and images.",
		"docker run {{image}}",
		"List running containers",
	} {
		if !strings.Contains(cmd.Content, want) {
			t.Errorf("content missing %q:\n%s", want, cmd.Content)
		}
	}
	if cmd.Content != strings.TrimSpace(dockerPage) {
		t.Errorf("content is not the raw source:\n%s", cmd.Content)
	}
}

func TestParseMarkdownChinese(t *testing.T) {
	page := `# tar

> 归档工具。
> 更多信息：<https://www.gnu.org/software/tar>.

- 创建归档文件:

` + "`tar cf {{目标.tar}} {{文件}}`" + `
`
	cmd, err := ParseMarkdown([]byte(page), "zh")
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	if cmd.Description != "归档工具。" {
		t.Errorf("description = %q", cmd.Description)
	}
	if cmd.Examples[0].Description != "创建归档文件" {
		t.Errorf("example description = %q", cmd.Examples[0].Description)
	}
}

func TestParseMarkdownRejectsIncompletePages(t *testing.T) {
	cases := map[string]string{
		"no title":       "> A description.\n\n- Do a thing:\n\n`thing`\n",
		"no description": "# thing\n\n- Do a thing:\n\n`thing`\n",
		"no examples":    "# thing\n\n> A description.\n",
		"reference-only description": "# thing\n\n> More information: <https://example.com>.\n\n- Do:\n\n`thing`\n",
	}
	for name, page := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMarkdown([]byte(page), "en")
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestParseMarkdownKeepsUnrecognisedProse(t *testing.T) {
	page := `# widget

> Frobnicates widgets.

Extra prose the grammar does not recognise.

- Frob a widget:

` + "`widget frob`" + `

## Notes

More trailing prose.
`
	cmd, err := ParseMarkdown([]byte(page), "en")
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	if len(cmd.Examples) != 1 {
		t.Fatalf("examples = %d, want 1", len(cmd.Examples))
	}
	for _, want := range []string{"Extra prose", "Notes", "More trailing prose"} {
		if !strings.Contains(cmd.Content, want) {
			t.Errorf("content missing %q: %q", want, cmd.Content)
		}
	}
}
