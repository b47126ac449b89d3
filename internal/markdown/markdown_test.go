package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const base = "https://h.example/p"

func TestConvertImageRule(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		deny string
	}{
		{
			name: "relative src resolved",
			html: `<p><img src="/a.png" alt="x"></p>`,
			want: "![x](https://h.example/a.png)",
		},
		{
			name: "absolute src untouched",
			html: `<p><img src="https://cdn.example/c.png" alt="c"></p>`,
			want: "![c](https://cdn.example/c.png)",
		},
		{
			name: "empty src dropped",
			html: `<p>before<img src="" alt="gone">after</p>`,
			want: "beforeafter",
			deny: "gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Convert(tt.html, base)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			if tt.deny != "" {
				assert.NotContains(t, out, tt.deny)
			}
		})
	}
}

func TestConvertLinkRule(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"fragment stripped", `<p><a href="/b#frag">t</a></p>`, "[t](https://h.example/b)"},
		{"absolute kept", `<p><a href="https://o.example/x">o</a></p>`, "[o](https://o.example/x)"},
		{"no href keeps text", `<p><a name="anchor">plain</a></p>`, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Convert(tt.html, base)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	out, err := Convert(`<p><a>plain</a></p>`, base)
	require.NoError(t, err)
	assert.NotContains(t, out, "](")
}

func TestConvertBaseStyle(t *testing.T) {
	out, err := Convert(`<h2>Install</h2><pre><code>go install</code></pre>`, base)
	require.NoError(t, err)
	assert.Contains(t, out, "## Install")
	assert.Contains(t, out, "```")
}

func TestFrontMatter(t *testing.T) {
	created := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	got := FrontMatter(`Say "hi"`, "https://docs.example/Home", created)

	want := "---\n" +
		"title: \"Say \\\"hi\\\"\"\n" +
		"aliases: [\"Say \\\"hi\\\"\"]\n" +
		"source: \"https://docs.example/Home\"\n" +
		"created: \"2026-03-09\"\n" +
		"tags:\n" +
		"  - clippings\n" +
		"---\n"
	assert.Equal(t, want, got)
}

func TestFrontMatterIsValidYAML(t *testing.T) {
	title := `C:\path\to "notes"`
	fm := FrontMatter(title, `https://docs.example/a\b`, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	var meta struct {
		Title   string   `yaml:"title"`
		Aliases []string `yaml:"aliases"`
		Source  string   `yaml:"source"`
		Tags    []string `yaml:"tags"`
	}
	body := strings.TrimSuffix(strings.TrimPrefix(fm, "---\n"), "---\n")
	require.NoError(t, yaml.Unmarshal([]byte(body), &meta))
	assert.Equal(t, title, meta.Title)
	assert.Equal(t, []string{title}, meta.Aliases)
	assert.Equal(t, `https://docs.example/a\b`, meta.Source)
	assert.Equal(t, []string{"clippings"}, meta.Tags)
}

func TestDocument(t *testing.T) {
	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	doc := Document("Home", "https://docs.example/Home", created, "# Body")
	assert.True(t, strings.HasSuffix(doc, "---\n\n# Body"))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a/b:c*d?"e<f>g|h  `, "a b c d e f g h"},
		{`\/:*?"<>|`, "Untitled"},
		{"", "Untitled"},
		{"  Getting   Started\t", "Getting Started"},
		{strings.Repeat("é", 150), strings.Repeat("é", 100)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in), "input %q", tt.in)
	}
}

func TestNotePath(t *testing.T) {
	assert.Equal(t, "Scrapes/VaultScraper/Home.md", NotePath("Scrapes/VaultScraper", "Home"))
	assert.Equal(t, "Scrapes/Untitled.md", NotePath("Scrapes/", "|||"))
}
