package markdown

import (
	"path"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxFileNameLength caps the sanitized title, in characters.
	MaxFileNameLength = 100
	// UntitledName replaces titles that sanitize to nothing.
	UntitledName = "Untitled"
	// Extension is appended to every note file name.
	Extension = ".md"
	// DefaultTag is the single entry in every note's tags list.
	DefaultTag = "clippings"
)

var invalidFileNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// FrontMatter renders the YAML header placed at the top of every note.
func FrontMatter(title, source string, created time.Time) string {
	quoted := yamlEscape(title)

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString(`title: "` + quoted + "\"\n")
	b.WriteString(`aliases: ["` + quoted + "\"]\n")
	b.WriteString(`source: "` + yamlEscape(source) + "\"\n")
	b.WriteString(`created: "` + created.UTC().Format("2006-01-02") + "\"\n")
	b.WriteString("tags:\n")
	b.WriteString("  - " + DefaultTag + "\n")
	b.WriteString("---\n")
	return b.String()
}

// yamlEscape escapes s for a double-quoted YAML scalar.
func yamlEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Document joins the front matter and body with one blank line between them.
func Document(title, source string, created time.Time, body string) string {
	return FrontMatter(title, source, created) + "\n" + body
}

// SanitizeFileName makes a page title safe to use as a note file name.
func SanitizeFileName(title string) string {
	s := invalidFileNameChars.ReplaceAllString(title, " ")
	s = strings.Join(strings.Fields(s), " ")

	if r := []rune(s); len(r) > MaxFileNameLength {
		s = string(r[:MaxFileNameLength])
	}
	if s == "" {
		return UntitledName
	}
	return s
}

// NotePath is the slash-separated location of a note inside the target folder.
func NotePath(targetFolder, title string) string {
	return path.Join(targetFolder, SanitizeFileName(title)+Extension)
}
