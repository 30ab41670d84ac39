package task

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	fileMode      = 0o600
	maxSlugLength = 40
	idPadWidth    = 3
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Read parses a task file and returns the Task with notes populated.
func Read(path string) (*Task, error) {
	data, err := os.ReadFile(path) //nolint:gosec // task path from trusted source
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var t Task
	if err := yaml.Unmarshal(fm, &t); err != nil {
		return nil, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
	}
	if strings.TrimSpace(t.Title) == "" {
		return nil, fmt.Errorf("parsing %s: title is empty", path)
	}

	t.Notes = strings.TrimRight(body, "\n")
	t.File = path

	return &t, nil
}

// Write serializes a task to a markdown file with YAML frontmatter.
func Write(path string, t *Task) error {
	fm, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if t.Notes != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Notes)
		if !strings.HasSuffix(t.Notes, "\n") {
			buf.WriteString("\n")
		}
	}

	return os.WriteFile(path, buf.Bytes(), fileMode)
}

// Filename returns the file name for t: zero-padded ID, title slug, .md.
func Filename(t *Task) string {
	slug := Slug(t.Title)
	if slug == "" {
		slug = "task"
	}
	return fmt.Sprintf("%0*d-%s.md", idPadWidth, t.ID, slug)
}

// Slug lowercases title and joins its alphanumeric runs with hyphens,
// cutting at a word boundary when longer than maxSlugLength.
func Slug(title string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) <= maxSlugLength {
		return slug
	}

	truncated := slug[:maxSlugLength]
	if slug[maxSlugLength] != '-' {
		if idx := strings.LastIndex(truncated, "-"); idx > 0 {
			truncated = truncated[:idx]
		}
	}
	return strings.TrimRight(truncated, "-")
}

// splitFrontmatter splits a markdown file into YAML frontmatter and body.
// The file must start with "---\n".
func splitFrontmatter(data []byte) ([]byte, string, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(content, "---\n") {
		return nil, "", errors.New("file does not start with YAML frontmatter (---)")
	}

	rest := content[len("---\n"):]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		if !strings.HasSuffix(rest, "\n---") {
			return nil, "", errors.New("unclosed frontmatter (missing closing ---)")
		}
		idx = len(rest) - len("\n---")
	}

	fm := rest[:idx]
	body := ""
	closingEnd := idx + len("\n---\n")
	if closingEnd < len(rest) {
		body = strings.TrimLeft(rest[closingEnd:], "\n")
	}

	return []byte(fm), body, nil
}
