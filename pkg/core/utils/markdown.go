package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown normalizes a model-written answer: surrounding whitespace
// goes, and one outer code fence is unwrapped whatever its info string
// says (```markdown, ```json, or a bare ```).
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}

	body := strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```")
	// The info string runs to the first line break. A first line holding
	// spaces or braces is content, not an info string.
	if idx := strings.IndexByte(body, '\n'); idx >= 0 && !strings.ContainsAny(body[:idx], " \t{[") {
		body = body[idx+1:]
	}
	return strings.TrimSpace(body)
}

// ValidateMarkdown reports whether the input parses to a non-empty
// markdown document. Goldmark accepts nearly anything, so false means
// the text was blank, not malformed.
func ValidateMarkdown(input string) bool {
	doc := goldmark.DefaultParser().Parse(text.NewReader([]byte(input)))
	return doc != nil && doc.HasChildren()
}
