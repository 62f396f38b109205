package rendering

import "strings"

// EscapeHTML escapes text for insertion into HTML element content or a
// quoted attribute. Braces are encoded so that no "{TOKEN}" shaped text
// reaches the markup.
func EscapeHTML(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/4)

	for _, r := range text {
		switch r {
		case '&':
			result.WriteString("&amp;")
		case '<':
			result.WriteString("&lt;")
		case '>':
			result.WriteString("&gt;")
		case '"':
			result.WriteString("&#34;")
		case '\'':
			result.WriteString("&#39;")
		case '{':
			result.WriteString("&#123;")
		case '}':
			result.WriteString("&#125;")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeMarkdown backslash-escapes the punctuation that Markdown would
// otherwise read as emphasis, links, headings, lists or raw HTML.
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/4)

	for _, r := range text {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '#', '<', '>', '|', '{', '}', '!':
			result.WriteRune('\\')
			result.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
