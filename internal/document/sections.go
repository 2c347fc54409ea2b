package document

import (
	"regexp"
	"slices"
	"strings"
)

// Section is a parsed markdown section boundary.
type Section struct {
	Header       string // full header line "## Revenue Streams"
	Name         string // "Revenue Streams"
	Level        int
	HeaderStart  int
	ContentStart int
	ContentEnd   int // before the next header of any level, or EOF
	Placeholder  bool
}

var headerPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+([^\n]+?)[ \t]*$`)

// fencePattern matches ``` or ~~~ fence delimiters with up to 3 spaces of indent.
var fencePattern = regexp.MustCompile("(?m)^[ ]{0,3}(`{3,}|~{3,})")

var placeholderValues = []string{"(pending)", "(none)", "(empty)", "(tbd)", "tbd", "n/a", "none", "pending", "-"}

// fencedRanges returns [start, end) offsets of fenced code blocks. A closing
// fence must use the opening character and be at least as long.
func fencedRanges(text string) [][2]int {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return nil
	}

	var (
		ranges    [][2]int
		openChar  byte
		openLen   int
		openStart int
		inFence   bool
	)
	for _, m := range matches {
		fence := text[m[2]:m[3]]
		switch {
		case !inFence:
			openChar, openLen, openStart, inFence = fence[0], len(fence), m[0], true
		case fence[0] == openChar && len(fence) >= openLen:
			ranges = append(ranges, [2]int{openStart, m[1]})
			inFence = false
		}
	}
	return ranges
}

func insideFence(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}

// ParseSections returns every markdown header outside fenced code blocks.
func ParseSections(text string) []Section {
	fences := fencedRanges(text)
	var matches [][]int
	for _, m := range headerPattern.FindAllStringSubmatchIndex(text, -1) {
		if !insideFence(m[0], fences) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, len(matches))
	for i, m := range matches {
		contentStart := m[1]
		if contentStart < len(text) && text[contentStart] == '\n' {
			contentStart++
		}
		contentEnd := len(text)
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		}
		body := ""
		if contentStart < contentEnd {
			body = text[contentStart:contentEnd]
		}
		sections[i] = Section{
			Header:       text[m[0]:m[1]],
			Name:         text[m[4]:m[5]],
			Level:        m[3] - m[2],
			HeaderStart:  m[0],
			ContentStart: contentStart,
			ContentEnd:   contentEnd,
			Placeholder:  isPlaceholder(body),
		}
	}
	return sections
}

// FindSection finds a section by header name, case-insensitively.
func FindSection(sections []Section, name string) *Section {
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range sections {
		if strings.ToLower(strings.TrimSpace(sections[i].Name)) == want {
			return &sections[i]
		}
	}
	return nil
}

// SectionBody returns the trimmed body of the named section and whether it exists.
func SectionBody(text, name string) (string, bool) {
	s := FindSection(ParseSections(text), name)
	if s == nil {
		return "", false
	}
	return strings.TrimSpace(text[s.ContentStart:s.ContentEnd]), true
}

// InsertContent replaces a placeholder body or appends to an existing one.
func InsertContent(text string, section *Section, content string) string {
	if section.Placeholder {
		return ReplaceContent(text, section, content)
	}
	existing := strings.TrimRight(text[section.ContentStart:section.ContentEnd], " \t\n")
	return text[:section.ContentStart] + existing + "\n\n" + content + "\n" + separator(text[section.ContentEnd:])
}

// ReplaceContent swaps a section's body for content.
func ReplaceContent(text string, section *Section, content string) string {
	return text[:section.ContentStart] + content + "\n" + separator(text[section.ContentEnd:])
}

// AddSection inserts a new "## name" section before the section called
// before, or at the end of text when before is not found.
func AddSection(text, name, content, before string) string {
	block := "## " + name + "\n" + content + "\n"
	if s := FindSection(ParseSections(text), before); s != nil && before != "" {
		return text[:s.HeaderStart] + block + "\n" + text[s.HeaderStart:]
	}
	return strings.TrimRight(text, " \t\n") + "\n\n" + block
}

// SectionNames lists header names in document order.
func SectionNames(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

// separator keeps one blank line before a following header.
func separator(rest string) string {
	if rest == "" {
		return ""
	}
	return "\n" + strings.TrimLeft(rest, "\n")
}

func isPlaceholder(body string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(body))
	return trimmed == "" || slices.Contains(placeholderValues, trimmed)
}

// Outline maps each header name to its trimmed body. It is the structured
// form stored next to a document's markdown.
func Outline(text string) map[string]string {
	sections := ParseSections(text)
	out := make(map[string]string, len(sections))
	for _, s := range sections {
		out[s.Name] = strings.TrimSpace(text[s.ContentStart:s.ContentEnd])
	}
	return out
}
