package document

import (
	"strings"
	"testing"
)

func TestParseSections_Seeded(t *testing.T) {
	sections := ParseSections(defaultStrategy)
	want := []string{"Strategy", "Vision", "Market Analysis", "Go-to-Market", "Risks"}
	got := SectionNames(sections)
	if len(got) != len(want) {
		t.Fatalf("SectionNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("section %d = %q, want %q", i, got[i], want[i])
		}
	}
	if sections[0].Level != 1 || sections[1].Level != 2 {
		t.Errorf("levels = %d,%d; want 1,2", sections[0].Level, sections[1].Level)
	}
}

func TestParseSections_IgnoresFencedHeaders(t *testing.T) {
	text := "## Real\nbody\n```\n## Not a header\n```\n## Also real\n"
	got := SectionNames(ParseSections(text))
	if len(got) != 2 || got[1] != "Also real" {
		t.Errorf("SectionNames() = %v, want [Real Also real]", got)
	}
}

func TestSectionBody(t *testing.T) {
	body, ok := SectionBody(defaultCanvas, "revenue streams")
	if !ok {
		t.Fatal("Revenue Streams not found")
	}
	if !strings.HasPrefix(body, "- Monthly subscription: $49") {
		t.Errorf("body = %q", body)
	}
	if _, ok := SectionBody(defaultCanvas, "Roadmap"); ok {
		t.Error("Roadmap should not be found")
	}
}

func TestInsertContent(t *testing.T) {
	text := "## A\n(pending)\n\n## B\nexisting\n"

	sections := ParseSections(text)
	got := InsertContent(text, FindSection(sections, "A"), "filled")
	if got != "## A\nfilled\n\n## B\nexisting\n" {
		t.Errorf("placeholder replace = %q", got)
	}

	sections = ParseSections(got)
	got = InsertContent(got, FindSection(sections, "B"), "more")
	if got != "## A\nfilled\n\n## B\nexisting\n\nmore\n" {
		t.Errorf("append = %q", got)
	}
}

func TestReplaceContent(t *testing.T) {
	text := "## A\nold\nlines\n\n## B\nkeep\n"
	s := FindSection(ParseSections(text), "A")
	got := ReplaceContent(text, s, "new")
	if got != "## A\nnew\n\n## B\nkeep\n" {
		t.Errorf("ReplaceContent() = %q", got)
	}
}

func TestAddSection(t *testing.T) {
	text := "# Doc\n\n## A\na\n\n## B\nb\n"

	got := AddSection(text, "New", "n", "B")
	if got != "# Doc\n\n## A\na\n\n## New\nn\n\n## B\nb\n" {
		t.Errorf("AddSection(before B) = %q", got)
	}

	got = AddSection(text, "New", "n", "Missing")
	if !strings.HasSuffix(got, "## B\nb\n\n## New\nn\n") {
		t.Errorf("AddSection(at end) = %q", got)
	}
}

func TestOutline(t *testing.T) {
	out := Outline("# Doc\n\n## A\nalpha\n\n## B\n")
	if out["A"] != "alpha" {
		t.Errorf("Outline()[A] = %q, want alpha", out["A"])
	}
	if v, ok := out["B"]; !ok || v != "" {
		t.Errorf("Outline()[B] = %q, %v; want empty, true", v, ok)
	}
}
