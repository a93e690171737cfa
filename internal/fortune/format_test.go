package fortune

import (
	"strings"
	"testing"
)

func TestFormatContainsAllFields(t *testing.T) {
	f := validFortune()
	out := Format(f, "")

	for _, want := range []string{f.Intro, f.SignNumber, f.DivineTitle, f.Level, f.Theme, f.Maxim, f.End} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q", want)
		}
	}
	for _, s := range f.Sections {
		if !strings.Contains(out, s.Name) || !strings.Contains(out, s.Content) {
			t.Errorf("formatted output missing section %q", s.Name)
		}
	}
}

func TestFormatWithUserName(t *testing.T) {
	out := Format(validFortune(), "小明")
	if !strings.Contains(out, "小明，你的签上刻了什么？") {
		t.Error("greeting should include user name")
	}

	out = Format(validFortune(), "")
	if strings.Contains(out, "，你的签上刻了什么？") {
		t.Error("greeting should omit the comma when no user name given")
	}
}

func TestFormatMarkdownSectionsAsHeadings(t *testing.T) {
	f := validFortune()
	out := FormatMarkdown(f)
	for _, s := range f.Sections {
		if !strings.Contains(out, "### "+s.Name) {
			t.Errorf("markdown output missing heading for %q", s.Name)
		}
	}
}
