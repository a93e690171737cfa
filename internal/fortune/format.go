package fortune

import (
	"fmt"
	"strings"
)

// Format renders a fortune in the fixed chat layout. userName, when
// non-empty, is worked into the greeting line.
func Format(f *Fortune, userName string) string {
	var b strings.Builder

	b.WriteString(f.Intro)
	b.WriteString("\n")
	if userName != "" {
		b.WriteString(userName)
		b.WriteString("，")
	}
	b.WriteString("你的签上刻了什么？\n\n")

	fmt.Fprintf(&b, "＝＝＝ 御神签 第%s ＝＝＝\n", f.SignNumber)
	fmt.Fprintf(&b, "✨ 天启：%s\n", f.DivineTitle)
	fmt.Fprintf(&b, "🌸 运势：%s - %s\n\n", f.Level, f.Theme)

	for _, s := range f.Sections {
		fmt.Fprintf(&b, "▫ %s\n%s\n", s.Name, s.Content)
	}

	fmt.Fprintf(&b, "\n⚖ 真言偈：%s\n\n", f.Maxim)
	b.WriteString(f.End)
	b.WriteString("\n")

	return b.String()
}

// FormatMarkdown renders a fortune as markdown for the web UI.
func FormatMarkdown(f *Fortune) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 御神签 第%s\n\n", f.SignNumber)
	fmt.Fprintf(&b, "**天启**：%s\n\n", f.DivineTitle)
	fmt.Fprintf(&b, "**运势**：%s - %s\n\n", f.Level, f.Theme)
	fmt.Fprintf(&b, "> %s\n\n", f.Intro)

	for _, s := range f.Sections {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", s.Name, s.Content)
	}

	fmt.Fprintf(&b, "**真言偈**：%s\n\n", f.Maxim)
	fmt.Fprintf(&b, "%s\n", f.End)

	return b.String()
}
