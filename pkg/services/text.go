package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"portfolio/pkg/render"
)

// Font size steps, in px, for the visible character count of a text block
var fontSteps = []struct {
	below int
	size  int
}{
	{200, 16},
	{500, 15},
	{1000, 14},
	{2000, 13},
}

const smallestFontSize = 12

// FontSize maps a visible character count to a display size.
// Fewer characters give larger text.
func FontSize(chars int) int {
	for _, step := range fontSteps {
		if chars < step.below {
			return step.size
		}
	}
	return smallestFontSize
}

// StripTags returns the text content of a markup fragment
func StripTags(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// VisibleLength counts the characters of all paragraphs once markup is stripped
func VisibleLength(paragraphs []string) int {
	n := 0
	for _, p := range paragraphs {
		n += utf8.RuneCountInString(StripTags(p))
	}
	return n
}

// NewTextBlock builds a gallery text block: title plus one paragraph per entry
func NewTextBlock(key, title string, paragraphs []string) *render.Node {
	block := render.El("div", "gallery-text").SetAttr("data-project", key)
	block.Append(render.El("h2").WithText(title))
	FillParagraphs(block, paragraphs)
	return block
}

// FillParagraphs replaces every child of block except its title with the
// given paragraphs and recomputes the block font size
func FillParagraphs(block *render.Node, paragraphs []string) {
	kept := block.Children[:0]
	for _, c := range block.Children {
		if c.Tag == "h2" {
			kept = append(kept, c)
		}
	}
	block.Children = kept
	for _, p := range paragraphs {
		block.Append(render.El("p").WithRaw(p))
	}
	block.SetStyle("font-size", fmt.Sprintf("%dpx", FontSize(VisibleLength(paragraphs))))
}

// Paragraphs returns the raw markup of the paragraphs currently in block
func Paragraphs(block *render.Node) []string {
	var out []string
	for _, c := range block.Children {
		if c.Tag == "p" {
			out = append(out, c.Raw)
		}
	}
	return out
}
