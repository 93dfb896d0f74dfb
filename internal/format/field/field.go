// Package field fits text into fixed-width display cells.
package field

import "strings"

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Fit truncates text to width runes and pads it to exactly width. Centred
// text puts the odd space on the right.
func Fit(text string, width int, align Alignment) string {
	if width <= 0 {
		return ""
	}
	text = Truncate(text, width)
	pad := width - cellWidth(text)
	var b strings.Builder
	switch align {
	case AlignRight:
		writeSpaces(&b, pad)
		b.WriteString(text)
	case AlignCenter:
		left := pad / 2
		writeSpaces(&b, left)
		b.WriteString(text)
		writeSpaces(&b, pad-left)
	default:
		b.WriteString(text)
		writeSpaces(&b, pad)
	}
	return b.String()
}

// Truncate cuts text to at most width runes.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width])
}

// Overflows reports whether text is wider than width.
func Overflows(text string, width int) bool {
	return cellWidth(text) > width
}

func cellWidth(text string) int {
	return len([]rune(text))
}

func writeSpaces(b *strings.Builder, count int) {
	for i := 0; i < count; i++ {
		b.WriteByte(' ')
	}
}
