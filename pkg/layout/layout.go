// Package layout renders text into fixed-width terminal cells.
//
// Every function here measures display columns, not bytes or runes:
// combining marks are zero wide, CJK glyphs and emoji are two wide, and
// multi-codepoint emoji count as a single grapheme cluster. Callers can
// rely on the exact-width contract blindly; a cell that is too wide
// corrupts every column after it, one that is too narrow misaligns the
// whole sidebar.
package layout

import (
	"strings"

	"github.com/rivo/uniseg"
)

// ellipsis is three columns wide, which is what Fit budgets for it.
const ellipsis = "..."

// Width returns the display width of s in terminal columns.
func Width(s string) int {
	return uniseg.StringWidth(s)
}

// Fit lays text out into exactly width display columns.
//
// Text that fits is left-justified and padded, except very narrow
// content (width <= 2, typically a lone emoji) which is centered.
// Text that overflows is truncated on a grapheme boundary; when there
// is room an ellipsis marks the cut.
func Fit(text string, width int) string {
	if width <= 0 {
		return ""
	}

	tw := Width(text)
	if tw <= width {
		pad := width - tw
		if tw <= 2 && pad > 0 {
			left := pad / 2
			return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
		}
		return text + strings.Repeat(" ", pad)
	}

	if width <= 3 {
		kept, used := truncate(text, width)
		return kept + strings.Repeat(" ", width-used)
	}

	kept, used := truncate(text, width-3)
	return kept + ellipsis + strings.Repeat(" ", width-3-used)
}

// Center lays text out into exactly width columns with the content
// centered, truncating like Fit when it overflows. Used for the mode
// line in the sidebar header.
func Center(text string, width int) string {
	if width <= 0 {
		return ""
	}
	tw := Width(text)
	if tw > width {
		return Fit(text, width)
	}
	pad := width - tw
	left := pad / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
}

// FirstCluster returns the first grapheme cluster of s, or "" for an
// empty string. The collapsed sidebar shows this as a tab's whole label.
func FirstCluster(s string) string {
	if s == "" {
		return ""
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return cluster
}

// truncate keeps whole grapheme clusters while their cumulative width
// stays within max, returning the kept prefix and its width. A cluster
// that would overflow is dropped entirely, so a double-width glyph never
// straddles the cut.
func truncate(text string, max int) (string, int) {
	var b strings.Builder
	used := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		var cw int
		cluster, rest, cw, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+cw > max {
			break
		}
		b.WriteString(cluster)
		used += cw
	}
	return b.String(), used
}
