package schema

import (
	"slices"
	"strings"
	"unicode"
)

// TruncateName shortens a company name to at most width runes, adding an ellipsis when cut.
func TruncateName(name string, width int) string {
	trimmed := strings.TrimSpace(name)
	rr := []rune(trimmed)
	if width <= 0 || len(rr) <= width {
		return trimmed
	}
	if width <= 3 {
		return string(rr[:width])
	}
	return strings.TrimRightFunc(string(rr[:width-3]), unicode.IsSpace) + "..."
}

// HumanizeKey turns a dotted metric key into a readable title.
// "financials.free_cash_flow" becomes "Free Cash Flow".
func HumanizeKey(key string) string {
	last := strings.TrimPrefix(key, CalcPrefix)
	if i := strings.LastIndex(last, "."); i >= 0 {
		last = last[i+1:]
	}
	words := strings.FieldsFunc(last, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		rr := []rune(w)
		rr[0] = unicode.ToUpper(rr[0])
		words[i] = string(rr)
	}
	return strings.Join(words, " ")
}

// FormatPeers joins peer IDs for display, showing at most limit of them.
func FormatPeers(ids []string, limit int) string {
	if limit <= 0 || len(ids) <= limit {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:limit], ", ") + ", ..."
}

// PeersEqual reports whether two peer lists hold the same IDs regardless of order.
func PeersEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	aSorted := slices.Clone(a)
	slices.Sort(aSorted)
	bSorted := slices.Clone(b)
	slices.Sort(bSorted)
	return slices.Equal(aSorted, bSorted)
}
