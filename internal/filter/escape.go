package filter

import "strings"

// escapeClass is one kind of character sequence that is hidden from the
// structural parser behind a placeholder
type escapeClass int

const (
	escAt escapeClass = iota
	escComma
	escLParen
	escRParen
	escBackslash
)

// escapes lists the classes with their source text and placeholder.
// Source sequences are matched left to right, so `\\,` is an escaped
// backslash followed by a structural comma.
var escapes = []struct {
	class       escapeClass
	source      string
	placeholder string
}{
	{escAt, "@", "@at@"},
	{escComma, `\,`, "@comma@"},
	{escLParen, `\(`, "@lparen@"},
	{escRParen, `\)`, "@rparen@"},
	{escBackslash, `\\`, "@backslash@"},
}

// Escape replaces every literal @ and every escape pair (\, \( \) \\) with
// its placeholder, so structural commas and parentheses are the only ones
// left in the result
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		matched := false
		for _, esc := range escapes {
			if strings.HasPrefix(s[i:], esc.source) {
				b.WriteString(esc.placeholder)
				i += len(esc.source)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// Unescape turns placeholders back into their source text in a single
// pass. Unescape(Escape(s)) == s for every s: every @ in Escape output
// opens a placeholder, so a placeholder is never read across two others.
func Unescape(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '@' {
			matched := false
			for _, esc := range escapes {
				if strings.HasPrefix(s[i:], esc.placeholder) {
					b.WriteString(esc.source)
					i += len(esc.placeholder)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
