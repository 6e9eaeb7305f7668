// Package timefmt renders times with the dayjs-style patterns stored in
// account profiles ("M-D-YY h:m:s A").
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// Longest tokens first so "MM" wins over "M".
var tokens = []struct {
	pattern, layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
	{"D", "2"},
	{"HH", "15"},
	{"H", "15"}, // Go has no unpadded 24h hour
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"A", "PM"},
	{"a", "pm"},
	{"ZZ", "-0700"},
	{"Z", "-07:00"},
}

type segment struct {
	text    string
	literal bool
}

// split breaks a pattern into Go layout elements and literal text. Bracketed
// text and characters that are not tokens are literal.
func split(pattern string) []segment {
	var segs []segment
	addLiteral := func(text string) {
		if n := len(segs); n > 0 && segs[n-1].literal {
			segs[n-1].text += text
			return
		}
		segs = append(segs, segment{text: text, literal: true})
	}

	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			end := strings.IndexByte(pattern[i:], ']')
			if end > 0 {
				addLiteral(pattern[i+1 : i+end])
				i += end + 1
				continue
			}
		}

		matched := false
		for _, tok := range tokens {
			if strings.HasPrefix(pattern[i:], tok.pattern) {
				segs = append(segs, segment{text: tok.layout})
				i += len(tok.pattern)
				matched = true
				break
			}
		}
		if !matched {
			addLiteral(pattern[i : i+1])
			i++
		}
	}
	return segs
}

// Layout converts a dayjs pattern to a Go reference layout. Go layouts have
// no escape, so literal text that spells a reference token (for example
// "[Mon]") is reinterpreted; Format does not have this limit.
func Layout(pattern string) string {
	var b strings.Builder
	for _, seg := range split(pattern) {
		b.WriteString(seg.text)
	}
	return b.String()
}

// Format renders t in local time with a dayjs pattern. Literal text is
// copied as is.
func Format(t time.Time, pattern string) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()

	var b strings.Builder
	for _, seg := range split(pattern) {
		switch {
		case seg.literal:
			b.WriteString(seg.text)
		case seg.text == "000":
			// fractional seconds need a leading dot in a Go layout
			fmt.Fprintf(&b, "%03d", t.Nanosecond()/int(time.Millisecond))
		default:
			b.WriteString(t.Format(seg.text))
		}
	}
	return b.String()
}
