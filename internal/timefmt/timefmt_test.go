package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	cases := map[string]string{
		"M-D-YY h:m:s A":       "1-2-06 3:4:5 PM",
		"YYYY-MM-DD HH:mm:ss":  "2006-01-02 15:04:05",
		"ddd, MMM D [at] h:mm": "Mon, Jan 2 at 3:04",
		"DD.MM.YYYY":           "02.01.2006",
	}
	for in, want := range cases {
		assert.Equal(t, want, Layout(in), in)
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 7, 14, 5, 9, 0, time.Local)
	assert.Equal(t, "3-7-24 2:5:9 PM", Format(ts, "M-D-YY h:m:s A"))
	assert.Equal(t, "", Format(time.Time{}, "YYYY"))
}

func TestFormatKeepsBracketedText(t *testing.T) {
	ts := time.Date(2024, 3, 7, 14, 5, 9, 0, time.Local)
	assert.Equal(t, "Mon 7 Jan PM", Format(ts, "[Mon] D [Jan PM]"))
	assert.Equal(t, "2024 at 2", Format(ts, "YYYY [at] h"))
}

func TestFormatLiteralDigits(t *testing.T) {
	ts := time.Date(2024, 3, 7, 14, 5, 9, 0, time.Local)
	assert.Equal(t, "1st of 3", Format(ts, "[1st of] M"))
	assert.Equal(t, "09.250", Format(ts.Add(250*time.Millisecond), "ss.SSS"))
}
