package render

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// Truncate shortens s to at most width terminal cells, ending with an
// ellipsis when anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// Excerpt is PlainText followed by Truncate.
func Excerpt(raw string, width int) string {
	return Truncate(PlainText(raw), width)
}

// Date renders t as a short calendar date in local time. Zero renders as
// a dash.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006")
}

// TimeAgo renders t relative to now, e.g. "3 minutes ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
