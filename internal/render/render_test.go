package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"paragraphs", "<p>one</p><p>two</p>", "one two"},
		{"inline tags", "a <strong>bold</strong> <em>move</em>", "a bold move"},
		{"entities", "<p>fish &amp; chips &lt;3</p>", "fish & chips <3"},
		{"whitespace", "  lots\n\n of\tspace  ", "lots of space"},
		{"script dropped", "ok<script>alert(1)</script> fine", "ok fine"},
		{"line break", "line<br>next", "line next"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "this is…", Truncate("this is too long", 8))
	assert.Equal(t, "", Truncate("anything", 0))

	got := Truncate("日本語のテキスト", 7)
	assert.LessOrEqual(t, len([]rune(got)), 4)
	assert.Contains(t, got, ellipsis)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Great post,…", Excerpt("<p>Great post, thanks!</p>", 12))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "-", Date(time.Time{}))
	d := time.Date(2024, 3, 9, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "Mar 9, 2024", Date(d))
}

func TestTimeAgo(t *testing.T) {
	assert.Equal(t, "-", TimeAgo(time.Time{}))
	assert.Equal(t, "3 minutes ago", TimeAgo(time.Now().Add(-3*time.Minute)))
}
