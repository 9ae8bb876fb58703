package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codecanvas/codecanvas/internal/web/render"
)

func TestMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		notWant string
	}{
		{
			name: "emphasis",
			in:   "hello **world**",
			want: "<strong>world</strong>",
		},
		{
			name:    "raw html is omitted",
			in:      `<script>alert(1)</script>`,
			want:    "raw HTML omitted",
			notWant: "<script>",
		},
		{
			name: "gfm table",
			in:   "| a | b |\n|---|---|\n| 1 | 2 |",
			want: "<table>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := render.Markdown(tt.in)
			assert.Contains(t, out, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, out, tt.notWant)
			}
		})
	}
}

func TestCode(t *testing.T) {
	t.Parallel()

	out := render.Code("package main\n\nfunc main() {}\n", "go")
	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, "main")

	// Unknown language still produces highlighted or escaped output.
	out = render.Code("<b>not code</b>", "no-such-language")
	assert.NotContains(t, out, "<b>not code</b>")
}
