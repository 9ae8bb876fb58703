package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		wantProse  string
		wantBlocks []Block
	}{
		{
			name:      "no fences",
			text:      "just a plain answer",
			wantProse: "just a plain answer",
		},
		{
			name:      "single block with language",
			text:      "Here you go:\n```python\nprint('hi')\n```\nEnjoy!",
			wantProse: "Here you go:\n\nEnjoy!",
			wantBlocks: []Block{
				{Info: "python", Body: "print('hi')"},
			},
		},
		{
			name:      "language and filename hint",
			text:      "```python main.py\nprint('hi')\n```",
			wantProse: "",
			wantBlocks: []Block{
				{Info: "python main.py", Body: "print('hi')"},
			},
		},
		{
			name:      "multiple blocks in document order",
			text:      "First:\n```html index.html\n<p>a</p>\n```\nthen:\n```css style.css\nbody {}\n```\ndone",
			wantProse: "First:\n\nthen:\n\ndone",
			wantBlocks: []Block{
				{Info: "html index.html", Body: "<p>a</p>"},
				{Info: "css style.css", Body: "body {}"},
			},
		},
		{
			name:      "empty info string",
			text:      "```\nsome text\n```",
			wantProse: "",
			wantBlocks: []Block{
				{Info: "", Body: "some text"},
			},
		},
		{
			name:      "unterminated fence stays in prose",
			text:      "Oops:\n```python\nprint('hi')",
			wantProse: "Oops:\n```python\nprint('hi')",
		},
		{
			name:      "terminated block followed by unterminated fence",
			text:      "```js\nlet a = 1\n```\ntrailing ```python\nprint('hi')",
			wantProse: "trailing ```python\nprint('hi')",
			wantBlocks: []Block{
				{Info: "js", Body: "let a = 1"},
			},
		},
		{
			name:      "body whitespace trimmed",
			text:      "```go\n\n\tfmt.Println(1)\n\n```",
			wantProse: "",
			wantBlocks: []Block{
				{Info: "go", Body: "fmt.Println(1)"},
			},
		},
		{
			name:      "blocks never overlap",
			text:      "```a\nx\n```" + "```b\ny\n```",
			wantProse: "",
			wantBlocks: []Block{
				{Info: "a", Body: "x"},
				{Info: "b", Body: "y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prose, blocks := Blocks(tt.text)
			assert.Equal(t, tt.wantProse, prose)
			assert.Equal(t, tt.wantBlocks, blocks)
		})
	}
}
