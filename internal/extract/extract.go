// Package extract parses raw model output into conversational text and
// fenced code blocks, and resolves a filename and language for each block.
//
// A fence is three backticks followed by an optional info string on the
// same line; the body runs to the next three backticks (non-greedy). An
// unterminated fence is not matched and stays in the conversational text.
package extract

import (
	"regexp"
	"strings"
)

// fenceRe matches one complete fenced region: opening fence with info
// string, newline, body, closing fence. (?s) lets the body span lines;
// the body match is non-greedy so blocks never overlap.
var fenceRe = regexp.MustCompile("(?s)```([^\n]*)\n(.*?)```")

// Block is one extracted fenced region.
type Block struct {
	Info string // info string from the opening fence line, untrimmed
	Body string // block body with surrounding whitespace trimmed
}

// Blocks scans text for all complete fenced regions in document order.
// It returns the conversational text with every matched span removed and
// trimmed, plus the extracted blocks. Text before, between and after
// fences is preserved; only matched spans are cut.
func Blocks(text string) (prose string, blocks []Block) {
	matches := fenceRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(text), nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]
		blocks = append(blocks, Block{
			Info: text[m[2]:m[3]],
			Body: strings.TrimSpace(text[m[4]:m[5]]),
		})
	}
	b.WriteString(text[last:])

	return strings.TrimSpace(b.String()), blocks
}
