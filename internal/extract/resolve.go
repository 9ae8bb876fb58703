package extract

import (
	"fmt"
	"strings"
)

// InfoKind classifies how much the info string tells us about a block.
type InfoKind int

const (
	// InfoUnknown means the info string was empty.
	InfoUnknown InfoKind = iota
	// InfoExplicit means both language and filename were declared.
	InfoExplicit
	// InfoFromExtension means a lone filename was declared; the language
	// is inferred from its extension.
	InfoFromExtension
	// InfoLanguageOnly means only a language tag was declared.
	InfoLanguageOnly
)

// Info is the parsed form of a fence info string.
type Info struct {
	Kind     InfoKind
	Language string
	Filename string
}

// DefaultLanguage is used when the info string carries no language hint.
const DefaultLanguage = "plaintext"

// langByExt maps known file extensions to canonical language tags.
// html maps to xml because that is what the syntax highlighter expects.
var langByExt = map[string]string{
	"js":   "javascript",
	"ts":   "typescript",
	"py":   "python",
	"rb":   "ruby",
	"html": "xml",
	"css":  "css",
	"json": "json",
	"md":   "markdown",
	"sh":   "bash",
	"java": "java",
	"go":   "go",
	"cpp":  "cpp",
	"cs":   "csharp",
	"php":  "php",
	"rs":   "rust",
}

// extByLang maps canonical language tags back to conventional extensions
// for synthesized filenames. Unknown languages fall back to "txt".
var extByLang = map[string]string{
	"javascript": "js",
	"typescript": "ts",
	"python":     "py",
	"html":       "html",
	"xml":        "html",
	"css":        "css",
	"json":       "json",
	"markdown":   "md",
	"bash":       "sh",
	"shell":      "sh",
	"java":       "java",
	"go":         "go",
	"cpp":        "cpp",
	"csharp":     "cs",
	"php":        "php",
	"rust":       "rs",
	"ruby":       "rb",
}

// ParseInfo splits an info string into its tagged variant.
// Tokens are whitespace-separated; values are taken verbatim.
func ParseInfo(info string) Info {
	parts := strings.Fields(info)
	switch {
	case len(parts) >= 2:
		return Info{Kind: InfoExplicit, Language: parts[0], Filename: parts[1]}
	case len(parts) == 1 && strings.Contains(parts[0], "."):
		name := parts[0]
		ext := name[strings.LastIndex(name, ".")+1:]
		lang, ok := langByExt[ext]
		if !ok {
			lang = ext
		}
		return Info{Kind: InfoFromExtension, Language: lang, Filename: name}
	case len(parts) == 1:
		return Info{Kind: InfoLanguageOnly, Language: parts[0]}
	default:
		return Info{Kind: InfoUnknown, Language: DefaultLanguage}
	}
}

// Resolve returns the filename and language for a block, synthesizing a
// filename when the info string does not determine one.
//
// sessionCount is the number of artifacts already in the session and
// batchIndex the number produced earlier in the same extraction batch, so
// synthesized names stay monotonic within one batch. Resolve never looks
// at the block body.
func Resolve(info string, sessionCount, batchIndex int) (filename, language string) {
	parsed := ParseInfo(info)
	if parsed.Filename != "" {
		return parsed.Filename, parsed.Language
	}
	return Fallback(parsed.Language, sessionCount, batchIndex), parsed.Language
}

// Fallback synthesizes a filename for a block whose info string did not
// determine one, or whose declared name cannot be used as-is.
func Fallback(language string, sessionCount, batchIndex int) string {
	ext, ok := extByLang[strings.ToLower(language)]
	if !ok {
		ext = "txt"
	}
	return fmt.Sprintf("script-%d.%s", 1+sessionCount+batchIndex, ext)
}
