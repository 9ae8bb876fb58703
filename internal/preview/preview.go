// Package preview assembles a self-contained HTML document from the
// artifact collection for sandboxed rendering in the canvas panel.
//
// The main document is the first HTML artifact (index.html preferred).
// Its relative stylesheet and script references are replaced by inline
// blocks containing the referenced sibling's content. Resolution is a
// single pass by exact filename equality: it does not recurse into the
// inlined content, and an unresolved reference leaves the original tag
// byte-for-byte untouched.
package preview

import (
	"regexp"
	"strings"

	"github.com/codecanvas/codecanvas/internal/artifact"
)

var (
	linkRe   = regexp.MustCompile(`<link\s+[^>]*?href=["']([^"']*)["'][^>]*?>`)
	scriptRe = regexp.MustCompile(`(?s)<script\s+[^>]*?src=["']([^"']*)["'][^>]*?>\s*</script>`)
)

// Render returns the inlined preview document, or "" when the collection
// contains no HTML artifact.
func Render(files []artifact.Artifact) string {
	main, ok := mainDocument(files)
	if !ok {
		return ""
	}

	doc := main.Content

	doc = linkRe.ReplaceAllStringFunc(doc, func(tag string) string {
		href := strings.TrimSpace(linkRe.FindStringSubmatch(tag)[1])
		if isAbsolute(href) {
			return tag
		}
		css, ok := byFilename(files, href)
		if !ok {
			return tag
		}
		return "<style>\n" + css.Content + "\n</style>"
	})

	doc = scriptRe.ReplaceAllStringFunc(doc, func(tag string) string {
		src := strings.TrimSpace(scriptRe.FindStringSubmatch(tag)[1])
		if isAbsolute(src) {
			return tag
		}
		js, ok := byFilename(files, src)
		if !ok {
			return tag
		}
		return "<script>\n" + js.Content + "\n</script>"
	})

	return doc
}

// Previewable reports whether any artifact could serve as main document.
func Previewable(files []artifact.Artifact) bool {
	_, ok := mainDocument(files)
	return ok
}

// mainDocument selects the document to preview: among artifacts whose
// filename ends in .html (case-insensitive), index.html wins, otherwise
// the first in collection order.
func mainDocument(files []artifact.Artifact) (artifact.Artifact, bool) {
	var first artifact.Artifact
	found := false
	for _, f := range files {
		name := strings.ToLower(f.Filename)
		if !strings.HasSuffix(name, ".html") {
			continue
		}
		if name == "index.html" {
			return f, true
		}
		if !found {
			first = f
			found = true
		}
	}
	return first, found
}

// byFilename finds a sibling by exact, case-sensitive filename equality.
// Deliberately fragile: no path normalization, no ./ stripping. The
// unmatched tag survives verbatim, which degrades gracefully.
func byFilename(files []artifact.Artifact, name string) (artifact.Artifact, bool) {
	for _, f := range files {
		if f.Filename == name {
			return f, true
		}
	}
	return artifact.Artifact{}, false
}

func isAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
