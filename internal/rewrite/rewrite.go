// Package rewrite performs order-correct, idempotent substitution of image
// references and diagram blocks in Markdown text. All functions are total:
// well-formed input never produces an error, and absent references degrade
// to a no-op.
package rewrite

import (
	"regexp"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/scan"
)

// ReplaceImageRefs returns content with every image link targeting a mapped
// reference rewritten to its resolved target. Entries apply longest key
// first, so a reference that textually contains another (assets/img.png vs
// img.png) is always consumed by the longer key. Substitution is anchored to
// the ![alt](ref) structure; a key occurring outside an image link is left
// alone. An empty mapping returns content unchanged, byte for byte.
func ReplaceImageRefs(content string, mapping map[string]string) string {
	if len(mapping) == 0 {
		return content
	}
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		content = replaceRef(content, key, mapping[key])
	}
	return content
}

// replaceRef rewrites every ![alt](ref) occurrence of one reference,
// preserving each occurrence's alt text verbatim.
func replaceRef(content, ref, target string) string {
	re := regexp.MustCompile(`!\[([^\]]*)\]\(` + regexp.QuoteMeta(ref) + `\)`)
	return re.ReplaceAllStringFunc(content, func(m string) string {
		// Alt text cannot contain ']', so the first "](" closes it.
		alt := m[2:strings.Index(m, "](")]
		return "![" + alt + "](" + target + ")"
	})
}

// ReplaceDiagramBlock substitutes every occurrence of the block's exact
// fenced text with an image embed line pointing at target. Identical block
// text maps to identical rendered output, so replacing all occurrences is
// sound. Returns content unchanged when the block text is absent.
func ReplaceDiagramBlock(content string, block scan.DiagramBlock, target string) string {
	embed := "![" + block.Name + "](" + target + ")"
	return strings.ReplaceAll(content, block.Raw, embed)
}
