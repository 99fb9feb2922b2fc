// Package scan discovers local image references and fenced diagram blocks
// in Markdown text. Scanning is pure: no side effects, safe to repeat.
package scan

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/checksum"
)

var (
	imageLinkRe    = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	diagramFenceRe = regexp.MustCompile("(?s)```plantuml[ \t]*\r?\n(.*?)```")
	diagramNameRe  = regexp.MustCompile(`^@startuml[ \t]+(\S+)`)
)

var remotePrefixes = []string{"http://", "https://", "ftp://", "//"}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".bmp": true, ".ico": true,
}

// DefaultDiagramName is used when a diagram block carries no name directive.
const DefaultDiagramName = "diagram"

// ImageReference is one local image link discovered in a document.
type ImageReference struct {
	Alt      string // display text, kept verbatim
	Original string // reference string exactly as written in the document
	Path     string // resolved absolute filesystem path
	Start    int    // byte span of the full match; diagnostics only,
	End      int    // rewriting is reference-string-based
}

// DiagramBlock is one fenced diagram-source block discovered in a document.
type DiagramBlock struct {
	Source string // trimmed diagram source
	Raw    string // full fenced match, verbatim, used as the substring to replace
	Name   string // display name from the @startuml directive
	Hash   string // short content hash of Source
}

// Filename returns the content-addressed output name for the rendered block.
// Identical source always yields the identical filename.
func (b DiagramBlock) Filename() string {
	return checksum.AssetName(b.Name, b.Hash)
}

// FindImageReferences returns every local image link in content, in document
// order. A link is local when its reference has no remote scheme prefix, its
// lowercased suffix is a known image extension, and it resolves against
// baseDir to an existing regular file. Anything else is excluded, not an
// error.
func FindImageReferences(content, baseDir string) []ImageReference {
	var out []ImageReference
	for _, idx := range imageLinkRe.FindAllStringSubmatchIndex(content, -1) {
		alt := content[idx[2]:idx[3]]
		ref := content[idx[4]:idx[5]]
		if isRemote(ref) || !hasImageExtension(ref) {
			continue
		}
		abs, ok := resolveLocal(ref, baseDir)
		if !ok {
			continue
		}
		out = append(out, ImageReference{
			Alt:      alt,
			Original: ref,
			Path:     abs,
			Start:    idx[0],
			End:      idx[1],
		})
	}
	return out
}

func isRemote(ref string) bool {
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(ref, prefix) {
			return true
		}
	}
	return false
}

func hasImageExtension(ref string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(ref))]
}

// resolveLocal joins ref with baseDir, collapses symlinks and .. segments,
// and reports whether the result is an existing regular file.
func resolveLocal(ref, baseDir string) (string, bool) {
	p := ref
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Missing files land here.
		return "", false
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return resolved, true
}

// FindDiagramBlocks returns every fenced plantuml block in content, in
// document order. An unterminated fence produces no match rather than a
// partial one.
func FindDiagramBlocks(content string) []DiagramBlock {
	var out []DiagramBlock
	for _, m := range diagramFenceRe.FindAllStringSubmatch(content, -1) {
		source := strings.TrimSpace(m[1])
		out = append(out, DiagramBlock{
			Source: source,
			Raw:    m[0],
			Name:   diagramName(source),
			Hash:   checksum.Short8(source),
		})
	}
	return out
}

// diagramName parses the token following @startuml on the first source line,
// falling back to DefaultDiagramName when absent or malformed.
func diagramName(source string) string {
	if m := diagramNameRe.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return DefaultDiagramName
}
