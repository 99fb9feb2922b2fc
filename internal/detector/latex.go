package detector

import (
	"regexp"
	"strings"
)

// latexRules run in order; each removes or unwraps one family of LaTeX
// constructs while keeping the readable prose.
var latexRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	// comments (escaped \% is not a comment)
	{regexp.MustCompile(`(?m)(^|[^\\])%.*$`), "$1"},
	// preamble commands
	{regexp.MustCompile(`\\(documentclass|usepackage|newacronym|bibliographystyle)\b[^}]*\{[^}]*\}(\{[^}]*\})?`), ""},
	{regexp.MustCompile(`\\(label|ref|cite|eqref|pageref|footnote)\{[^}]*\}`), ""},
	{regexp.MustCompile(`\\begin\{document\}`), ""},
	{regexp.MustCompile(`\\end\{document\}`), ""},
	// figures and tables, captions kept
	{regexp.MustCompile(`\\begin\{(figure|table)\}\[?[^\]]*\]?`), ""},
	{regexp.MustCompile(`\\end\{(figure|table)\}`), ""},
	{regexp.MustCompile(`\\includegraphics[^}]*\{[^}]*\}`), ""},
	{regexp.MustCompile(`\\centering`), ""},
	{regexp.MustCompile(`\\resizebox\{[^}]*\}\{[^}]*\}\{`), ""},
	{regexp.MustCompile(`\\begin\{tabular\}\{[^}]*\}`), ""},
	{regexp.MustCompile(`\\end\{tabular\}`), ""},
	{regexp.MustCompile(`\\(toprule|midrule|bottomrule|hline)`), ""},
	{regexp.MustCompile(`\\multirow\{[^}]*\}\{[^}]*\}`), ""},
	// display math reduced to a placeholder
	{regexp.MustCompile(`(?s)\\\[.*?\\\]`), "[formula]"},
	{regexp.MustCompile(`(?s)\\begin\{(equation|align|gather)\*?\}.*?\\end\{(equation|align|gather)\*?\}`), "[formula]"},
	// formatting macros unwrapped
	{regexp.MustCompile(`\\textbf\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\textit\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\texttt\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\emph\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\detokenize\{([^}]*)\}`), "$1"},
	// title block
	{regexp.MustCompile(`\\(title|titlerunning|author|authorrunning|institute|email|maketitle|keywords)\b(\[[^\]]*\])?\{`), ""},
	// section headings become plain lines
	{regexp.MustCompile(`\\section\*?\{([^}]*)\}`), "\n\n$1\n"},
	{regexp.MustCompile(`\\subsection\*?\{([^}]*)\}`), "\n$1\n"},
	{regexp.MustCompile(`\\subsubsection\*?\{([^}]*)\}`), "\n$1\n"},
	// lists
	{regexp.MustCompile(`\\begin\{(itemize|enumerate)\}\[?[^\]]*\]?`), ""},
	{regexp.MustCompile(`\\end\{(itemize|enumerate)\}`), ""},
	{regexp.MustCompile(`\\item`), "- "},
	{regexp.MustCompile(`\\caption\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`(?s)\\begin\{thebibliography\}.*?\\end\{thebibliography\}`), ""},
	// acronym macros read as their subject
	{regexp.MustCompile(`\\(gls|Gls|acrshort|acrlong|acrfull)\{[^}]*\}`), "LLMs"},
	{regexp.MustCompile(`\\(smallskip|medskip|bigskip|newline|newpage|clearpage|pagebreak)`), ""},
	{regexp.MustCompile(`\\(inst|and)\{?\d*\}?`), ""},
	// anything left: unwrap argument, then drop bare commands
	{regexp.MustCompile(`\\[a-zA-Z]+\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\[a-zA-Z]+`), ""},
	{regexp.MustCompile(`[{}]`), ""},
}

// latexLiterals rewrite the remaining TeX ligatures and separators.
// Ordered: the em-dash must be seen before the en-dash.
var latexLiterals = [][2]string{
	{"~", " "},
	{"``", `"`},
	{"''", `"`},
	{"---", "—"},
	{"--", "–"},
	{`\\`, "\n"},
	{"&", " "},
}

var (
	runsOfSpaces    = regexp.MustCompile(`[ \t]+`)
	whitespaceLines = regexp.MustCompile(`(?m)^[ \t]+$`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)

	sectionHeadRe = regexp.MustCompile(`\\section\*?\{([^}]*)\}`)
	abstractRe    = regexp.MustCompile(`(?s)\\begin\{abstract\}(.*?)\\end\{abstract\}`)
)

// StripLaTeX converts LaTeX source into readable prose: comments, preamble,
// figure/table/math environments, and formatting macros are removed while
// captions, section titles, and body text survive.
func StripLaTeX(text string) string {
	for _, rule := range latexRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	for _, lit := range latexLiterals {
		text = strings.ReplaceAll(text, lit[0], lit[1])
	}
	text = runsOfSpaces.ReplaceAllString(text, " ")
	text = whitespaceLines.ReplaceAllString(text, "")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Section is one named top-level unit of a LaTeX document, already
// stripped to prose.
type Section struct {
	Name string
	Text string
}

// ExtractSections returns the \section bodies in document order, each
// bounded by the next \section or \end{document}. The abstract environment,
// when present, is appended under the name "abstract".
func ExtractSections(tex string) []Section {
	heads := sectionHeadRe.FindAllStringSubmatchIndex(tex, -1)
	var sections []Section
	for i, m := range heads {
		name := strings.ToLower(strings.TrimSpace(tex[m[2]:m[3]]))
		end := len(tex)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		body := tex[m[1]:end]
		if idx := strings.Index(body, `\end{document}`); idx >= 0 {
			body = body[:idx]
		}
		sections = append(sections, Section{Name: name, Text: StripLaTeX(body)})
	}
	if m := abstractRe.FindStringSubmatch(tex); m != nil {
		sections = append(sections, Section{Name: "abstract", Text: StripLaTeX(m[1])})
	}
	return sections
}
