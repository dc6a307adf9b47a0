package analyzer

import (
	"regexp"
	"strings"
)

var (
	shFuncPattern    = regexp.MustCompile(`^\s*(?:function\s+)?([A-Za-z_]\w*)\s*\(\s*\)`)
	shFuncKwPattern  = regexp.MustCompile(`^\s*function\s+([A-Za-z_]\w*)`)
	shSourcePattern  = regexp.MustCompile(`^\s*(?:source|\.)\s+(\S+)`)
	shCommentPattern = regexp.MustCompile(`^\s*#`)
)

// ShellAnalyzer classifies shell scripts (.sh, .bash, .zsh, .fish).
type ShellAnalyzer struct{}

// NewShellAnalyzer constructs a ShellAnalyzer.
func NewShellAnalyzer() *ShellAnalyzer { return &ShellAnalyzer{} }

// Language implements Analyzer.
func (a *ShellAnalyzer) Language() string { return "Shell" }

// Extensions implements Analyzer.
func (a *ShellAnalyzer) Extensions() []string {
	return []string{".sh", ".bash", ".zsh", ".fish"}
}

// Analyze implements Analyzer.
func (a *ShellAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{Language: a.Language()}

	var smart []ScoredRange
	var structure []ScoredRange

	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		facts.EntryPoints = append(facts.EntryPoints, "shebang "+strings.TrimSpace(lines[0][2:]))
		r := ScoredRange{Range: Range{Start: 0, End: 1}, Salience: salienceEntryPoint}
		smart = append(smart, r)
		structure = append(structure, r)
	}

	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "#!") {
			continue
		}

		switch {
		case shSourcePattern.MatchString(line):
			facts.Imports = append(facts.Imports, shSourcePattern.FindStringSubmatch(line)[1])
			r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceImports}
			smart = append(smart, r)
			structure = append(structure, r)

		case shFuncPattern.MatchString(line):
			facts.Functions = append(facts.Functions, shFuncPattern.FindStringSubmatch(line)[1])
			start := shCommentPrefix(lines, i)
			smart = append(smart, ScoredRange{Range: Range{Start: start, End: i + 1}, Salience: salienceFunction})
			structure = append(structure, ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceFunction})

		case shFuncKwPattern.MatchString(line):
			facts.Functions = append(facts.Functions, shFuncKwPattern.FindStringSubmatch(line)[1])
			start := shCommentPrefix(lines, i)
			smart = append(smart, ScoredRange{Range: Range{Start: start, End: i + 1}, Salience: salienceFunction})
			structure = append(structure, ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceFunction})
		}

		if shCommentPattern.MatchString(line) {
			facts.Markers = scanMarker(facts.Markers, line, i+1)
		}
	}

	facts.Category = categorize(relPath, facts.EntryPoints)
	facts.Functions = capList(facts.Functions, 20)
	facts.Imports = capList(facts.Imports, 10)
	facts.Markers = capList(facts.Markers, 5)

	return Analysis{
		Facts:     facts,
		Smart:     NormalizeRanges(smart, len(lines)),
		Structure: plainRanges(NormalizeRanges(structure, len(lines))),
	}
}

// shCommentPrefix extends a function declaration upward over the
// comment block directly above it.
func shCommentPrefix(lines []string, i int) int {
	start := i

	for start > 0 && shCommentPattern.MatchString(lines[start-1]) && !strings.HasPrefix(lines[start-1], "#!") {
		start--
	}

	return start
}
