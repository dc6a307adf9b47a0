package analyzer

import (
	"regexp"
	"strings"
)

var (
	rsStructPattern  = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?struct\s+(\w+)`)
	rsEnumPattern    = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?enum\s+(\w+)`)
	rsTraitPattern   = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:unsafe\s+)?trait\s+(\w+)`)
	rsImplPattern    = regexp.MustCompile(`^\s*impl(?:\s*<[^>]*>)?\s+([\w:]+)`)
	rsFnPattern      = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:const\s+)?(async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+(\w+)`)
	rsUsePattern     = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?use\s+([^;]+);`)
	rsModPattern     = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?mod\s+(\w+)`)
	rsAttrPattern    = regexp.MustCompile(`^\s*#!?\[`)
	rsDocPattern     = regexp.MustCompile(`^\s*//[/!]`)
	rsCommentPattern = regexp.MustCompile(`^\s*//`)
)

// RustAnalyzer classifies Rust sources (.rs).
type RustAnalyzer struct{}

// NewRustAnalyzer constructs a RustAnalyzer.
func NewRustAnalyzer() *RustAnalyzer { return &RustAnalyzer{} }

// Language implements Analyzer.
func (a *RustAnalyzer) Language() string { return "Rust" }

// Extensions implements Analyzer.
func (a *RustAnalyzer) Extensions() []string { return []string{".rs"} }

// Analyze implements Analyzer.
func (a *RustAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{Language: a.Language()}

	var smart []ScoredRange
	var structure []ScoredRange

	// Inner doc comments (//!) at the top are module documentation.
	if doc := rsModuleDocRange(lines); doc.Len() > 0 {
		facts.HasDocs = true
		smart = append(smart, ScoredRange{Range: doc, Salience: salienceModuleDocs})
		structure = append(structure, ScoredRange{Range: doc, Salience: salienceModuleDocs})
	}

	addDecl := func(i, salience int) {
		start := rsDeclPrefix(lines, i)
		smart = append(smart, ScoredRange{Range: Range{Start: start, End: i + 1}, Salience: salience})
		structure = append(structure, ScoredRange{Range: Range{Start: start, End: i + 1}, Salience: salience})
	}

	for i, line := range lines {
		switch {
		case rsUsePattern.MatchString(line):
			facts.Imports = append(facts.Imports, strings.TrimSpace(rsUsePattern.FindStringSubmatch(line)[1]))
			r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceImports}
			smart = append(smart, r)
			structure = append(structure, r)

		case rsStructPattern.MatchString(line):
			facts.Classes = append(facts.Classes, rsStructPattern.FindStringSubmatch(line)[1])
			addDecl(i, salienceClass)

		case rsEnumPattern.MatchString(line):
			facts.Classes = append(facts.Classes, rsEnumPattern.FindStringSubmatch(line)[1])
			addDecl(i, salienceClass)

		case rsTraitPattern.MatchString(line):
			facts.Classes = append(facts.Classes, rsTraitPattern.FindStringSubmatch(line)[1])
			addDecl(i, salienceClass)

		case rsImplPattern.MatchString(line):
			facts.Exports = append(facts.Exports, "impl "+rsImplPattern.FindStringSubmatch(line)[1])
			addDecl(i, salienceClass)

		case rsFnPattern.MatchString(line):
			caps := rsFnPattern.FindStringSubmatch(line)
			name := caps[2]

			if caps[1] != "" {
				name = "async " + name
			}

			facts.Functions = append(facts.Functions, name)

			if caps[2] == "main" {
				facts.EntryPoints = append(facts.EntryPoints, "fn main")
				smart = append(smart, ScoredRange{
					Range:    Range{Start: i, End: i + 1 + entryPointTail},
					Salience: salienceEntryPoint,
				})
			}

			addDecl(i, salienceFunction)

		case rsModPattern.MatchString(line):
			facts.Exports = append(facts.Exports, "mod "+rsModPattern.FindStringSubmatch(line)[1])
			addDecl(i, salienceFunction)
		}

		if rsCommentPattern.MatchString(line) {
			facts.Markers = scanMarker(facts.Markers, line, i+1)
		}

		if rsDocPattern.MatchString(line) {
			facts.HasDocs = true
		}
	}

	facts.Category = categorize(relPath, facts.EntryPoints)
	facts.Functions = capList(facts.Functions, 20)
	facts.Imports = capList(facts.Imports, 10)
	facts.Exports = capList(facts.Exports, 10)
	facts.Markers = capList(facts.Markers, 5)

	return Analysis{
		Facts:     facts,
		Smart:     NormalizeRanges(smart, len(lines)),
		Structure: plainRanges(NormalizeRanges(structure, len(lines))),
	}
}

// rsModuleDocRange returns the leading //! block, if any.
func rsModuleDocRange(lines []string) Range {
	end := 0

	for end < len(lines) {
		trimmed := strings.TrimSpace(lines[end])
		if strings.HasPrefix(trimmed, "//!") || trimmed == "" && end > 0 {
			end++
			continue
		}

		break
	}

	if end == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "//!") {
		return Range{}
	}

	return Range{Start: 0, End: end}
}

// rsDeclPrefix extends a declaration upward over contiguous attribute
// and doc-comment lines.
func rsDeclPrefix(lines []string, i int) int {
	start := i

	for start > 0 {
		prev := lines[start-1]
		if rsAttrPattern.MatchString(prev) || rsDocPattern.MatchString(prev) {
			start--
			continue
		}

		break
	}

	return start
}
