package analyzer

import (
	"regexp"
	"strings"
)

var (
	jsClassPattern    = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	jsFuncPattern     = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(async\s+)?function\s*\*?\s*(\w+)`)
	jsArrowPattern    = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(async\s+)?(?:\([^)]*\)|\w+)\s*=>`)
	jsTypePattern     = regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?(?:interface|type|enum)\s+(\w+)`)
	jsImportPattern   = regexp.MustCompile(`^\s*import\s+(?:[\w*{},\s]+\s+from\s+)?['"]([^'"]+)['"]`)
	jsRequirePattern  = regexp.MustCompile(`^\s*(?:const|let|var)\s+[\w{},\s]+\s*=\s*require\(['"]([^'"]+)['"]\)`)
	jsExportPattern   = regexp.MustCompile(`^\s*export\s+(?:\{([^}]*)\}|default\s+(\w+)|(?:const|let|var|function|class|interface|type|enum)\s+(\w+))`)
	jsDocOpenPattern  = regexp.MustCompile(`^\s*/\*\*`)
	jsCommentPattern  = regexp.MustCompile(`^\s*(//|/\*|\*)`)
	jsDecoratorLine   = regexp.MustCompile(`^\s*@([\w.]+)`)
	jsDocClosePattern = regexp.MustCompile(`\*/`)
)

// JavaScriptAnalyzer classifies JavaScript and TypeScript sources.
type JavaScriptAnalyzer struct{}

// NewJavaScriptAnalyzer constructs a JavaScriptAnalyzer.
func NewJavaScriptAnalyzer() *JavaScriptAnalyzer { return &JavaScriptAnalyzer{} }

// Language implements Analyzer.
func (a *JavaScriptAnalyzer) Language() string { return "JavaScript" }

// Extensions implements Analyzer.
func (a *JavaScriptAnalyzer) Extensions() []string {
	return []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}
}

// Analyze implements Analyzer.
func (a *JavaScriptAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{Language: a.Language()}

	var smart []ScoredRange
	var structure []ScoredRange

	for i, line := range lines {
		prefix := jsDocPrefix(lines, i)

		switch {
		case jsImportPattern.MatchString(line):
			facts.Imports = append(facts.Imports, jsImportPattern.FindStringSubmatch(line)[1])
			r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceImports}
			smart = append(smart, r)
			structure = append(structure, r)

		case jsRequirePattern.MatchString(line):
			facts.Imports = append(facts.Imports, jsRequirePattern.FindStringSubmatch(line)[1])
			r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceImports}
			smart = append(smart, r)
			structure = append(structure, r)

		case jsClassPattern.MatchString(line):
			facts.Classes = append(facts.Classes, jsClassPattern.FindStringSubmatch(line)[1])

			if jsDocOpenPattern.MatchString(lines[prefix]) {
				facts.HasDocs = true
			}

			smart = append(smart, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceClass})
			structure = append(structure, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceClass})

		case jsTypePattern.MatchString(line):
			facts.Classes = append(facts.Classes, jsTypePattern.FindStringSubmatch(line)[1])
			smart = append(smart, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceClass})
			structure = append(structure, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceClass})

		case jsFuncPattern.MatchString(line):
			caps := jsFuncPattern.FindStringSubmatch(line)
			name := caps[2]

			if caps[1] != "" {
				name = "async " + name
			}

			facts.Functions = append(facts.Functions, name)
			smart = append(smart, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceFunction})
			structure = append(structure, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceFunction})

		case jsArrowPattern.MatchString(line):
			caps := jsArrowPattern.FindStringSubmatch(line)
			name := caps[1]

			if caps[2] != "" {
				name = "async " + name
			}

			facts.Functions = append(facts.Functions, name)
			smart = append(smart, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceFunction})
			structure = append(structure, ScoredRange{Range: Range{Start: prefix, End: i + 1}, Salience: salienceFunction})
		}

		if caps := jsExportPattern.FindStringSubmatch(line); caps != nil {
			name := caps[1] + caps[2] + caps[3]
			facts.Exports = append(facts.Exports, strings.TrimSpace(name))

			r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceImports}
			smart = append(smart, r)
			structure = append(structure, r)
		}

		if caps := jsDecoratorLine.FindStringSubmatch(line); caps != nil {
			facts.Decorators = append(facts.Decorators, caps[1])
		}

		if jsDocOpenPattern.MatchString(line) {
			facts.HasDocs = true
		}

		if jsCommentPattern.MatchString(line) {
			facts.Markers = scanMarker(facts.Markers, line, i+1)
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

// jsDocPrefix returns the first line of a JSDoc block (and any
// decorator lines) ending directly above line i, or i itself.
func jsDocPrefix(lines []string, i int) int {
	start := i

	// Decorators sit between the doc block and the declaration.
	for start > 0 && jsDecoratorLine.MatchString(lines[start-1]) {
		start--
	}

	if start > 0 && jsDocClosePattern.MatchString(lines[start-1]) {
		for j := start - 1; j >= 0; j-- {
			if jsDocOpenPattern.MatchString(lines[j]) {
				return j
			}

			if !jsCommentPattern.MatchString(lines[j]) {
				break
			}
		}
	}

	return start
}
