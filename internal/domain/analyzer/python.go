package analyzer

import (
	"regexp"
	"strings"
)

var (
	pyClassPattern     = regexp.MustCompile(`^\s*class\s+(\w+)`)
	pyDefPattern       = regexp.MustCompile(`^\s*(async\s+)?def\s+(\w+)`)
	pyImportPattern    = regexp.MustCompile(`^\s*(?:from\s+\S+\s+)?import\s+(.+)`)
	pyDecoratorPattern = regexp.MustCompile(`^\s*@([\w.]+)`)
	pyGuardPattern     = regexp.MustCompile(`^if\s+__name__\s*==\s*['"]__main__['"]`)
	pyDocDelimPattern  = regexp.MustCompile(`^\s*[ru]*("""|''')`)
	pyCommentPattern   = regexp.MustCompile(`^\s*#`)
)

// entryPointTail is how many lines after an entry-point marker the
// smart keep-range retains.
const entryPointTail = 20

// PythonAnalyzer classifies Python sources (.py, .pyw).
type PythonAnalyzer struct{}

// NewPythonAnalyzer constructs a PythonAnalyzer.
func NewPythonAnalyzer() *PythonAnalyzer { return &PythonAnalyzer{} }

// Language implements Analyzer.
func (a *PythonAnalyzer) Language() string { return "Python" }

// Extensions implements Analyzer.
func (a *PythonAnalyzer) Extensions() []string { return []string{".py", ".pyw"} }

// Analyze implements Analyzer.
func (a *PythonAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{Language: a.Language()}

	var smart []ScoredRange
	var structure []ScoredRange

	// Module docstring: a doc block before any other statement.
	if doc := moduleDocstringRange(lines); doc.Len() > 0 {
		facts.HasDocs = true
		smart = append(smart, ScoredRange{Range: doc, Salience: salienceModuleDocs})
		structure = append(structure, ScoredRange{Range: doc, Salience: salienceModuleDocs})
	}

	decoratorStart := -1 // first line of the decorator run above a signature

	for i, line := range lines {
		switch {
		case pyImportPattern.MatchString(line):
			facts.Imports = append(facts.Imports, strings.TrimSpace(pyImportPattern.FindStringSubmatch(line)[1]))
			r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceImports}
			smart = append(smart, r)
			structure = append(structure, r)
			decoratorStart = -1

		case pyDecoratorPattern.MatchString(line):
			facts.Decorators = append(facts.Decorators, pyDecoratorPattern.FindStringSubmatch(line)[1])

			if decoratorStart < 0 {
				decoratorStart = i
			}

		case pyClassPattern.MatchString(line):
			facts.Classes = append(facts.Classes, pyClassPattern.FindStringSubmatch(line)[1])
			smart = append(smart, signatureRange(lines, i, decoratorStart, salienceClass))
			structure = append(structure, declOnlyRange(i, decoratorStart, salienceClass))
			decoratorStart = -1

		case pyDefPattern.MatchString(line):
			caps := pyDefPattern.FindStringSubmatch(line)
			name := caps[2]

			if caps[1] != "" {
				name = "async " + name
			}

			facts.Functions = append(facts.Functions, name)
			smart = append(smart, signatureRange(lines, i, decoratorStart, salienceFunction))
			structure = append(structure, declOnlyRange(i, decoratorStart, salienceFunction))
			decoratorStart = -1

		case pyGuardPattern.MatchString(line):
			facts.EntryPoints = append(facts.EntryPoints, "__main__ block")
			smart = append(smart, ScoredRange{
				Range:    Range{Start: i, End: i + 1 + entryPointTail},
				Salience: salienceEntryPoint,
			})
			decoratorStart = -1

		default:
			if strings.TrimSpace(line) != "" {
				decoratorStart = -1
			}
		}

		if pyCommentPattern.MatchString(line) {
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

// moduleDocstringRange finds a docstring opening on the first
// non-blank, non-comment line and returns its extent.
func moduleDocstringRange(lines []string) Range {
	start := 0

	for start < len(lines) {
		trimmed := strings.TrimSpace(lines[start])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			start++
			continue
		}

		break
	}

	if start >= len(lines) {
		return Range{}
	}

	caps := pyDocDelimPattern.FindStringSubmatch(lines[start])
	if caps == nil {
		return Range{}
	}

	delim := caps[1]
	rest := lines[start][strings.Index(lines[start], delim)+len(delim):]

	if strings.Contains(rest, delim) {
		return Range{Start: start, End: start + 1}
	}

	for i := start + 1; i < len(lines); i++ {
		if strings.Contains(lines[i], delim) {
			return Range{Start: start, End: i + 1}
		}
	}

	return Range{Start: start, End: len(lines)}
}

// signatureRange covers the decorator run, the signature line, and a
// docstring immediately below it.
func signatureRange(lines []string, sigLine, decoratorStart, salience int) ScoredRange {
	start := sigLine
	if decoratorStart >= 0 {
		start = decoratorStart
	}

	end := sigLine + 1

	if sigLine+1 < len(lines) {
		if caps := pyDocDelimPattern.FindStringSubmatch(lines[sigLine+1]); caps != nil {
			delim := caps[1]
			rest := lines[sigLine+1][strings.Index(lines[sigLine+1], delim)+len(delim):]

			if strings.Contains(rest, delim) {
				end = sigLine + 2
			} else {
				end = len(lines)

				for i := sigLine + 2; i < len(lines); i++ {
					if strings.Contains(lines[i], delim) {
						end = i + 1
						break
					}
				}
			}
		}
	}

	return ScoredRange{Range: Range{Start: start, End: end}, Salience: salience}
}

// declOnlyRange covers the decorator run and the signature line only.
func declOnlyRange(sigLine, decoratorStart, salience int) ScoredRange {
	start := sigLine
	if decoratorStart >= 0 {
		start = decoratorStart
	}

	return ScoredRange{Range: Range{Start: start, End: sigLine + 1}, Salience: salience}
}
