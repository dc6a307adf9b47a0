package analyzer

import (
	"regexp"
	"strings"
)

var jsonKeyPattern = regexp.MustCompile(`^\s*"([^"]+)"\s*:`)

// JSONAnalyzer classifies JSON documents. Top-level keys stand in for
// declarations; structure mode keeps the key outline.
type JSONAnalyzer struct{}

// NewJSONAnalyzer constructs a JSONAnalyzer.
func NewJSONAnalyzer() *JSONAnalyzer { return &JSONAnalyzer{} }

// Language implements Analyzer.
func (a *JSONAnalyzer) Language() string { return "JSON" }

// Extensions implements Analyzer.
func (a *JSONAnalyzer) Extensions() []string { return []string{".json"} }

// Analyze implements Analyzer.
func (a *JSONAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{Language: a.Language()}

	var smart []ScoredRange
	var structure []ScoredRange

	depth := 0
	maxDepth := 0

	for i, line := range lines {
		// Depth before this line's own brackets decides whether a key
		// on it is top-level.
		if depth == 1 {
			if caps := jsonKeyPattern.FindStringSubmatch(line); caps != nil {
				facts.Classes = append(facts.Classes, caps[1])
				r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceSection}
				smart = append(smart, r)
				structure = append(structure, r)
			}
		}

		depth += bracketDelta(line)
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	facts.MaxDepth = maxDepth
	facts.Category = categorize(relPath, nil)
	facts.Classes = capList(facts.Classes, 20)

	// Keep the enclosing braces so the outline reads as a document.
	if len(lines) > 0 && len(structure) > 0 {
		first := ScoredRange{Range: Range{Start: 0, End: 1}, Salience: salienceSection}
		last := ScoredRange{Range: Range{Start: len(lines) - 1, End: len(lines)}, Salience: salienceSection}
		smart = append(smart, first, last)
		structure = append(structure, first, last)
	}

	return Analysis{
		Facts:     facts,
		Smart:     NormalizeRanges(smart, len(lines)),
		Structure: plainRanges(NormalizeRanges(structure, len(lines))),
	}
}

// bracketDelta tracks nesting outside of string literals.
func bracketDelta(line string) int {
	delta := 0
	inString := false
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{' || r == '[':
			delta++
		case r == '}' || r == ']':
			delta--
		}
	}

	return delta
}

var yamlKeyPattern = regexp.MustCompile(`^([A-Za-z_][\w-]*):`)

// YAMLAnalyzer classifies YAML documents by their top-level keys.
type YAMLAnalyzer struct{}

// NewYAMLAnalyzer constructs a YAMLAnalyzer.
func NewYAMLAnalyzer() *YAMLAnalyzer { return &YAMLAnalyzer{} }

// Language implements Analyzer.
func (a *YAMLAnalyzer) Language() string { return "YAML" }

// Extensions implements Analyzer.
func (a *YAMLAnalyzer) Extensions() []string { return []string{".yaml", ".yml"} }

// Analyze implements Analyzer.
func (a *YAMLAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{Language: a.Language()}

	var smart []ScoredRange
	var structure []ScoredRange

	for i, line := range lines {
		if caps := yamlKeyPattern.FindStringSubmatch(line); caps != nil {
			facts.Classes = append(facts.Classes, caps[1])
			r := ScoredRange{Range: Range{Start: i, End: i + 1}, Salience: salienceSection}
			smart = append(smart, r)
			structure = append(structure, r)
		}

		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			facts.HasDocs = true
			facts.Markers = scanMarker(facts.Markers, line, i+1)
		}
	}

	facts.Category = categorize(relPath, nil)
	facts.Classes = capList(facts.Classes, 20)
	facts.Markers = capList(facts.Markers, 5)

	return Analysis{
		Facts:     facts,
		Smart:     NormalizeRanges(smart, len(lines)),
		Structure: plainRanges(NormalizeRanges(structure, len(lines))),
	}
}
