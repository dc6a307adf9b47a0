package analyzer

import (
	"regexp"
	"strings"
)

var (
	mdHeaderPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)`)
	mdFencePattern  = regexp.MustCompile("^```")
	mdLinkPattern   = regexp.MustCompile(`\[[^\]]*\]\(([^)]+)\)`)
)

// mdSectionTail is how many lines after a header the smart keep-range
// retains, so each section keeps its opening paragraph.
const mdSectionTail = 3

// MarkdownAnalyzer classifies Markdown documents (.md, .markdown).
// Headers stand in for declarations: structure mode keeps the outline.
type MarkdownAnalyzer struct{}

// NewMarkdownAnalyzer constructs a MarkdownAnalyzer.
func NewMarkdownAnalyzer() *MarkdownAnalyzer { return &MarkdownAnalyzer{} }

// Language implements Analyzer.
func (a *MarkdownAnalyzer) Language() string { return "Markdown" }

// Extensions implements Analyzer.
func (a *MarkdownAnalyzer) Extensions() []string { return []string{".md", ".markdown"} }

// Analyze implements Analyzer.
func (a *MarkdownAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{Language: a.Language(), HasDocs: len(lines) > 0}

	var smart []ScoredRange
	var structure []ScoredRange

	inFence := false

	for i, line := range lines {
		if mdFencePattern.MatchString(line) {
			inFence = !inFence
			continue
		}

		if inFence {
			continue
		}

		if caps := mdHeaderPattern.FindStringSubmatch(line); caps != nil {
			depth := len(caps[1])
			facts.Classes = append(facts.Classes, strings.TrimSpace(caps[2]))

			// Deeper headers matter less under a line budget.
			salience := salienceModuleDocs - depth*5
			smart = append(smart, ScoredRange{
				Range:    Range{Start: i, End: i + 1 + mdSectionTail},
				Salience: salience,
			})
			structure = append(structure, ScoredRange{
				Range:    Range{Start: i, End: i + 1},
				Salience: salience,
			})
		}

		for _, caps := range mdLinkPattern.FindAllStringSubmatch(line, -1) {
			facts.Imports = append(facts.Imports, caps[1])
		}
	}

	// Always keep the opening of the document.
	if len(lines) > 0 {
		smart = append(smart, ScoredRange{
			Range:    Range{Start: 0, End: min(len(lines), 1+mdSectionTail)},
			Salience: salienceModuleDocs,
		})
	}

	facts.Category = categorize(relPath, nil)
	facts.Classes = capList(facts.Classes, 20)
	facts.Imports = capList(facts.Imports, 10)

	return Analysis{
		Facts:     facts,
		Smart:     NormalizeRanges(smart, len(lines)),
		Structure: plainRanges(NormalizeRanges(structure, len(lines))),
	}
}
