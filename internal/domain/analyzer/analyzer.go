// Package analyzer provides per-language line classifiers. Each
// analyzer consumes a file's lines and produces extracted facts plus
// the keep-range sets the truncator uses for smart and structure
// modes. Analyzers are deterministic, side-effect free, and operate on
// the line sequence only; they are pattern-based classifiers, not
// parsers.
package analyzer

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Facts are the constructs an analyzer recognized in a file. Lists are
// capped so summaries stay bounded; see capList.
type Facts struct {
	Language    string
	Category    string // application, test or library
	Classes     []string
	Functions   []string
	Imports     []string
	Exports     []string
	Decorators  []string
	EntryPoints []string
	Markers     []string
	MaxDepth    int // structural nesting depth, data formats only
	HasDocs     bool
}

// Range is a half-open interval [Start, End) of 0-based line indexes.
type Range struct {
	Start int
	End   int
}

// Len returns the number of lines the range covers.
func (r Range) Len() int { return r.End - r.Start }

// ScoredRange is a keep-range with an analyzer-assigned salience.
// Under a line budget, low-salience ranges are trimmed first; equal
// salience breaks ties by line number.
type ScoredRange struct {
	Range
	Salience int
}

// Salience tiers shared across analyzers.
const (
	salienceImports    = 90
	salienceEntryPoint = 85
	salienceModuleDocs = 80
	salienceClass      = 70
	salienceFunction   = 60
	salienceSection    = 40
	salienceBody       = 10
)

// Analysis is the full output of one analyzer pass.
type Analysis struct {
	Facts Facts
	// Smart holds the keep-ranges for smart mode: signatures, nearby
	// documentation and entry points.
	Smart []ScoredRange
	// Structure holds the keep-ranges for structure mode: imports,
	// signatures and module-level documentation only. Empty for
	// unknown languages, which makes the truncator degrade to smart.
	Structure []Range
}

// Analyzer is the uniform contract every language implements.
type Analyzer interface {
	Language() string
	Extensions() []string
	Analyze(lines []string, relPath string) Analysis
}

// Registry maps file extensions to analyzers. Unknown extensions fall
// back to the plain analyzer. Lookups do not modify the registry and
// are safe for concurrent use once registration is done.
type Registry struct {
	byExt    map[string]Analyzer
	fallback Analyzer
}

// NewRegistry builds the registry with all built-in analyzers.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:    map[string]Analyzer{},
		fallback: NewPlainAnalyzer(),
	}

	for _, a := range []Analyzer{
		NewPythonAnalyzer(),
		NewJavaScriptAnalyzer(),
		NewRustAnalyzer(),
		NewShellAnalyzer(),
		NewMarkdownAnalyzer(),
		NewJSONAnalyzer(),
		NewYAMLAnalyzer(),
	} {
		r.Register(a)
	}

	return r
}

// Register installs an analyzer for each of its extensions. Later
// registrations win, which lets callers override a built-in.
func (r *Registry) Register(a Analyzer) {
	for _, ext := range a.Extensions() {
		r.byExt[strings.ToLower(ext)] = a
	}
}

// ForPath returns the analyzer for the path's extension, or the plain
// fallback when the extension is unknown.
func (r *Registry) ForPath(relPath string) Analyzer {
	ext := strings.ToLower(path.Ext(relPath))
	if a, ok := r.byExt[ext]; ok {
		return a
	}

	return r.fallback
}

// Known reports whether a non-fallback analyzer handles the path.
func (r *Registry) Known(relPath string) bool {
	_, ok := r.byExt[strings.ToLower(path.Ext(relPath))]
	return ok
}

// markerPattern matches followup markers in comment text.
var markerPattern = regexp.MustCompile(`(TODO|FIXME|XXX|HACK|NOTE):?\s*(\S.*)?$`)

// scanMarker records a marker fact for the given line, if present.
func scanMarker(markers []string, line string, lineNum int) []string {
	caps := markerPattern.FindStringSubmatch(line)
	if caps == nil {
		return markers
	}

	return append(markers, caps[1]+" (line "+strconv.Itoa(lineNum)+")")
}

// categorize classifies a file as application, test or library from
// its entry points and path.
func categorize(relPath string, entryPoints []string) string {
	if len(entryPoints) > 0 {
		return "application"
	}

	lower := strings.ToLower(relPath)
	if strings.Contains(lower, "test") {
		return "test"
	}

	return "library"
}

// capList bounds a fact list so emitted summaries stay short.
func capList(items []string, max int) []string {
	if len(items) <= max {
		return items
	}

	return items[:max]
}

// NormalizeRanges sorts, clips and merges overlapping or adjacent
// ranges, keeping the highest salience of merged members. The result
// is ordered by line number.
func NormalizeRanges(ranges []ScoredRange, totalLines int) []ScoredRange {
	clipped := make([]ScoredRange, 0, len(ranges))

	for _, r := range ranges {
		if r.Start < 0 {
			r.Start = 0
		}

		if r.End > totalLines {
			r.End = totalLines
		}

		if r.Start < r.End {
			clipped = append(clipped, r)
		}
	}

	sort.Slice(clipped, func(i, j int) bool {
		if clipped[i].Start != clipped[j].Start {
			return clipped[i].Start < clipped[j].Start
		}

		return clipped[i].End < clipped[j].End
	})

	merged := make([]ScoredRange, 0, len(clipped))

	for _, r := range clipped {
		if len(merged) > 0 && r.Start <= merged[len(merged)-1].End {
			last := &merged[len(merged)-1]
			if r.End > last.End {
				last.End = r.End
			}

			if r.Salience > last.Salience {
				last.Salience = r.Salience
			}

			continue
		}

		merged = append(merged, r)
	}

	return merged
}

// plainRanges converts scored ranges to plain ones.
func plainRanges(ranges []ScoredRange) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.Range)
	}

	return out
}

// PlainAnalyzer is the degenerate fallback for unknown extensions: the
// smart keep-range covers every line and the structure set is empty.
type PlainAnalyzer struct{}

// NewPlainAnalyzer constructs the fallback analyzer.
func NewPlainAnalyzer() *PlainAnalyzer { return &PlainAnalyzer{} }

// Language implements Analyzer.
func (a *PlainAnalyzer) Language() string { return "Text" }

// Extensions implements Analyzer. The fallback owns no extensions.
func (a *PlainAnalyzer) Extensions() []string { return nil }

// Analyze implements Analyzer.
func (a *PlainAnalyzer) Analyze(lines []string, relPath string) Analysis {
	facts := Facts{
		Language: a.Language(),
		Category: categorize(relPath, nil),
	}

	var smart []ScoredRange
	if len(lines) > 0 {
		smart = []ScoredRange{{Range: Range{Start: 0, End: len(lines)}, Salience: salienceBody}}
	}

	return Analysis{Facts: facts, Smart: smart}
}
