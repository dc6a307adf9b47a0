package domain

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"repolens.dev/pkg/repolens/internal/domain/analyzer"
	m "repolens.dev/pkg/repolens/internal/model"
)

// SplitLines splits decoded text into lines, each keeping its own line
// ending. The final line may lack one. Empty text yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

func logicalLines(raw []string) []string {
	logical := make([]string, len(raw))
	for i, line := range raw {
		logical[i] = trimEOL(line)
	}

	return logical
}

// TruncationResult is what the truncator hands to the framing layer.
type TruncationResult struct {
	Content       string
	OriginalLines int
	// FinalLines counts retained source lines; annotation and gap
	// marker lines are not included.
	FinalLines int
	Truncated  bool
	// Mode is the mode that actually applied, after any degradation.
	Mode m.TruncateMode
}

// Truncator applies a truncation mode to file content using the
// analyzer registry. Structure mode with no structure ranges degrades
// to smart; an analyzer panic in smart or structure mode falls back to
// simple, since both depend on the analyzer. A run never aborts on them.
type Truncator struct {
	registry *analyzer.Registry
}

// NewTruncator creates a Truncator over the given registry.
func NewTruncator(registry *analyzer.Registry) *Truncator {
	return &Truncator{registry: registry}
}

// Registry exposes the analyzer registry for fact extraction.
func (t *Truncator) Registry() *analyzer.Registry { return t.registry }

// Truncate reduces text under the given mode and line limit.
func (t *Truncator) Truncate(relPath, text string, mode m.TruncateMode, limit int) TruncationResult {
	raw := SplitLines(text)
	original := len(raw)

	full := TruncationResult{
		Content:       text,
		OriginalLines: original,
		FinalLines:    original,
		Mode:          mode,
	}

	switch mode {
	case m.TruncateNone, "":
		full.Mode = m.TruncateNone
		return full

	case m.TruncateSimple:
		return t.truncateSimple(raw, original, limit)

	case m.TruncateSmart:
		analysis, ok := t.analyze(relPath, raw)
		if !ok {
			return t.truncateSimple(raw, original, limit)
		}

		return t.truncateSmart(raw, original, limit, analysis)

	case m.TruncateStructure:
		analysis, ok := t.analyze(relPath, raw)
		if !ok {
			return t.truncateSimple(raw, original, limit)
		}

		if len(analysis.Structure) == 0 {
			// Unknown language: degrade to smart.
			return t.truncateSmart(raw, original, limit, analysis)
		}

		return t.truncateStructure(raw, original, analysis)
	}

	full.Mode = m.TruncateNone

	return full
}

// analyze runs the file's analyzer, converting panics into a degrade
// signal.
func (t *Truncator) analyze(relPath string, raw []string) (analysis analyzer.Analysis, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analyzer panic, degrading truncation mode", "path", relPath, "panic", r)
			ok = false
		}
	}()

	analysis = t.registry.ForPath(relPath).Analyze(logicalLines(raw), relPath)
	ok = true

	return
}

func (t *Truncator) truncateSimple(raw []string, original, limit int) TruncationResult {
	if limit <= 0 || original <= limit {
		return TruncationResult{
			Content:       strings.Join(raw, ""),
			OriginalLines: original,
			FinalLines:    original,
			Mode:          m.TruncateSimple,
		}
	}

	var b strings.Builder
	writeLines(&b, raw[:limit])
	b.WriteString(truncationAnnotation(original, limit))

	return TruncationResult{
		Content:       b.String(),
		OriginalLines: original,
		FinalLines:    limit,
		Truncated:     true,
		Mode:          m.TruncateSimple,
	}
}

func (t *Truncator) truncateSmart(raw []string, original, limit int, analysis analyzer.Analysis) TruncationResult {
	kept := selectSmartRanges(analysis.Smart, limit)

	if coversAll(kept, original) {
		return TruncationResult{
			Content:       strings.Join(raw, ""),
			OriginalLines: original,
			FinalLines:    original,
			Mode:          m.TruncateSmart,
		}
	}

	var b strings.Builder

	final := 0
	cursor := 0

	for _, r := range kept {
		if r.Start > cursor {
			b.WriteString(gapMarker(cursor, r.Start))
		}

		writeLines(&b, raw[r.Start:r.End])

		final += r.Len()
		cursor = r.End
	}

	if cursor < original {
		b.WriteString(gapMarker(cursor, original))
	}

	b.WriteString(truncationAnnotation(original, final))
	b.WriteString(factsSummary(analysis.Facts))

	return TruncationResult{
		Content:       b.String(),
		OriginalLines: original,
		FinalLines:    final,
		Truncated:     true,
		Mode:          m.TruncateSmart,
	}
}

func (t *Truncator) truncateStructure(raw []string, original int, analysis analyzer.Analysis) TruncationResult {
	ranges := analysis.Structure

	if coversAllPlain(ranges, original) {
		return TruncationResult{
			Content:       strings.Join(raw, ""),
			OriginalLines: original,
			FinalLines:    original,
			Mode:          m.TruncateStructure,
		}
	}

	var b strings.Builder

	final := 0

	for _, r := range ranges {
		writeLines(&b, raw[r.Start:r.End])
		final += r.Len()
	}

	b.WriteString(truncationAnnotation(original, final))

	return TruncationResult{
		Content:       b.String(),
		OriginalLines: original,
		FinalLines:    final,
		Truncated:     true,
		Mode:          m.TruncateStructure,
	}
}

// selectSmartRanges trims keep-ranges to the line limit. Ranges are
// taken by salience descending (line number ascending as tie-break);
// import-tier ranges are always retained so recognized imports survive
// any limit. The result is ordered by line number.
func selectSmartRanges(ranges []analyzer.ScoredRange, limit int) []analyzer.ScoredRange {
	if limit <= 0 {
		return ranges
	}

	order := make([]analyzer.ScoredRange, len(ranges))
	copy(order, ranges)

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Salience != order[j].Salience {
			return order[i].Salience > order[j].Salience
		}

		return order[i].Start < order[j].Start
	})

	var kept []analyzer.ScoredRange

	total := 0

	for _, r := range order {
		if total+r.Len() > limit && !isImportTier(r) {
			continue
		}

		kept = append(kept, r)
		total += r.Len()
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })

	return kept
}

func isImportTier(r analyzer.ScoredRange) bool {
	return r.Salience >= 90
}

func coversAll(ranges []analyzer.ScoredRange, total int) bool {
	covered := 0
	for _, r := range ranges {
		covered += r.Len()
	}

	return covered >= total
}

func coversAllPlain(ranges []analyzer.Range, total int) bool {
	covered := 0
	for _, r := range ranges {
		covered += r.Len()
	}

	return covered >= total
}

// writeLines writes raw lines, ensuring each ends with a newline so
// marker lines that follow start on their own line.
func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)

		if !strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}
}

// gapMarker notes an omitted span. Bounds are 0-based half-open;
// the marker prints them 1-based inclusive.
func gapMarker(start, end int) string {
	return fmt.Sprintf("/* ... %d lines omitted (lines %d-%d) ... */\n", end-start, start+1, end)
}

func truncationAnnotation(original, final int) string {
	return fmt.Sprintf("/* TRUNCATED: %d lines → %d lines */\n", original, final)
}

// factsSummary renders the analyzer facts as a single summary line.
func factsSummary(facts analyzer.Facts) string {
	parts := []string{facts.Language + " " + facts.Category}

	if len(facts.Classes) > 0 {
		parts = append(parts, "classes: "+strings.Join(facts.Classes, ", "))
	}

	if len(facts.Functions) > 0 {
		parts = append(parts, "functions: "+strings.Join(facts.Functions, ", "))
	}

	if len(facts.Imports) > 0 {
		parts = append(parts, "imports: "+strings.Join(facts.Imports, ", "))
	}

	if len(facts.EntryPoints) > 0 {
		parts = append(parts, "entry: "+strings.Join(facts.EntryPoints, ", "))
	}

	if len(facts.Markers) > 0 {
		parts = append(parts, "markers: "+strings.Join(facts.Markers, ", "))
	}

	return "/* SUMMARY: " + strings.Join(parts, " | ") + " */\n"
}
