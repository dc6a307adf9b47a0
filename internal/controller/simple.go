package controller

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	m "repolens.dev/pkg/repolens/internal/model"
)

var (
	manifestBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1)

	manifestTitleStyle = lipgloss.NewStyle().Bold(true)
)

// SimpleUI renders the diagnostic channel as plain lines on a writer,
// normally stderr. Safe to use while the main output streams to
// stdout.
type SimpleUI struct {
	out io.Writer
}

// NewSimpleUI creates a SimpleUI writing to out.
func NewSimpleUI(out io.Writer) *SimpleUI {
	return &SimpleUI{out: out}
}

// Start implements UI.
func (s *SimpleUI) Start() error { return nil }

// Close implements UI.
func (s *SimpleUI) Close() {}

// LensManifest implements UI.
func (s *SimpleUI) LensManifest(lens m.Lens) {
	body := manifestTitleStyle.Render("CONTEXT LENS: "+lens.Name) + "\n" + lens.Description

	details := ""
	if lens.TruncateMode != "" && lens.TruncateMode != m.TruncateNone {
		details += fmt.Sprintf("\ntruncation: %s", lens.TruncateMode)

		if lens.TruncateLines > 0 {
			details += fmt.Sprintf(" (%d lines)", lens.TruncateLines)
		}
	}

	if lens.SortBy != "" {
		details += fmt.Sprintf("\nsort: %s %s", lens.SortBy, lens.SortOrder)
	}

	if len(lens.Groups) > 0 {
		details += fmt.Sprintf("\npriority groups: %d", len(lens.Groups))
	}

	fmt.Fprintln(s.out, manifestBoxStyle.Render(body+details))
}

// SkipNotice implements UI.
func (s *SimpleUI) SkipNotice(path m.Path, reason string) {
	fmt.Fprintf(s.out, "[SKIP] %s (%s)\n", path, reason)
}

// Note implements UI.
func (s *SimpleUI) Note(line string) {
	fmt.Fprintf(s.out, "[INFO] %s\n", line)
}

// Warn implements UI.
func (s *SimpleUI) Warn(line string) {
	fmt.Fprintf(s.out, "[WARN] %s\n", line)
}

// FileEmitted implements UI.
func (s *SimpleUI) FileEmitted(rec m.EmissionRecord, method m.AllocMethod) {
	if rec.Truncated {
		fmt.Fprintf(s.out, "[KEEP] %s (%s, %d→%d lines)\n", rec.RelPath, method, rec.OriginalLines, rec.FinalLines)
		return
	}

	fmt.Fprintf(s.out, "[KEEP] %s (%s)\n", rec.RelPath, method)
}

// BudgetReport implements UI. The report renders as a table so the
// per-file allocation is scannable.
func (s *SimpleUI) BudgetReport(report m.BudgetReport) {
	fmt.Fprintf(s.out, "[INFO] budget %d tokens, used %d (%.1f%%), strategy %s\n",
		report.Budget, report.Used, report.UsedPercentage(), report.Strategy)
	fmt.Fprintf(s.out, "[INFO] files: %d included (%d structured), %d dropped\n",
		report.SelectedCount, report.TruncatedCount, report.DroppedCount)

	fmt.Fprint(s.out, renderAllocationTable(report))
}

func renderAllocationTable(report m.BudgetReport) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Priority", "Tokens", "Method"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})

	for _, a := range report.Included {
		table.Append(allocationRow(a))
	}

	for _, a := range report.Dropped {
		table.Append(allocationRow(a))
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total files %d", report.SelectedCount+report.DroppedCount),
		"",
		strconv.Itoa(report.Used),
		fmt.Sprintf("%.1f%%", report.UsedPercentage()),
	})

	table.Render()

	return buf.String()
}

func allocationRow(a m.FileAllocation) []string {
	return []string{
		string(a.Path),
		strconv.Itoa(a.Priority),
		strconv.Itoa(a.Tokens),
		string(a.Method),
	}
}
