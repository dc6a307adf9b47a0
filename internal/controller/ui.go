// Package controller provides the diagnostic channel implementations
// for repolens runs. The channel is distinct from the main output: it
// carries skip notices, the lens manifest, progress and the budget
// report, never file content.
package controller

import (
	m "repolens.dev/pkg/repolens/internal/model"
)

// UI is the diagnostic channel. Implementations can render to plain
// stderr or to an interactive terminal; the emitter does not care.
// Notes, warnings and skip notices are single lines prefixed with a
// level tag; the lens manifest and the budget report may span several
// lines.
type UI interface {
	// Start prepares the UI; Close flushes and releases it.
	Start() error
	Close()

	// LensManifest announces the active lens at the start of a run.
	LensManifest(lens m.Lens)

	// SkipNotice reports a non-fatal per-file exclusion.
	SkipNotice(path m.Path, reason string)

	// Note carries one informational diagnostic line.
	Note(line string)

	// Warn carries one warning diagnostic line.
	Warn(line string)

	// FileEmitted reports one framed record for progress displays.
	FileEmitted(rec m.EmissionRecord, method m.AllocMethod)

	// BudgetReport renders the allocation summary at the end of a
	// budgeted run.
	BudgetReport(report m.BudgetReport)
}
