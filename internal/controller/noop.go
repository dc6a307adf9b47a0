package controller

import (
	m "repolens.dev/pkg/repolens/internal/model"
)

// NoopUI discards every diagnostic. Used by the pure Process entry
// point, which has no terminal attached.
type NoopUI struct{}

// NewNoopUI creates a NoopUI.
func NewNoopUI() *NoopUI { return &NoopUI{} }

// Start implements UI.
func (n *NoopUI) Start() error { return nil }

// Close implements UI.
func (n *NoopUI) Close() {}

// LensManifest implements UI.
func (n *NoopUI) LensManifest(m.Lens) {}

// SkipNotice implements UI.
func (n *NoopUI) SkipNotice(m.Path, string) {}

// Note implements UI.
func (n *NoopUI) Note(string) {}

// Warn implements UI.
func (n *NoopUI) Warn(string) {}

// FileEmitted implements UI.
func (n *NoopUI) FileEmitted(m.EmissionRecord, m.AllocMethod) {}

// BudgetReport implements UI.
func (n *NoopUI) BudgetReport(m.BudgetReport) {}
