package controller

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "repolens.dev/pkg/repolens/internal/model"
)

// recentEventCap bounds the scrollback the TUI keeps.
const recentEventCap = 12

var (
	tuiTitleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	tuiSkipStyle  = lipgloss.NewStyle().Faint(true)
	tuiKeepStyle  = lipgloss.NewStyle()
	tuiWarnStyle  = lipgloss.NewStyle().Bold(true)
)

// TUI renders the diagnostic channel as a live terminal view while the
// artifact streams to a file. It implements UI by translating calls
// into Bubble Tea messages.
type TUI struct {
	out     io.Writer
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewTUI creates a TUI rendering to out (normally stderr).
func NewTUI(out io.Writer) *TUI {
	return &TUI{out: out, done: make(chan struct{})}
}

// Start implements UI: it launches the Bubble Tea program.
func (t *TUI) Start() error {
	model := newPackModel()
	t.program = tea.NewProgram(model, tea.WithOutput(t.out))

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			fmt.Fprintf(t.out, "[ERROR] tui: %v\n", err)
		}
	}()

	return nil
}

// Close implements UI: it stops the program and waits for teardown.
func (t *TUI) Close() {
	t.once.Do(func() {
		if t.program == nil {
			return
		}

		t.program.Send(packDoneMsg{})
		<-t.done
	})
}

func (t *TUI) send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// LensManifest implements UI.
func (t *TUI) LensManifest(lens m.Lens) {
	t.send(lensMsg{name: lens.Name, description: lens.Description})
}

// SkipNotice implements UI.
func (t *TUI) SkipNotice(path m.Path, reason string) {
	t.send(eventMsg{line: fmt.Sprintf("skip %s (%s)", path, reason), style: tuiSkipStyle})
}

// Note implements UI.
func (t *TUI) Note(line string) {
	t.send(eventMsg{line: line, style: tuiKeepStyle})
}

// Warn implements UI.
func (t *TUI) Warn(line string) {
	t.send(eventMsg{line: line, style: tuiWarnStyle})
}

// FileEmitted implements UI.
func (t *TUI) FileEmitted(rec m.EmissionRecord, method m.AllocMethod) {
	t.send(emittedMsg{path: string(rec.RelPath), method: method})
}

// BudgetReport implements UI.
func (t *TUI) BudgetReport(report m.BudgetReport) {
	t.send(reportMsg{report: report})
}

type lensMsg struct {
	name        string
	description string
}

type eventMsg struct {
	line  string
	style lipgloss.Style
}

type emittedMsg struct {
	path   string
	method m.AllocMethod
}

type reportMsg struct {
	report m.BudgetReport
}

type packDoneMsg struct{}

// packModel is the Bubble Tea model for a running pack.
type packModel struct {
	spin     spinner.Model
	bar      progress.Model
	lensName string
	lensDesc string
	emitted  int
	skipped  int
	events   []string
	report   *m.BudgetReport
	finished bool
}

func newPackModel() packModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return packModel{
		spin: s,
		bar:  progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (p packModel) Init() tea.Cmd {
	return p.spin.Tick
}

// Update implements tea.Model.
func (p packModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return p, tea.Quit
		}

	case lensMsg:
		p.lensName = msg.name
		p.lensDesc = msg.description

	case eventMsg:
		if msg.style.GetFaint() {
			p.skipped++
		}

		p.pushEvent(msg.style.Render(msg.line))

	case emittedMsg:
		p.emitted++
		p.pushEvent(tuiKeepStyle.Render(fmt.Sprintf("keep %s (%s)", msg.path, msg.method)))

	case reportMsg:
		report := msg.report
		p.report = &report

	case packDoneMsg:
		p.finished = true
		return p, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)

		return p, cmd
	}

	return p, nil
}

func (p *packModel) pushEvent(line string) {
	p.events = append(p.events, line)
	if len(p.events) > recentEventCap {
		p.events = p.events[len(p.events)-recentEventCap:]
	}
}

// View implements tea.Model.
func (p packModel) View() string {
	title := "repolens"
	if p.lensName != "" {
		title += " · lens " + p.lensName
	}

	out := tuiTitleStyle.Render(title) + "\n"

	if !p.finished {
		out += p.spin.View() + " "
	}

	out += fmt.Sprintf("%d files emitted, %d skipped\n", p.emitted, p.skipped)

	if p.report != nil && p.report.Budget > 0 {
		out += p.bar.ViewAs(p.report.UsedPercentage()/100) + "\n"
		out += fmt.Sprintf("budget %d tokens, used %d, dropped %d files\n",
			p.report.Budget, p.report.Used, p.report.DroppedCount)
	}

	for _, e := range p.events {
		out += "  " + e + "\n"
	}

	return out
}
