package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"repolens.dev/pkg/repolens/internal/adapter"
	"repolens.dev/pkg/repolens/internal/controller"
	"repolens.dev/pkg/repolens/internal/domain/analyzer"
	m "repolens.dev/pkg/repolens/internal/model"
)

// MetaFileName is the synthetic first record announcing the run.
const MetaFileName = ".repolens_meta"

// analysisWorkers bounds the parallel candidate analysis in batch
// mode. Parallelism is internal only; output stays deterministic.
var analysisWorkers = runtime.NumCPU()

// RunResult summarizes one serialization run.
type RunResult struct {
	EmittedCount int
	Report       m.BudgetReport
	Budgeted     bool
}

// Emitter orchestrates the pipeline: walk → filter → analyze →
// prioritize → allocate → truncate → frame. Everything flows through
// Options; the only state kept across runs is the custom lenses that a
// run's repo config registers with the lens manager.
type Emitter struct {
	fs        adapter.SourceFSAdapter
	ui        controller.UI
	lenses    *LensManager
	truncator *Truncator
}

// NewEmitter wires an emitter from its collaborators.
func NewEmitter(fs adapter.SourceFSAdapter, ui controller.UI) *Emitter {
	return &Emitter{
		fs:        fs,
		ui:        ui,
		lenses:    NewLensManager(),
		truncator: NewTruncator(analyzer.NewRegistry()),
	}
}

// Lenses exposes the lens manager (for the lenses command).
func (e *Emitter) Lenses() *LensManager { return e.lenses }

// Run serializes the tree under root into sink. Configuration errors
// are fatal before any output; per-file errors skip the file and the
// run continues; sink errors terminate the run.
func (e *Emitter) Run(ctx context.Context, root m.Path, opts m.Options, sink io.Writer) (RunResult, error) {
	slog.Debug("starting serialization", "root", root, "lens", opts.Lens, "budget", opts.Budget, "streaming", opts.Streaming)

	eff, err := e.lenses.Resolve(opts, opts.Config)
	if err != nil {
		return RunResult{}, err
	}

	set, err := CompilePatternSet(eff.Include, eff.Exclude)
	if err != nil {
		return RunResult{}, err
	}

	if eff.Lens.Name != "" {
		e.ui.LensManifest(eff.Lens)
	}

	for _, w := range opts.ConfigWarnings {
		e.ui.Warn(w)
	}

	resolver := NewPriorityResolver(eff.Groups, opts.Store)

	if opts.Streaming {
		return e.runStreaming(ctx, root, opts, eff, set, resolver, sink)
	}

	return e.runBatch(ctx, root, opts, eff, set, resolver, sink)
}

// runBatch buffers candidate metadata (never content) until all
// candidates are known, allocates, then emits in sort order.
func (e *Emitter) runBatch(ctx context.Context, root m.Path, opts m.Options, eff EffectiveOptions, set *PatternSet, resolver *PriorityResolver, sink io.Writer) (RunResult, error) {
	descriptors, err := e.collectDescriptors(ctx, root, opts, set, resolver)
	if err != nil {
		return RunResult{}, err
	}

	candidates, err := e.analyzeCandidates(ctx, descriptors, eff)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{}

	var selected []m.Candidate

	if opts.Budget > 0 {
		selected, result.Report = Allocate(candidates, opts.Budget, effectiveStrategy(opts), candidateTieBreak(eff.SortBy, eff.SortOrder))
		result.Budgeted = true
	} else {
		selected = make([]m.Candidate, len(candidates))
		copy(selected, candidates)

		for i := range selected {
			selected[i].Method = m.MethodFull
		}
	}

	sortCandidates(selected, eff.SortBy, eff.SortOrder)

	if opts.EmitMeta && len(selected) > 0 {
		if err := e.emitRecord(sink, e.metaRecord(eff.Lens, newestModTime(selected)), m.MethodFull); err != nil {
			return result, err
		}

		result.EmittedCount++
	}

	for _, cand := range selected {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		emitted, err := e.emitCandidate(sink, cand, eff)
		if err != nil {
			return result, err
		}

		if emitted {
			result.EmittedCount++
		}
	}

	if result.Budgeted {
		e.ui.BudgetReport(result.Report)
	}

	return result, nil
}

// runStreaming emits each admitted file as soon as it is read, in
// walker (directory lexicographic) order. Global sort ordering is
// suppressed; the budget is applied greedily on arrival.
func (e *Emitter) runStreaming(ctx context.Context, root m.Path, opts m.Options, eff EffectiveOptions, set *PatternSet, resolver *PriorityResolver, sink io.Writer) (RunResult, error) {
	e.ui.Note("streaming mode: sort ordering suppressed, files emitted in traversal order")

	allocator := newStreamAllocator(opts.Budget, effectiveStrategy(opts))
	result := RunResult{Budgeted: opts.Budget > 0}

	metaPending := opts.EmitMeta

	err := e.walkAdmitted(ctx, root, opts, set, resolver, func(cand m.Candidate) error {
		e.fillCosts(&cand, eff)

		admitted, ok := allocator.Admit(cand)
		if !ok {
			return nil
		}

		if metaPending {
			// Streaming cannot know the newest mtime up front, so the
			// meta record omits the timestamp to stay deterministic.
			if err := e.emitRecord(sink, e.metaRecord(eff.Lens, time.Time{}), m.MethodFull); err != nil {
				return err
			}

			result.EmittedCount++
			metaPending = false
		}

		emitted, err := e.emitCandidate(sink, admitted, eff)
		if err != nil {
			return err
		}

		if emitted {
			result.EmittedCount++
		}

		return nil
	})
	if err != nil {
		return result, err
	}

	result.Report = allocator.Report()

	if result.Budgeted {
		e.ui.BudgetReport(result.Report)
	}

	return result, nil
}

// walkAdmitted drives the walker, applies pruning, the glob set, the
// size filter and the priority floor, and hands surviving
// candidates (costs not yet filled) to fn in traversal order.
func (e *Emitter) walkAdmitted(ctx context.Context, root m.Path, opts m.Options, set *PatternSet, resolver *PriorityResolver, fn func(m.Candidate) error) error {
	maxBytes := opts.EffectiveMaxFileBytes()

	return e.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Permission or disappearance on a subtree: report, skip,
			// continue the run.
			e.ui.SkipNotice(m.Path(path), "walk error: "+err.Error())

			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		desc, derr := e.fs.Describe(root, path, info)
		if derr != nil {
			e.ui.SkipNotice(m.Path(path), derr.Error())
			return nil
		}

		rel := string(desc.RelPath)

		if info.IsDir() {
			if rel == "." {
				return nil
			}

			if set.Prunes(rel) {
				slog.Debug("pruned directory", "path", rel)
				return filepath.SkipDir
			}

			return nil
		}

		if rel == adapter.RepoConfigFileName || rel == adapter.PriorityStoreFileName {
			// The tool's own control files never appear in output.
			return nil
		}

		if !set.Admits(rel) {
			return nil
		}

		if desc.Size > maxBytes {
			e.ui.SkipNotice(desc.RelPath, "file too large")
			return nil
		}

		res := resolver.Resolve(rel)
		if !res.Always && res.Priority < opts.MinPriority {
			e.ui.SkipNotice(desc.RelPath, fmt.Sprintf("priority %d below floor %d", res.Priority, opts.MinPriority))
			return nil
		}

		return fn(m.Candidate{
			Desc:     desc,
			Priority: res.Priority,
			Always:   res.Always,
			Mode:     res.Mode,
		})
	})
}

// collectDescriptors is the batch first pass: it gathers candidate
// stubs in traversal order without reading file contents.
func (e *Emitter) collectDescriptors(ctx context.Context, root m.Path, opts m.Options, set *PatternSet, resolver *PriorityResolver) ([]m.Candidate, error) {
	var candidates []m.Candidate

	err := e.walkAdmitted(ctx, root, opts, set, resolver, func(cand m.Candidate) error {
		candidates = append(candidates, cand)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

// analyzeCandidates computes token costs for every candidate stub,
// reading and analyzing files with bounded parallelism. Candidates
// whose read fails are skipped here. Results keep traversal order.
func (e *Emitter) analyzeCandidates(ctx context.Context, stubs []m.Candidate, eff EffectiveOptions) ([]m.Candidate, error) {
	out := make([]*m.Candidate, len(stubs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(analysisWorkers)

	for i := range stubs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			cand := stubs[i]

			text, err := e.fs.ReadText(cand.Desc.AbsPath)
			if err != nil {
				e.ui.SkipNotice(cand.Desc.RelPath, readSkipReason(err))
				return nil
			}

			e.fillCostsFromText(&cand, eff, text)
			out[i] = &cand

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]m.Candidate, 0, len(out))

	for _, c := range out {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	return candidates, nil
}

// fillCosts reads the candidate's file and computes its cost pair.
// Used on the streaming path where content is read exactly once per
// decision point.
func (e *Emitter) fillCosts(cand *m.Candidate, eff EffectiveOptions) {
	text, err := e.fs.ReadText(cand.Desc.AbsPath)
	if err != nil {
		// Leave costs zero: the allocator admits it, and emission
		// will skip it with a diagnostic.
		return
	}

	e.fillCostsFromText(cand, eff, text)
}

func (e *Emitter) fillCostsFromText(cand *m.Candidate, eff EffectiveOptions, text string) {
	rel := string(cand.Desc.RelPath)

	if cand.Mode == "" {
		cand.Mode = eff.TruncateMode
	}

	cand.Limit = eff.TruncateLines

	full := e.truncator.Truncate(rel, text, cand.Mode, cand.Limit)
	cand.FullCost = EstimateRecordTokens(rel, full.Content)

	structural := e.truncator.Truncate(rel, text, m.TruncateStructure, cand.Limit)
	cand.StructCost = EstimateRecordTokens(rel, structural.Content)
}

// emitCandidate reads, truncates, frames and writes one file. Read
// failures skip the file; sink failures propagate.
func (e *Emitter) emitCandidate(sink io.Writer, cand m.Candidate, eff EffectiveOptions) (bool, error) {
	rel := string(cand.Desc.RelPath)

	text, err := e.fs.ReadText(cand.Desc.AbsPath)
	if err != nil {
		e.ui.SkipNotice(cand.Desc.RelPath, readSkipReason(err))
		return false, nil
	}

	mode := cand.Mode
	if cand.Method == m.MethodStructured {
		mode = m.TruncateStructure
	}

	trunc := e.truncator.Truncate(rel, text, mode, cand.Limit)

	rec := m.EmissionRecord{
		RelPath:       cand.Desc.RelPath,
		Content:       trunc.Content,
		MD5:           ContentDigest(text),
		OriginalLines: trunc.OriginalLines,
		FinalLines:    trunc.FinalLines,
		Truncated:     trunc.Truncated,
	}

	if err := e.emitRecord(sink, rec, cand.Method); err != nil {
		return false, err
	}

	return true, nil
}

// emitRecord frames one record into a per-file buffer and writes it to
// the sink in a single call, so an abandoned consumer never sees a
// start marker without its end marker from this process.
func (e *Emitter) emitRecord(sink io.Writer, rec m.EmissionRecord, method m.AllocMethod) error {
	var buf bytes.Buffer

	if err := FrameRecord(&buf, rec); err != nil {
		return err
	}

	if _, err := sink.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	e.ui.FileEmitted(rec, method)

	return nil
}

// metaRecord builds the synthetic first record. A zero time omits the
// generated line so streaming output stays deterministic.
func (e *Emitter) metaRecord(lens m.Lens, when time.Time) m.EmissionRecord {
	name := lens.Name
	if name == "" {
		name = "none"
	}

	content := "lens: " + name + "\n"

	if lens.Description != "" {
		content += "description: " + lens.Description + "\n"
	}

	if !when.IsZero() {
		content += "generated: " + when.UTC().Format(time.RFC3339) + "\n"
	}

	return m.EmissionRecord{
		RelPath:       MetaFileName,
		Content:       content,
		MD5:           ContentDigest(content),
		OriginalLines: len(SplitLines(content)),
		FinalLines:    len(SplitLines(content)),
	}
}

func newestModTime(cands []m.Candidate) time.Time {
	var newest time.Time

	for _, c := range cands {
		if c.Desc.ModTime.After(newest) {
			newest = c.Desc.ModTime
		}
	}

	return newest
}

func effectiveStrategy(opts m.Options) m.BudgetStrategy {
	if opts.Strategy == "" {
		return m.StrategyHybrid
	}

	return opts.Strategy
}

func readSkipReason(err error) string {
	if errors.Is(err, m.ErrBinaryFile) {
		return "likely binary"
	}

	return "read error: " + err.Error()
}

// candidateTieBreak compares candidates by the effective sort key for
// the allocator's selection order.
func candidateTieBreak(key m.SortKey, order m.SortOrder) func(a, b m.Candidate) int {
	return func(a, b m.Candidate) int {
		c := compareByKey(a, b, key)
		if order == m.SortDesc {
			c = -c
		}

		return c
	}
}

func compareByKey(a, b m.Candidate, key m.SortKey) int {
	switch key {
	case m.SortByMtime:
		return a.Desc.ModTime.Compare(b.Desc.ModTime)
	case m.SortByCtime:
		return a.Desc.CreateTime.Compare(b.Desc.CreateTime)
	default:
		switch {
		case a.Desc.RelPath < b.Desc.RelPath:
			return -1
		case a.Desc.RelPath > b.Desc.RelPath:
			return 1
		}

		return 0
	}
}

// sortCandidates orders batch output by the effective sort key, then
// priority descending, then relative path.
func sortCandidates(cands []m.Candidate, key m.SortKey, order m.SortOrder) {
	sort.SliceStable(cands, func(i, j int) bool {
		c := compareByKey(cands[i], cands[j], key)
		if order == m.SortDesc {
			c = -c
		}

		if c != 0 {
			return c < 0
		}

		if cands[i].Priority != cands[j].Priority {
			return cands[i].Priority > cands[j].Priority
		}

		return cands[i].Desc.RelPath < cands[j].Desc.RelPath
	})
}
