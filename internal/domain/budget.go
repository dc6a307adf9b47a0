package domain

import (
	"sort"

	m "repolens.dev/pkg/repolens/internal/model"
)

// hybridThreshold is the share of the budget above which the hybrid
// strategy preemptively switches a file to structure mode.
const hybridThreshold = 0.10

// Allocate fits candidates to a token budget under the given strategy
// and returns the admitted candidates (Method set) plus the report.
// Selection order is priority descending with the caller's sort key as
// tie-break; the emitter re-sorts admitted files for emission.
//
// Always-include candidates bypass the budget entirely (still subject
// to their per-file truncation mode).
func Allocate(candidates []m.Candidate, budget int, strategy m.BudgetStrategy, tieBreak func(a, b m.Candidate) int) ([]m.Candidate, m.BudgetReport) {
	report := m.BudgetReport{
		Budget:   budget,
		Strategy: strategy,
	}

	order := make([]m.Candidate, len(candidates))
	copy(order, candidates)

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Priority != order[j].Priority {
			return order[i].Priority > order[j].Priority
		}

		if tieBreak != nil {
			if c := tieBreak(order[i], order[j]); c != 0 {
				return c < 0
			}
		}

		return order[i].Desc.RelPath < order[j].Desc.RelPath
	})

	// Hybrid pre-pass: any file whose full cost exceeds 10% of the
	// budget is switched to structure mode before accumulation, so a
	// single large file cannot starve the rest.
	if strategy == m.StrategyHybrid && budget > 0 {
		threshold := int(float64(budget) * hybridThreshold)

		for i := range order {
			if order[i].FullCost > threshold && order[i].StructCost < order[i].FullCost {
				order[i].Mode = m.TruncateStructure
				order[i].Method = m.MethodStructured
			}
		}
	}

	var selected []m.Candidate

	used := 0

	for _, cand := range order {
		cost := cand.FullCost
		method := m.MethodFull

		if cand.Method == m.MethodStructured {
			cost = cand.StructCost
			method = m.MethodStructured
		}

		if cand.Always {
			cand.Method = method
			selected = append(selected, cand)
			report.Included = append(report.Included, allocation(cand, cost, method))

			continue
		}

		if used+cost <= budget {
			cand.Method = method
			selected = append(selected, cand)
			used += cost

			report.Included = append(report.Included, allocation(cand, cost, method))

			continue
		}

		// Overflow: drop, or force structure mode first.
		if (strategy == m.StrategyTruncate || strategy == m.StrategyHybrid) && method == m.MethodFull {
			if used+cand.StructCost <= budget {
				cand.Mode = m.TruncateStructure
				cand.Method = m.MethodStructured
				selected = append(selected, cand)
				used += cand.StructCost

				report.Included = append(report.Included, allocation(cand, cand.StructCost, m.MethodStructured))

				continue
			}
		}

		cand.Method = m.MethodDropped
		report.Dropped = append(report.Dropped, allocation(cand, cand.FullCost, m.MethodDropped))
	}

	report.Used = used
	report.SelectedCount = len(selected)
	report.DroppedCount = len(report.Dropped)

	for _, a := range report.Included {
		if a.Method == m.MethodStructured {
			report.TruncatedCount++
		}
	}

	return selected, report
}

func allocation(cand m.Candidate, tokens int, method m.AllocMethod) m.FileAllocation {
	return m.FileAllocation{
		Path:     cand.Desc.RelPath,
		Priority: cand.Priority,
		Tokens:   tokens,
		Method:   method,
	}
}

// streamAllocator applies the budget greedily in walker arrival order
// for streaming mode. Without the full candidate list, the hybrid
// pre-pass becomes a per-file rule applied on arrival.
type streamAllocator struct {
	budget   int
	strategy m.BudgetStrategy
	used     int
	report   m.BudgetReport
}

func newStreamAllocator(budget int, strategy m.BudgetStrategy) *streamAllocator {
	return &streamAllocator{
		budget:   budget,
		strategy: strategy,
		report: m.BudgetReport{
			Budget:   budget,
			Strategy: strategy,
		},
	}
}

// Admit decides one candidate's fate on arrival. It returns the
// candidate with Method set, or false when the file is dropped.
func (sa *streamAllocator) Admit(cand m.Candidate) (m.Candidate, bool) {
	if sa.budget <= 0 {
		cand.Method = m.MethodFull
		sa.admitRecord(cand, 0)

		return cand, true
	}

	cost := cand.FullCost
	method := m.MethodFull

	if sa.strategy == m.StrategyHybrid {
		threshold := int(float64(sa.budget) * hybridThreshold)
		if cand.FullCost > threshold && cand.StructCost < cand.FullCost {
			cost = cand.StructCost
			method = m.MethodStructured
		}
	}

	if cand.Always {
		cand.Method = method

		if method == m.MethodStructured {
			cand.Mode = m.TruncateStructure
		}

		sa.admitRecord(cand, cost)

		return cand, true
	}

	if sa.used+cost <= sa.budget {
		cand.Method = method

		if method == m.MethodStructured {
			cand.Mode = m.TruncateStructure
		}

		sa.used += cost
		sa.admitRecord(cand, cost)

		return cand, true
	}

	if (sa.strategy == m.StrategyTruncate || sa.strategy == m.StrategyHybrid) && method == m.MethodFull {
		if sa.used+cand.StructCost <= sa.budget {
			cand.Mode = m.TruncateStructure
			cand.Method = m.MethodStructured
			sa.used += cand.StructCost
			sa.admitRecord(cand, cand.StructCost)

			return cand, true
		}
	}

	cand.Method = m.MethodDropped
	sa.report.Dropped = append(sa.report.Dropped, allocation(cand, cand.FullCost, m.MethodDropped))
	sa.report.DroppedCount++

	return cand, false
}

func (sa *streamAllocator) admitRecord(cand m.Candidate, cost int) {
	sa.report.Included = append(sa.report.Included, allocation(cand, cost, cand.Method))
	sa.report.SelectedCount++

	if cand.Method == m.MethodStructured {
		sa.report.TruncatedCount++
	}
}

// Report finalizes and returns the streaming budget report.
func (sa *streamAllocator) Report() m.BudgetReport {
	sa.report.Used = sa.used
	return sa.report
}
