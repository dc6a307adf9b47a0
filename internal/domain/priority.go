package domain

import (
	"math"

	m "repolens.dev/pkg/repolens/internal/model"
)

// Weights of the static/learned blend.
const (
	staticWeight  = 0.7
	learnedWeight = 0.3
)

// PriorityResolver maps each file to a priority in [0, 100], blending
// the lens's static priority groups with the learned utility store.
// Group patterns are compiled once per invocation.
type PriorityResolver struct {
	groups   []m.PriorityGroup
	patterns []Pattern
	store    map[string]m.StoreEntry
}

// NewPriorityResolver compiles the group patterns. Groups whose
// pattern does not compile are skipped; the caller validates patterns
// up front when it wants compile errors to be fatal.
func NewPriorityResolver(groups []m.PriorityGroup, store map[string]m.StoreEntry) *PriorityResolver {
	r := &PriorityResolver{store: store}

	for _, g := range groups {
		p, err := CompilePattern(g.Pattern)
		if err != nil {
			continue
		}

		r.groups = append(r.groups, g)
		r.patterns = append(r.patterns, p)
	}

	return r
}

// Resolution is the resolver's verdict for one file.
type Resolution struct {
	Priority int
	Always   bool
	// Mode is a per-group truncation override, empty when none applies.
	Mode m.TruncateMode
}

// Resolve computes the final priority for a relative path.
func (r *PriorityResolver) Resolve(relPath string) Resolution {
	res := Resolution{Priority: m.DefaultPriority}

	// Static: the highest-priority matching group wins.
	matched := false

	for i, g := range r.groups {
		if !r.patterns[i].Match(relPath) {
			continue
		}

		if !matched || g.Priority > res.Priority {
			res.Priority = g.Priority
			res.Mode = g.Truncate
		}

		if g.Always {
			res.Always = true
		}

		matched = true
	}

	// Learned: blend the store's utility when present.
	if entry, ok := r.store[relPath]; ok {
		utility := clampUnit(entry.Utility)
		blended := staticWeight*float64(res.Priority) + learnedWeight*utility*100
		res.Priority = int(math.Round(blended))

		if entry.HasTag(m.AlwaysIncludeTag) {
			res.Always = true
		}
	}

	res.Priority = clampPriority(res.Priority)

	return res
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

func clampPriority(p int) int {
	if p < 0 {
		return 0
	}

	if p > 100 {
		return 100
	}

	return p
}
