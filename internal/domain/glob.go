// Package domain contains the pure serialization pipeline: selection,
// analysis, truncation, budgeting and framing. It performs no I/O of
// its own; filesystem access goes through the adapter layer.
package domain

import (
	"fmt"
	"strings"

	m "repolens.dev/pkg/repolens/internal/model"
)

// Pattern is one compiled glob. Matching is case-sensitive and always
// against forward-slash relative paths. `*` matches within a single
// path segment, `**` matches zero or more whole segments, and a
// pattern without `/` matches any single path segment as well as the
// whole path.
type Pattern struct {
	raw  string
	segs []string
	bare bool
}

// CompilePattern validates and compiles a single glob pattern.
func CompilePattern(raw string) (Pattern, error) {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return Pattern{}, fmt.Errorf("%w: %q", m.ErrInvalidPattern, raw)
	}

	segs := strings.Split(trimmed, "/")
	for _, seg := range segs {
		if seg == "" {
			return Pattern{}, fmt.Errorf("%w: %q", m.ErrInvalidPattern, raw)
		}
	}

	return Pattern{
		raw:  raw,
		segs: segs,
		bare: len(segs) == 1 && segs[0] != "**",
	}, nil
}

// String returns the original pattern text.
func (p Pattern) String() string { return p.raw }

// Match reports whether the pattern matches the relative path.
func (p Pattern) Match(relPath string) bool {
	parts := splitPath(relPath)

	if matchSegments(p.segs, parts) {
		return true
	}

	if p.bare {
		for _, part := range parts {
			if matchSegment(p.segs[0], part) {
				return true
			}
		}
	}

	return false
}

// reachesInside reports whether the pattern could match some path
// strictly below the given directory. Used for conservative pruning:
// callers must not prune a directory this returns true for.
func (p Pattern) reachesInside(dirParts []string) bool {
	if p.bare {
		// A bare pattern matches a segment at any depth.
		return true
	}

	return segmentsReachInside(p.segs, dirParts)
}

func segmentsReachInside(pat, parts []string) bool {
	if len(pat) == 0 {
		return false
	}

	if pat[0] == "**" {
		// `**` absorbs the rest of the directory path and keeps
		// matching below it.
		return true
	}

	if len(parts) == 0 {
		// Directory path consumed; remaining pattern segments can
		// still match descendants.
		return true
	}

	return matchSegment(pat[0], parts[0]) && segmentsReachInside(pat[1:], parts[1:])
}

func matchSegments(pat, parts []string) bool {
	if len(pat) == 0 {
		return len(parts) == 0
	}

	if pat[0] == "**" {
		if matchSegments(pat[1:], parts) {
			return true
		}

		if len(parts) > 0 {
			return matchSegments(pat, parts[1:])
		}

		return false
	}

	if len(parts) == 0 {
		return false
	}

	if !matchSegment(pat[0], parts[0]) {
		return false
	}

	return matchSegments(pat[1:], parts[1:])
}

// matchSegment matches one glob segment against one path segment.
// Supports `*` (any run) and `?` (single character).
func matchSegment(pat, s string) bool {
	px, sx := 0, 0
	starPx, starSx := -1, -1

	for sx < len(s) {
		switch {
		case px < len(pat) && (pat[px] == byte(s[sx]) || pat[px] == '?'):
			px++
			sx++
		case px < len(pat) && pat[px] == '*':
			starPx = px
			starSx = sx
			px++
		case starPx >= 0:
			px = starPx + 1
			starSx++
			sx = starSx
		default:
			return false
		}
	}

	for px < len(pat) && pat[px] == '*' {
		px++
	}

	return px == len(pat)
}

func splitPath(relPath string) []string {
	clean := strings.Trim(relPath, "/")
	if clean == "" {
		return nil
	}

	return strings.Split(clean, "/")
}

// PatternSet is an ordered pair of compiled include and exclude globs.
// Compiled forms live for the duration of one invocation.
type PatternSet struct {
	include []Pattern
	exclude []Pattern
}

// CompilePatternSet compiles both pattern lists once.
func CompilePatternSet(include, exclude []string) (*PatternSet, error) {
	set := &PatternSet{}

	for _, raw := range include {
		p, err := CompilePattern(raw)
		if err != nil {
			return nil, err
		}

		set.include = append(set.include, p)
	}

	for _, raw := range exclude {
		p, err := CompilePattern(raw)
		if err != nil {
			return nil, err
		}

		set.exclude = append(set.exclude, p)
	}

	return set, nil
}

// HasIncludes reports whether the include-set is non-empty (whitelist mode).
func (s *PatternSet) HasIncludes() bool { return len(s.include) > 0 }

// Admits reports whether a file at relPath passes the pattern set:
// with an empty include-set any file not excluded is admitted, with a
// non-empty include-set only included files are, and the exclude-set
// always removes.
func (s *PatternSet) Admits(relPath string) bool {
	for _, p := range s.exclude {
		if p.Match(relPath) {
			return false
		}
	}

	if len(s.include) == 0 {
		return true
	}

	for _, p := range s.include {
		if p.Match(relPath) {
			return true
		}
	}

	return false
}

// Prunes reports whether a whole directory subtree can be skipped.
// Conservative: prunes only when the directory matches the exclude-set
// and no include pattern could ever match inside it.
func (s *PatternSet) Prunes(dirPath string) bool {
	excluded := false

	for _, p := range s.exclude {
		if p.Match(dirPath) {
			excluded = true
			break
		}
	}

	if !excluded {
		return false
	}

	dirParts := splitPath(dirPath)

	for _, p := range s.include {
		if p.reachesInside(dirParts) {
			return false
		}
	}

	return true
}
