package domain

import (
	"fmt"
	"sort"

	m "repolens.dev/pkg/repolens/internal/model"
)

// LensManager holds built-in and user-defined lenses. Custom lenses
// shadow built-ins of the same name. The manager is immutable after
// construction plus one LoadCustom call; no process-wide state.
type LensManager struct {
	builtIn map[string]m.Lens
	custom  map[string]m.Lens
}

// NewLensManager creates a manager with the built-in lenses.
func NewLensManager() *LensManager {
	return &LensManager{
		builtIn: builtInLenses(),
		custom:  map[string]m.Lens{},
	}
}

// LoadCustom installs user-defined lenses from the repo config.
func (lm *LensManager) LoadCustom(lenses map[string]m.Lens) {
	for name, lens := range lenses {
		lens.Name = name
		lm.custom[name] = lens
	}
}

// Get returns a lens by name, custom first.
func (lm *LensManager) Get(name string) (m.Lens, error) {
	if lens, ok := lm.custom[name]; ok {
		return lens, nil
	}

	if lens, ok := lm.builtIn[name]; ok {
		return lens, nil
	}

	return m.Lens{}, fmt.Errorf("%w: %q (available: %v)", m.ErrUnknownLens, name, lm.Available())
}

// Available lists all lens names, sorted.
func (lm *LensManager) Available() []string {
	seen := map[string]bool{}

	var names []string

	for name := range lm.builtIn {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	for name := range lm.custom {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	sort.Strings(names)

	return names
}

// All returns every lens, sorted by name, customs shadowing built-ins.
func (lm *LensManager) All() []m.Lens {
	var lenses []m.Lens

	for _, name := range lm.Available() {
		lens, err := lm.Get(name)
		if err == nil {
			lenses = append(lenses, lens)
		}
	}

	return lenses
}

// builtInLenses are the five default profiles.
func builtInLenses() map[string]m.Lens {
	return map[string]m.Lens{
		"architecture": {
			Name:          "architecture",
			Description:   "High-level code structure and configuration",
			TruncateMode:  m.TruncateStructure,
			TruncateLines: 2000,
			Include: []string{
				"*.py", "*.js", "*.ts", "*.rs", "*.sh",
				"*.json", "*.yaml", "*.yml", "*.toml",
				"Dockerfile", "Makefile", "README.md",
			},
			Exclude: []string{
				"tests/**", "test/**", "docs/**", "doc/**",
				"dist/**", "target/**", "scripts/**", ".github/**",
				"*.txt", "*.html", "*.css",
			},
			SortBy:    m.SortByName,
			SortOrder: m.SortAsc,
			Groups: []m.PriorityGroup{
				{Pattern: "src/**", Priority: 85},
				{Pattern: "lib/**", Priority: 80},
				{Pattern: "cmd/**", Priority: 80},
				{Pattern: "*.toml", Priority: 70},
				{Pattern: "*.json", Priority: 65},
				{Pattern: "README.md", Priority: 60},
				{Pattern: "*.yaml", Priority: 55},
				{Pattern: "*.yml", Priority: 55},
			},
		},
		"debug": {
			Name:         "debug",
			Description:  "Recent changes for debugging",
			TruncateMode: m.TruncateNone,
			Exclude:      []string{"*.pyc", "__pycache__", ".git"},
			SortBy:       m.SortByMtime,
			SortOrder:    m.SortDesc,
		},
		"security": {
			Name:          "security",
			Description:   "Security-relevant files (auth, secrets, dependencies)",
			TruncateMode:  m.TruncateSmart,
			TruncateLines: 300,
			Include: []string{
				"**/*auth*", "**/*security*", "**/*secret*",
				"**/*credential*", "**/*crypto*", "**/*token*",
				"package.json", "requirements.txt", "Cargo.toml",
				"go.mod", "Dockerfile", "*.yaml", "*.yml",
			},
			Exclude:   []string{"tests/**", "test/**", "docs/**"},
			SortBy:    m.SortByName,
			SortOrder: m.SortAsc,
			Groups: []m.PriorityGroup{
				{Pattern: "**/*auth*", Priority: 90},
				{Pattern: "**/*secret*", Priority: 90},
				{Pattern: "**/*credential*", Priority: 85},
				{Pattern: "**/*crypto*", Priority: 80},
				{Pattern: "Dockerfile", Priority: 70},
			},
		},
		"onboarding": {
			Name:          "onboarding",
			Description:   "Essential files for new contributors",
			TruncateMode:  m.TruncateSmart,
			TruncateLines: 400,
			SortBy:        m.SortByName,
			SortOrder:     m.SortAsc,
			Groups: []m.PriorityGroup{
				{Pattern: "README*", Priority: 95, Always: true},
				{Pattern: "CONTRIBUTING.md", Priority: 90},
				{Pattern: "**/main.*", Priority: 80},
				{Pattern: "**/index.*", Priority: 75},
				{Pattern: "package.json", Priority: 70},
				{Pattern: "Cargo.toml", Priority: 70},
				{Pattern: "go.mod", Priority: 70},
				{Pattern: "Makefile", Priority: 65},
				{Pattern: "Dockerfile", Priority: 65},
			},
		},
		"minimal": {
			Name:         "minimal",
			Description:  "Entry points, READMEs and manifests only",
			TruncateMode: m.TruncateNone,
			Include: []string{
				"README*", "**/main.*", "**/index.*", "**/__init__.py",
				"package.json", "Cargo.toml", "go.mod", "pyproject.toml",
				"requirements.txt", "Makefile", "Dockerfile",
			},
			SortBy:    m.SortByName,
			SortOrder: m.SortAsc,
			Groups: []m.PriorityGroup{
				{Pattern: "README*", Priority: 95},
				{Pattern: "**/main.*", Priority: 90},
				{Pattern: "**/index.*", Priority: 85},
			},
		},
	}
}

// defaultIgnorePatterns are applied to every run even without a repo
// config, covering common build artifacts and VCS folders.
func defaultIgnorePatterns() []string {
	return []string{
		".git", "target", "node_modules", ".venv",
		"__pycache__", "*.pyc", "*.swp",
	}
}

// EffectiveOptions is the fully resolved parameter set one run uses.
// Precedence: caller overrides > lens settings > repo config defaults
// > built-in defaults.
type EffectiveOptions struct {
	Lens m.Lens // zero-value Lens when none is active

	Include []string
	Exclude []string

	TruncateMode  m.TruncateMode
	TruncateLines int

	SortBy    m.SortKey
	SortOrder m.SortOrder

	Groups []m.PriorityGroup
}

// Resolve merges caller options, the active lens and the repo config
// into the effective parameters.
func (lm *LensManager) Resolve(opts m.Options, config m.RepoConfig) (EffectiveOptions, error) {
	eff := EffectiveOptions{
		TruncateMode:  m.TruncateNone,
		TruncateLines: 0,
		SortBy:        m.SortByName,
		SortOrder:     m.SortAsc,
	}

	// Repo config defaults.
	eff.Include = append(eff.Include, config.IncludePatterns...)
	eff.Exclude = append(eff.Exclude, defaultIgnorePatterns()...)
	eff.Exclude = append(eff.Exclude, config.IgnorePatterns...)

	if len(config.Lenses) > 0 {
		lm.LoadCustom(config.Lenses)
	}

	// Lens settings.
	if opts.Lens != "" {
		lens, err := lm.Get(opts.Lens)
		if err != nil {
			return EffectiveOptions{}, err
		}

		eff.Lens = lens

		if len(lens.Include) > 0 {
			eff.Include = lens.Include
		}

		eff.Exclude = append(eff.Exclude, lens.Exclude...)

		if lens.TruncateMode != "" {
			eff.TruncateMode = lens.TruncateMode
		}

		if lens.TruncateLines > 0 {
			eff.TruncateLines = lens.TruncateLines
		}

		if lens.SortBy != "" {
			eff.SortBy = lens.SortBy
		}

		if lens.SortOrder != "" {
			eff.SortOrder = lens.SortOrder
		}

		eff.Groups = lens.Groups
	}

	// Caller overrides.
	if len(opts.Include) > 0 {
		eff.Include = opts.Include
	}

	eff.Exclude = append(eff.Exclude, opts.Exclude...)

	if opts.TruncateMode != "" {
		if !m.ValidTruncateMode(opts.TruncateMode) {
			return EffectiveOptions{}, fmt.Errorf("invalid truncate mode %q", opts.TruncateMode)
		}

		eff.TruncateMode = opts.TruncateMode
	}

	if opts.TruncateLines > 0 {
		eff.TruncateLines = opts.TruncateLines
	} else if opts.TruncateLines < 0 {
		eff.TruncateLines = 0
	}

	if opts.SortBy != "" {
		eff.SortBy = opts.SortBy
	}

	if opts.SortOrder != "" {
		eff.SortOrder = opts.SortOrder
	}

	return eff, nil
}
