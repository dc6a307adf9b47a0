package model

// RepoConfig is the parsed repo-level configuration file
// (.repolens_config.json). All fields are optional.
type RepoConfig struct {
	IgnorePatterns  []string
	IncludePatterns []string
	Lenses          map[string]Lens
}
