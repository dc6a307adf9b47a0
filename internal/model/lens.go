package model

// TruncateMode selects how file content is reduced before emission.
type TruncateMode string

const (
	// TruncateNone leaves content unchanged.
	TruncateNone TruncateMode = "none"
	// TruncateSimple keeps the first N lines.
	TruncateSimple TruncateMode = "simple"
	// TruncateSmart keeps analyzer-chosen important ranges up to a line budget.
	TruncateSmart TruncateMode = "smart"
	// TruncateStructure keeps only imports, signatures and module docs.
	TruncateStructure TruncateMode = "structure"
)

// ValidTruncateMode reports whether mode names a known truncation mode.
func ValidTruncateMode(mode TruncateMode) bool {
	switch mode {
	case TruncateNone, TruncateSimple, TruncateSmart, TruncateStructure:
		return true
	}

	return false
}

// SortKey selects the file attribute batch output is ordered by.
type SortKey string

const (
	// SortByName orders by relative path.
	SortByName SortKey = "name"
	// SortByMtime orders by modification time.
	SortByMtime SortKey = "mtime"
	// SortByCtime orders by creation time.
	SortByCtime SortKey = "ctime"
)

// SortOrder is the direction of the sort key.
type SortOrder string

const (
	// SortAsc sorts ascending.
	SortAsc SortOrder = "asc"
	// SortDesc sorts descending.
	SortDesc SortOrder = "desc"
)

// PriorityGroup contributes to a file's static priority. Groups are
// matched against the forward-slash relative path.
type PriorityGroup struct {
	Pattern  string       `json:"pattern"`
	Priority int          `json:"priority"` // integer in [0, 100]
	Truncate TruncateMode `json:"truncate,omitempty"`
	Always   bool         `json:"always,omitempty"`
}

// Lens is a named bundle of selection, sorting, priority-grouping and
// truncation defaults.
type Lens struct {
	Name        string
	Description string `json:"description"`

	Include []string `json:"include"`
	Exclude []string `json:"exclude"`

	TruncateMode  TruncateMode `json:"truncate_mode"`
	TruncateLines int          `json:"truncate"`

	SortBy    SortKey   `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`

	Groups []PriorityGroup `json:"groups"`
}

// DefaultPriority is the static priority of files no group matches.
const DefaultPriority = 50
