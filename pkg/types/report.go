package types

// ItemStatus is the final state of one selected item
type ItemStatus string

const (
	StatusLinked   ItemStatus = "linked"
	StatusPlanned  ItemStatus = "planned"
	StatusDegraded ItemStatus = "degraded"
	StatusSkipped  ItemStatus = "skipped"
	StatusFailed   ItemStatus = "failed"
)

// ItemReport is one row of the final per-item table
type ItemReport struct {
	ID         string             `json:"id" yaml:"id" toml:"id"`
	Name       string             `json:"name" yaml:"name" toml:"name"`
	NameSource NameSource         `json:"nameSource" yaml:"nameSource" toml:"nameSource"`
	Status     ItemStatus         `json:"status" yaml:"status" toml:"status"`
	ErrorCode  string             `json:"errorCode,omitempty" yaml:"errorCode,omitempty" toml:"errorCode,omitempty"`
	Detail     string             `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
	Directory  *ResolvedDirectory `json:"directory,omitempty" yaml:"directory,omitempty" toml:"directory,omitempty"`
	Link       *LinkResult        `json:"link,omitempty" yaml:"link,omitempty" toml:"link,omitempty"`
}

// Succeeded reports whether the item counts as a success for the exit code
func (r ItemReport) Succeeded() bool {
	return r.Status == StatusLinked || r.Status == StatusPlanned
}

// Summary aggregates item statuses
type Summary struct {
	Total    int `json:"total" yaml:"total" toml:"total"`
	Linked   int `json:"linked" yaml:"linked" toml:"linked"`
	Planned  int `json:"planned" yaml:"planned" toml:"planned"`
	Degraded int `json:"degraded" yaml:"degraded" toml:"degraded"`
	Skipped  int `json:"skipped" yaml:"skipped" toml:"skipped"`
	Failed   int `json:"failed" yaml:"failed" toml:"failed"`
}

// RunReport is the complete outcome of one engine run
type RunReport struct {
	DryRun        bool         `json:"dryRun" yaml:"dryRun" toml:"dryRun"`
	TargetDir     string       `json:"targetDir" yaml:"targetDir" toml:"targetDir"`
	BackupArchive string       `json:"backupArchive,omitempty" yaml:"backupArchive,omitempty" toml:"backupArchive,omitempty"`
	BackupPaths   []string     `json:"backupPaths,omitempty" yaml:"backupPaths,omitempty" toml:"backupPaths,omitempty"`
	RootsUsed     []string     `json:"rootsUsed" yaml:"rootsUsed" toml:"rootsUsed"`
	Items         []ItemReport `json:"items" yaml:"items" toml:"items"`
	Summary       Summary      `json:"summary" yaml:"summary" toml:"summary"`
}

// Summarize recomputes the summary from the item rows
func (r *RunReport) Summarize() {
	s := Summary{Total: len(r.Items)}
	for _, it := range r.Items {
		switch it.Status {
		case StatusLinked:
			s.Linked++
		case StatusPlanned:
			s.Planned++
		case StatusDegraded:
			s.Degraded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// Success reports whether every selected item succeeded
func (r *RunReport) Success() bool {
	for _, it := range r.Items {
		if !it.Succeeded() {
			return false
		}
	}
	return true
}
