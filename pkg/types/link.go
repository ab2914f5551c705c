package types

import "fmt"

// StrategyName identifies a link strategy
type StrategyName string

const (
	StrategySymlink  StrategyName = "symlink"
	StrategyJunction StrategyName = "junction"
	StrategyCopy     StrategyName = "copy"
	StrategyNone     StrategyName = ""
)

// OperationType is the kind of filesystem mutation an Operation stands for
type OperationType string

const (
	OperationRemove   OperationType = "remove"
	OperationMkdir    OperationType = "mkdir"
	OperationSymlink  OperationType = "symlink"
	OperationJunction OperationType = "junction"
	OperationCopy     OperationType = "copy"
)

// Operation describes one mutation. In dry-run mode operations are only
// reported; otherwise they are reported after being performed.
type Operation struct {
	Type   OperationType `json:"type" yaml:"type" toml:"type"`
	Source string        `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Target string        `json:"target" yaml:"target" toml:"target"`
	// Command is the external command performing the operation, if any
	Command string `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
}

// Describe returns a stable, human readable description. Equal operations
// always produce byte-identical descriptions.
func (o Operation) Describe() string {
	if o.Command != "" {
		return o.Command
	}
	switch o.Type {
	case OperationRemove:
		return fmt.Sprintf("remove %q", o.Target)
	case OperationMkdir:
		return fmt.Sprintf("create directory %q", o.Target)
	case OperationSymlink:
		return fmt.Sprintf("symlink %q -> %q", o.Target, o.Source)
	case OperationJunction:
		return fmt.Sprintf("junction %q -> %q", o.Target, o.Source)
	case OperationCopy:
		return fmt.Sprintf("copy %q to %q", o.Source, o.Target)
	default:
		return fmt.Sprintf("%s %q", o.Type, o.Target)
	}
}

// AuxKind names the per-item auxiliary directories
type AuxKind string

const (
	AuxDocuments AuxKind = "documents"
	AuxAppData   AuxKind = "appdata"
)

// AuxResult is the best-effort outcome of linking one auxiliary directory
type AuxResult struct {
	Kind       AuxKind      `json:"kind" yaml:"kind" toml:"kind"`
	SourcePath string       `json:"source" yaml:"source" toml:"source"`
	TargetPath string       `json:"target" yaml:"target" toml:"target"`
	Strategy   StrategyName `json:"strategy,omitempty" yaml:"strategy,omitempty" toml:"strategy,omitempty"`
	Operations []Operation  `json:"operations,omitempty" yaml:"operations,omitempty" toml:"operations,omitempty"`
	Warning    string       `json:"warning,omitempty" yaml:"warning,omitempty" toml:"warning,omitempty"`
}

// LinkResult is the outcome of linking one item
type LinkResult struct {
	ItemID       string              `json:"itemId" yaml:"itemId" toml:"itemId"`
	Strategy     StrategyName        `json:"strategy" yaml:"strategy" toml:"strategy"`
	SourcePath   string              `json:"source" yaml:"source" toml:"source"`
	TargetPath   string              `json:"target" yaml:"target" toml:"target"`
	Verified     bool                `json:"verified" yaml:"verified" toml:"verified"`
	Degraded     bool                `json:"degraded" yaml:"degraded" toml:"degraded"`
	Detail       string              `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
	Operations   []Operation         `json:"operations" yaml:"operations" toml:"operations"`
	Attempts     []StrategyAttempt   `json:"attempts,omitempty" yaml:"attempts,omitempty" toml:"attempts,omitempty"`
	Aux          []AuxResult         `json:"aux,omitempty" yaml:"aux,omitempty" toml:"aux,omitempty"`
	Verification *VerificationReport `json:"verification,omitempty" yaml:"verification,omitempty" toml:"verification,omitempty"`
}

// StrategyAttempt records why a strategy was skipped or failed
type StrategyAttempt struct {
	Strategy StrategyName `json:"strategy" yaml:"strategy" toml:"strategy"`
	Outcome  string       `json:"outcome" yaml:"outcome" toml:"outcome"`
	Error    string       `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// VerificationReport is the result of checking a link target
type VerificationReport struct {
	Path           string         `json:"path" yaml:"path" toml:"path"`
	Accessible     bool           `json:"accessible" yaml:"accessible" toml:"accessible"`
	IsSymlink      bool           `json:"isSymlink" yaml:"isSymlink" toml:"isSymlink"`
	ResolvedTarget string         `json:"resolvedTarget,omitempty" yaml:"resolvedTarget,omitempty" toml:"resolvedTarget,omitempty"`
	Read           bool           `json:"read" yaml:"read" toml:"read"`
	Write          bool           `json:"write" yaml:"write" toml:"write"`
	Execute        bool           `json:"execute" yaml:"execute" toml:"execute"`
	EntryCount     int            `json:"entryCount" yaml:"entryCount" toml:"entryCount"`
	Runtime        *RuntimeReport `json:"runtime,omitempty" yaml:"runtime,omitempty" toml:"runtime,omitempty"`
	Problems       []string       `json:"problems,omitempty" yaml:"problems,omitempty" toml:"problems,omitempty"`
}

// RuntimeReport is the view of the same path from inside the runtime
type RuntimeReport struct {
	Listable   bool   `json:"listable" yaml:"listable" toml:"listable"`
	EntryCount int    `json:"entryCount" yaml:"entryCount" toml:"entryCount"`
	RoundTrip  bool   `json:"roundTrip" yaml:"roundTrip" toml:"roundTrip"`
	Detail     string `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
}

// OK reports whether the target is usable by the consuming runtime
func (r *VerificationReport) OK() bool {
	if r == nil || !r.Accessible || !r.Read || r.EntryCount == 0 {
		return false
	}
	if r.Runtime != nil && (!r.Runtime.Listable || !r.Runtime.RoundTrip) {
		return false
	}
	return true
}
