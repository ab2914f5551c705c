// Package linking makes a payload directory visible at a path inside the
// Wine prefix.
//
// A Linker walks an ordered list of Strategy implementations (symlink,
// junction, copy by default) and stops at the first one that succeeds. Any
// existing entry at the target is removed right before the new one is
// created so that an interrupted run leaves, at worst, a missing target that
// the next run recreates. In dry-run mode nothing is touched and the linker
// reports the operations it would perform; the descriptions are stable so
// two dry runs over the same inputs are byte-identical.
//
// The AuxLinker reuses the same chain for the per-item Documents and AppData
// directories. Those links are best effort and only ever produce warnings.
package linking
