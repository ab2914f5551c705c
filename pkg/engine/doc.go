// Package engine runs a complete gamelink pass: scan the libraries, resolve
// names, settle the selection, then locate, back up, link and verify every
// selected item.
//
// Failures that concern the whole batch (no library, no items, backup
// precondition unmet) abort the run. Everything else is scoped to one item
// and ends up in that item's report row while the remaining items carry on.
package engine
