// Package wine drives the Wine command-line tools the link engine and the
// verification pass rely on: winepath for path translation, cmd's mklink for
// directory junctions, and cmd's dir, echo, type and del builtins for probing
// a directory from inside the prefix.
//
// Every invocation goes through a Runner so tests can substitute scripted
// output for real processes. All commands run with WINEPREFIX set and Wine's
// debug channels silenced, and each is bounded by a timeout.
package wine
