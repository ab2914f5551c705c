// Package library discovers the Steam library roots reachable from a set of
// starting directories and enumerates the items registered in each of them.
//
// A library root is a directory holding a steamapps/ subdirectory. Every root
// may name further roots in its libraryfolders.vdf index; the scanner follows
// those references recursively and never visits a root twice. Each
// steamapps/appmanifest_<id>.acf file registers one item. The scanner output
// is deduplicated by id while keeping every root the id appeared under, in
// discovery order.
package library
