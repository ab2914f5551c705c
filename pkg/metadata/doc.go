// Package metadata resolves display names for library items.
//
// Names come from three places, tried in order: the on-disk name cache, the
// name recorded in the item's manifest, and a remote lookup endpoint. Names
// found in the manifest or remotely are written through to the cache, which
// stores one plain-text file per item id so entries can be inspected or
// removed by hand.
package metadata
