// Package types defines the data shared across gamelink's packages: the
// filesystem abstraction, scanned items and their metadata, resolved payload
// directories, link operations and results, and verification reports.
package types
