// Package filesystem provides filesystem implementations for gamelink.
//
// This package contains the OS implementation of the types.FS interface
// used by the scanner, the link strategies and the verification pass.
package filesystem
