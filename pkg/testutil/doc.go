// Package testutil provides fixtures shared by gamelink's package tests.
//
// Key components:
//   - SteamLibrary: declarative builder for a native library root on disk
//   - Prefix: builder for a minimal Wine prefix layout
//   - FaultyFS: types.FS wrapper that injects errors per operation and path
//   - file helpers (CreateFile, CreateDir, CreateSymlink) that fail the test
//     instead of returning errors
//
// All fixtures live under t.TempDir() so tests stay isolated and clean up
// after themselves.
package testutil
