// Package verify checks that a link target is usable from the host and,
// when a runtime probe is available, from inside the Wine prefix.
package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"golang.org/x/sys/unix"
)

// Probe looks at a directory from the consuming runtime's side
type Probe interface {
	List(ctx context.Context, dir string) ([]string, error)
	RoundTrip(ctx context.Context, dir string) error
}

// Verifier runs the checks
type Verifier struct {
	fs     types.FS
	probe  Probe
	access func(path string, mode uint32) error
}

// New returns a verifier. probe may be nil.
func New(fsys types.FS, probe Probe) *Verifier {
	return &Verifier{fs: fsys, probe: probe, access: unix.Access}
}

// Verify inspects target. Permission bits are reported individually. The
// returned error is ErrVerificationFailed when the report is not OK; the
// report is always filled in.
func (v *Verifier) Verify(ctx context.Context, target string) (*types.VerificationReport, error) {
	logger := logging.GetLogger("verify")
	r := &types.VerificationReport{Path: target}

	linfo, err := v.fs.Lstat(target)
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("target does not exist: %v", err))
		return r, v.failed(r)
	}

	if linfo.Mode()&os.ModeSymlink != 0 {
		r.IsSymlink = true
		dest, err := v.fs.Readlink(target)
		if err == nil {
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(filepath.Dir(target), dest)
			}
			r.ResolvedTarget = dest
		}
	}

	info, err := v.fs.Stat(target)
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("link does not resolve: %v", err))
		return r, v.failed(r)
	}
	if !info.IsDir() {
		r.Problems = append(r.Problems, "target is not a directory")
		return r, v.failed(r)
	}
	r.Accessible = true

	r.Read = v.access(target, unix.R_OK) == nil
	r.Write = v.access(target, unix.W_OK) == nil
	r.Execute = v.access(target, unix.X_OK) == nil
	for _, perm := range []struct {
		name string
		ok   bool
	}{{"read", r.Read}, {"write", r.Write}, {"execute", r.Execute}} {
		if !perm.ok {
			r.Problems = append(r.Problems, perm.name+" permission denied")
		}
	}

	entries, err := v.fs.ReadDir(target)
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("listing failed: %v", err))
	} else {
		r.EntryCount = len(entries)
		if r.EntryCount == 0 {
			r.Problems = append(r.Problems, "directory is empty")
		}
	}

	if v.probe != nil {
		r.Runtime = v.runtimeCheck(ctx, target)
		if r.Runtime.Detail != "" {
			r.Problems = append(r.Problems, r.Runtime.Detail)
		}
	}

	logger.Debug().
		Str("target", target).
		Bool("accessible", r.Accessible).
		Int("entries", r.EntryCount).
		Strs("problems", r.Problems).
		Msg("Verified")
	if !r.OK() {
		return r, v.failed(r)
	}
	return r, nil
}

func (v *Verifier) runtimeCheck(ctx context.Context, target string) *types.RuntimeReport {
	rr := &types.RuntimeReport{}
	names, err := v.probe.List(ctx, target)
	if err != nil {
		rr.Detail = fmt.Sprintf("runtime cannot list the directory: %v", err)
		return rr
	}
	rr.Listable = true
	rr.EntryCount = len(names)

	if err := v.probe.RoundTrip(ctx, target); err != nil {
		rr.Detail = fmt.Sprintf("runtime round trip failed: %v", err)
		return rr
	}
	rr.RoundTrip = true
	return rr
}

func (v *Verifier) failed(r *types.VerificationReport) error {
	return errors.Newf(errors.ErrVerificationFailed, "verification of %s failed", r.Path).
		WithDetail("problems", r.Problems)
}
