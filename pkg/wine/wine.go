package wine

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options locates the Wine tools and the prefix they act on
type Options struct {
	Prefix   string
	Wine     string
	WinePath string
	Timeout  time.Duration
}

// Runtime is one Wine prefix
type Runtime struct {
	opts     Options
	runner   Runner
	fs       types.FS
	lookPath func(string) (string, error)
	logger   zerolog.Logger
}

// New returns a runtime driving real processes
func New(fsys types.FS, opts Options) *Runtime {
	env := []string{"WINEPREFIX=" + opts.Prefix, "WINEDEBUG=-all"}
	return NewWithRunner(fsys, opts, NewExecRunner(env, opts.Timeout))
}

// NewWithRunner returns a runtime using runner for every command
func NewWithRunner(fsys types.FS, opts Options, runner Runner) *Runtime {
	if opts.Wine == "" {
		opts.Wine = "wine"
	}
	if opts.WinePath == "" {
		opts.WinePath = "winepath"
	}
	return &Runtime{
		opts:     opts,
		runner:   runner,
		fs:       fsys,
		lookPath: exec.LookPath,
		logger:   logging.GetLogger("wine"),
	}
}

// Available reports whether the wine binary can be found and the prefix
// has been initialized
func (r *Runtime) Available() bool {
	if _, err := r.lookPath(r.opts.Wine); err != nil {
		r.logger.Debug().Str("wine", r.opts.Wine).Msg("Wine binary not found")
		return false
	}
	if !filesystem.IsDir(r.fs, filepath.Join(r.opts.Prefix, "drive_c")) {
		r.logger.Debug().Str("prefix", r.opts.Prefix).Msg("Prefix has no drive_c")
		return false
	}
	return true
}

// WindowsPath translates a host path with winepath -w
func (r *Runtime) WindowsPath(ctx context.Context, path string) (string, error) {
	out, err := r.runner.Run(ctx, r.opts.WinePath, "-w", path)
	if err != nil {
		return "", err
	}
	win := firstLine(out)
	if win == "" {
		return "", errors.Newf(errors.ErrRuntimeExec, "winepath returned nothing for %s", path)
	}
	return win, nil
}

// cmd runs a cmd.exe builtin inside the prefix
func (r *Runtime) cmd(ctx context.Context, args ...string) (string, error) {
	return r.runner.Run(ctx, r.opts.Wine, append([]string{"cmd", "/c"}, args...)...)
}

// CreateJunction makes target a junction pointing at source
func (r *Runtime) CreateJunction(ctx context.Context, target, source string) error {
	winTarget, err := r.WindowsPath(ctx, target)
	if err != nil {
		return err
	}
	winSource, err := r.WindowsPath(ctx, source)
	if err != nil {
		return err
	}
	if _, err := r.cmd(ctx, "mklink", "/J", winTarget, winSource); err != nil {
		return err
	}
	// cmd exits 0 for some mklink failures; trust only what is on disk
	if !filesystem.Exists(r.fs, target) {
		return errors.Newf(errors.ErrRuntimeExec, "mklink reported success but %s does not exist", target)
	}
	return nil
}

// DescribeJunction renders the command CreateJunction runs. Paths stay in
// host form so the text does not depend on running winepath.
func (r *Runtime) DescribeJunction(target, source string) string {
	return fmt.Sprintf("%s cmd /c mklink /J %q %q", r.opts.Wine, target, source)
}

// List returns the entry names of dir as seen from inside the prefix
func (r *Runtime) List(ctx context.Context, dir string) ([]string, error) {
	win, err := r.WindowsPath(ctx, dir)
	if err != nil {
		return nil, err
	}
	out, err := r.cmd(ctx, "dir", "/b", "/a", win)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range splitLines(out) {
		if line != "" && line != "." && line != ".." {
			names = append(names, line)
		}
	}
	return names, nil
}

// RoundTrip writes a sentinel file into dir through Wine, reads it back
// through Wine and from the host, then deletes it
func (r *Runtime) RoundTrip(ctx context.Context, dir string) error {
	token := "gamelink-" + uuid.NewString()
	hostFile := filepath.Join(dir, ".gamelink-probe-"+token)
	defer func() {
		if filesystem.Exists(r.fs, hostFile) {
			_ = r.fs.Remove(hostFile)
		}
	}()

	win, err := r.WindowsPath(ctx, hostFile)
	if err != nil {
		return err
	}
	if _, err := r.cmd(ctx, "echo", token, ">", win); err != nil {
		return errors.Wrap(err, errors.ErrVerificationFailed, "sentinel write through Wine failed")
	}

	out, err := r.cmd(ctx, "type", win)
	if err != nil {
		return errors.Wrap(err, errors.ErrVerificationFailed, "sentinel read through Wine failed")
	}
	if firstLine(out) != token {
		return errors.Newf(errors.ErrVerificationFailed, "sentinel read through Wine returned %q", firstLine(out))
	}

	data, err := r.fs.ReadFile(hostFile)
	if err != nil {
		return errors.Wrap(err, errors.ErrVerificationFailed, "sentinel written through Wine is not visible on the host")
	}
	if firstLine(string(data)) != token {
		return errors.Newf(errors.ErrVerificationFailed, "sentinel on the host reads %q", firstLine(string(data)))
	}

	if _, err := r.cmd(ctx, "del", "/q", win); err != nil {
		r.logger.Debug().Err(err).Str("file", hostFile).Msg("Sentinel delete through Wine failed")
	}
	return nil
}

func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}

func firstLine(s string) string {
	for _, l := range splitLines(s) {
		if l != "" {
			return l
		}
	}
	return ""
}
