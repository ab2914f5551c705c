package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type stubProbe struct {
	listErr  error
	tripErr  error
	listSize int
}

func (p *stubProbe) List(_ context.Context, dir string) ([]string, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	p.listSize = len(names)
	return names, nil
}

func (p *stubProbe) RoundTrip(context.Context, string) error { return p.tripErr }

func linked(t *testing.T, files ...string) (source, target string) {
	source = testutil.CreateDir(t, t.TempDir(), "src")
	for _, f := range files {
		testutil.CreateFile(t, source, f, f)
	}
	target = filepath.Join(t.TempDir(), "link")
	testutil.CreateSymlink(t, source, target)
	return source, target
}

func TestVerify_LinkedDirectory(t *testing.T) {
	source, target := linked(t, "a", "b", "c")

	r, err := New(filesystem.NewOS(), nil).Verify(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, r.Accessible)
	assert.True(t, r.IsSymlink)
	assert.Equal(t, source, r.ResolvedTarget)
	assert.True(t, r.Read)
	assert.True(t, r.Write)
	assert.True(t, r.Execute)
	assert.Equal(t, 3, r.EntryCount)
	assert.Nil(t, r.Runtime)
	assert.Empty(t, r.Problems)
}

func TestVerify_EmptySourceIsReportedNotFatal(t *testing.T) {
	_, target := linked(t)

	r, err := New(filesystem.NewOS(), nil).Verify(context.Background(), target)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrVerificationFailed))
	assert.True(t, r.Accessible)
	assert.Zero(t, r.EntryCount)
	assert.Contains(t, r.Problems, "directory is empty")
}

func TestVerify_BrokenAndMissing(t *testing.T) {
	dangling := filepath.Join(t.TempDir(), "dangling")
	testutil.CreateSymlink(t, filepath.Join(t.TempDir(), "gone"), dangling)

	for _, path := range []string{dangling, filepath.Join(t.TempDir(), "missing")} {
		r, err := New(filesystem.NewOS(), nil).Verify(context.Background(), path)
		require.Error(t, err, path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrVerificationFailed))
		assert.False(t, r.Accessible)
		assert.NotEmpty(t, r.Problems)
	}
}

func TestVerify_PermissionBitsIndependent(t *testing.T) {
	_, target := linked(t, "a")
	v := New(filesystem.NewOS(), nil)
	v.access = func(_ string, mode uint32) error {
		if mode == unix.W_OK {
			return unix.EACCES
		}
		return nil
	}

	r, err := v.Verify(context.Background(), target)
	require.NoError(t, err, "write is reported but not required")
	assert.True(t, r.Read)
	assert.False(t, r.Write)
	assert.True(t, r.Execute)
	assert.Equal(t, []string{"write permission denied"}, r.Problems)

	v.access = func(string, uint32) error { return unix.EACCES }
	r, err = v.Verify(context.Background(), target)
	require.Error(t, err)
	assert.False(t, r.Read)
	assert.Len(t, r.Problems, 3)
}

func TestVerify_RuntimeProbe(t *testing.T) {
	_, target := linked(t, "a", "b")

	t.Run("probe passes", func(t *testing.T) {
		probe := &stubProbe{}
		r, err := New(filesystem.NewOS(), probe).Verify(context.Background(), target)
		require.NoError(t, err)
		require.NotNil(t, r.Runtime)
		assert.True(t, r.Runtime.Listable)
		assert.Equal(t, 2, r.Runtime.EntryCount)
		assert.True(t, r.Runtime.RoundTrip)
	})

	t.Run("runtime cannot list", func(t *testing.T) {
		r, err := New(filesystem.NewOS(), &stubProbe{listErr: os.ErrPermission}).Verify(context.Background(), target)
		require.Error(t, err)
		assert.False(t, r.Runtime.Listable)
		assert.False(t, r.Runtime.RoundTrip)
	})

	t.Run("round trip fails", func(t *testing.T) {
		r, err := New(filesystem.NewOS(), &stubProbe{tripErr: os.ErrPermission}).Verify(context.Background(), target)
		require.Error(t, err)
		assert.True(t, r.Runtime.Listable)
		assert.False(t, r.Runtime.RoundTrip)
		assert.NotEmpty(t, r.Runtime.Detail)
	})
}
