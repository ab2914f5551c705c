package selection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	return NewStore(filesystem.NewOS(), filepath.Join(t.TempDir(), "state", "selection.log"))
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	ids, err := newStore(t).Load()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_AppendDeduplicates(t *testing.T) {
	s := newStore(t)

	added, err := s.Append("440", "620", "440")
	require.NoError(t, err)
	assert.Equal(t, []string{"440", "620"}, added)

	added, err = s.Append("620", "10")
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, added)

	added, err = s.Append("10")
	require.NoError(t, err)
	assert.Empty(t, added)

	ids, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"440", "620", "10"}, ids)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "440\n620\n10\n", string(data))
}

func TestStore_ToleratesHandEdits(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("# chosen games\n440\n\n  620 \n440"), 0644))

	ids, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"440", "620"}, ids)

	_, err = s.Append("70")
	require.NoError(t, err)
	ids, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"440", "620", "70"}, ids)
}

func TestStore_Reset(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Reset())

	_, err := s.Append("1", "2")
	require.NoError(t, err)
	require.NoError(t, s.Reset())

	ids, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
