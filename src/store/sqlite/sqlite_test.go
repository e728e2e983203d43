package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/dpatterbee/hue/src/store"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetPrefix("1")
	require.True(t, store.IsKind(err, store.NotFound))

	require.NoError(t, s.SetName("1", "coloratura"))
	_, err = s.GetPrefix("1")
	require.True(t, store.IsKind(err, store.NotFound), "name alone doesn't set a prefix")

	require.NoError(t, s.SetPrefix("1", "!"))
	require.NoError(t, s.SetPrefix("1", "?"))
	p, err := s.GetPrefix("1")
	require.NoError(t, err)
	require.Equal(t, "?", p)

	n, err := s.GetName("1")
	require.NoError(t, err)
	require.Equal(t, "coloratura", n)

	_, err = s.GetName("2")
	require.True(t, store.IsKind(err, store.NotFound))
}

func TestSettingsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SetPrefix("1", "%%"))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	p, err := s.GetPrefix("1")
	require.NoError(t, err)
	require.Equal(t, "%%", p)
}
