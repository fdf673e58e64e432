package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandPath("~/.config/qachat")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config/qachat"), expanded)

	expanded, err = ExpandPath("/tmp/qachat")
	require.NoError(t, err)
	require.Equal(t, "/tmp/qachat", expanded)
}

func TestCreateParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "session.db")
	require.NoError(t, CreateParentDirectory(path))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	ok, err := Exists(path)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, os.WriteFile(path, nil, 0644))
	ok, err = Exists(path)
	require.NoError(t, err)
	require.True(t, ok)
}
