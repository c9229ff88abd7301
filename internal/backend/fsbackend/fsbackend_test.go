package fsbackend

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestWriteReadExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := New(fs, "/repo")
	ctx := context.Background()

	err := b.Write(ctx, "demo/1.0.0/hello", strings.NewReader("Hello\n"))
	require.NoError(t, err)

	ok, err := b.Exists(ctx, "demo/1.0.0/hello")
	require.NoError(t, err)
	require.True(t, ok)

	rc, err := b.Read(ctx, "demo/1.0.0/hello")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "Hello\n", string(data))
}

func TestReadMissingIsNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := New(fs, "/repo")
	_, err := b.Read(context.Background(), "missing")
	require.Error(t, err)
}

func TestListMissingDirIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := New(fs, "/repo")
	entries, err := b.List(context.Background(), "nope")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestListReturnsEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := New(fs, "/repo")
	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "demo/1.0.0/a", strings.NewReader("a")))
	require.NoError(t, b.Write(ctx, "demo/2.0.0/a", strings.NewReader("a")))

	entries, err := b.List(ctx, "demo")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"1.0.0", "2.0.0"}, entries)
}

func TestWriteOverwritesAtomically(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := New(fs, "/repo")
	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "artifacts.sane", strings.NewReader("old")))
	require.NoError(t, b.Write(ctx, "artifacts.sane", strings.NewReader("new")))

	rc, err := b.Read(ctx, "artifacts.sane")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

func TestExpandRootEnvVar(t *testing.T) {
	t.Setenv("BINREP_TEST_ROOT", "/srv/repo")
	got, err := ExpandRoot("$BINREP_TEST_ROOT/binrep")
	require.NoError(t, err)
	require.Equal(t, "/srv/repo/binrep", got)
}
