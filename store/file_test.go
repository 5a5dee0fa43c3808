package store

import (
	"context"
	"testing"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	assert := assert.New(t)

	fs, err := osfs.NewTempFileSystem()
	require.NoError(t, err)

	defer vfs.Cleanup(fs)

	s, err := NewFileStore("documents", func(o *Options) {
		o.FileSystem = fs
	})
	require.NoError(t, err)

	defer s.Close()

	testStore(t, s)

	t.Run("one file per document", func(t *testing.T) {
		exists, err := vfs.FileExists(fs, "documents/building-permit.json")
		assert.NoError(err)
		assert.True(exists)

		exists, err = vfs.FileExists(fs, "documents/building-permit.json.tmp")
		assert.NoError(err)
		assert.False(exists)
	})

	t.Run("other files are ignored", func(t *testing.T) {
		require.NoError(t, vfs.WriteFile(fs, "documents/notes.txt", []byte("notes"), 0o600))
		require.NoError(t, fs.MkdirAll("documents/archive.json", 0o700))

		names, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Equal([]string{"building-permit", "replaced"}, names)
	})

	t.Run("returns error when file is corrupted", func(t *testing.T) {
		require.NoError(t, vfs.WriteFile(fs, "documents/corrupted.json", []byte(`{"elements": []}`), 0o600))

		_, err := s.Load(context.Background(), "corrupted")
		assert.ErrorIs(err, model.ErrFormat)
		assert.ErrorContains(err, "corrupted")
	})

	t.Run("returns error when path is empty", func(t *testing.T) {
		_, err := NewFileStore("")
		assert.EqualError(err, "path is empty")
	})
}
