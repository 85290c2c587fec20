package ingest

import (
	"crypto/sha1"
	"errors"
	"testing"

	"github.com/jsphweid/fingerbot/model"
	"github.com/jsphweid/fingerbot/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyFile fails the next fails writes, then behaves.
type flakyFile struct {
	afero.File
	fails int
}

func (f *flakyFile) Write(p []byte) (int, error) {
	if f.fails > 0 {
		f.fails--
		return 0, errors.New("disk full")
	}
	return f.File.Write(p)
}

func newTestManager(t *testing.T) (*Manager, *storage.Library) {
	lib, err := storage.NewLibrary(afero.NewMemMapFs(), "/files")
	require.NoError(t, err)
	return NewManager(lib), lib
}

func readStored(t *testing.T, lib *storage.Library, name string) string {
	dat, err := afero.ReadFile(lib.Fs(), lib.Path(name))
	require.NoError(t, err)
	return string(dat)
}

func TestFullTransfer(t *testing.T) {
	m, lib := newTestManager(t)

	_, err := m.Handle("phone", []byte("FILENAME:song one.mid"))
	require.NoError(t, err)
	assert.True(t, m.Open("phone"))

	sum, err := m.Handle("phone", []byte{0x00, 0x01})
	require.NoError(t, err)
	want := sha1.Sum([]byte{0x00, 0x01})
	assert.Equal(t, want[:], sum)
	assert.Equal(t, want[:], m.LastChecksum())

	_, err = m.Handle("phone", []byte("more"))
	require.NoError(t, err)
	want = sha1.Sum([]byte("more"))
	assert.Equal(t, want[:], m.LastChecksum())

	_, err = m.Handle("phone", []byte("EOF"))
	require.NoError(t, err)
	assert.False(t, m.Open("phone"))
	assert.Empty(t, m.LastChecksum())

	assert.Equal(t, "\x00\x01more", readStored(t, lib, "song_one.mid"))
	files, err := lib.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "song_one.mid", files[0].Name)
}

func TestChecksumStartsEmpty(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Empty(t, m.LastChecksum())
}

func TestChunkWithoutSessionIsRejected(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Handle("stranger", []byte("data"))
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
	assert.Empty(t, m.LastChecksum())
}

func TestEOFWithoutSessionIsHarmless(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Handle("stranger", []byte("EOF"))
	assert.NoError(t, err)
}

func TestInvalidFilenameIsRejected(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Handle("phone", []byte("FILENAME:../escape.mid"))
	assert.ErrorIs(t, err, model.ErrInvalidFilename)
	_, err = m.Handle("phone", []byte("FILENAME:"))
	assert.ErrorIs(t, err, model.ErrInvalidFilename)
	assert.False(t, m.Open("phone"))
}

func TestBeginAgainReplacesSession(t *testing.T) {
	m, lib := newTestManager(t)

	require.NoError(t, m.Begin("phone", "first.mid"))
	_, err := m.WriteChunk("phone", []byte("one"))
	require.NoError(t, err)
	old := m.sessions["phone"]

	require.NoError(t, m.Begin("phone", "second.mid"))
	assert.Nil(t, old.file)
	_, err = m.WriteChunk("phone", []byte("two"))
	require.NoError(t, err)
	m.End("phone")

	assert.Equal(t, "one", readStored(t, lib, "first.mid"))
	assert.Equal(t, "two", readStored(t, lib, "second.mid"))
}

func TestClientsAreIndependent(t *testing.T) {
	m, lib := newTestManager(t)

	require.NoError(t, m.Begin("a", "a.mid"))
	require.NoError(t, m.Begin("b", "b.mid"))
	_, err := m.WriteChunk("a", []byte("aaa"))
	require.NoError(t, err)
	_, err = m.WriteChunk("b", []byte("bbb"))
	require.NoError(t, err)

	m.End("a")
	assert.True(t, m.Open("b"))
	_, err = m.WriteChunk("a", []byte("late"))
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
	m.End("b")

	assert.Equal(t, "aaa", readStored(t, lib, "a.mid"))
	assert.Equal(t, "bbb", readStored(t, lib, "b.mid"))
}

func TestRestartTruncates(t *testing.T) {
	m, lib := newTestManager(t)

	require.NoError(t, m.Begin("phone", "x.mid"))
	_, err := m.WriteChunk("phone", []byte("long old contents"))
	require.NoError(t, err)
	m.End("phone")

	require.NoError(t, m.Begin("phone", "x.mid"))
	_, err = m.WriteChunk("phone", []byte("new"))
	require.NoError(t, err)
	m.End("phone")

	assert.Equal(t, "new", readStored(t, lib, "x.mid"))
}

func TestWriteFailureKeepsSessionOpen(t *testing.T) {
	m, lib := newTestManager(t)
	require.NoError(t, m.Begin("phone", "song.mid"))
	s := m.sessions["phone"]
	s.file = &flakyFile{File: s.file, fails: 1}

	_, err := m.WriteChunk("phone", []byte("lost"))
	assert.ErrorIs(t, err, model.ErrIO)
	assert.True(t, m.Open("phone"))
	assert.Empty(t, m.LastChecksum())

	sum, err := m.WriteChunk("phone", []byte("ok"))
	require.NoError(t, err)
	want := sha1.Sum([]byte("ok"))
	assert.Equal(t, want[:], sum)

	m.End("phone")
	assert.Equal(t, "ok", readStored(t, lib, "song.mid"))
}
