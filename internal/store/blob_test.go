package store

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertScannedBook(t *testing.T, s *Store, scan []byte) Key[book] {
	t.Helper()
	ctx := context.Background()
	a := seedAuthors(t, s, "Ursula")[0]
	key, err := Insert(ctx, s, book{Title: "The Lathe of Heaven", Author: a, Pages: 184, Scan: scan})
	require.NoError(t, err)
	return key
}

func TestOpenBlob_ReadAll(t *testing.T) {
	s := openLibrary(t)
	payload := bytes.Repeat([]byte("0123456789abcdef"), 1000)
	key := insertScannedBook(t, s, payload)

	blob, err := s.OpenBlob(context.Background(), testBooks, "scan", key.Int64())
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), blob.Size())

	data, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestOpenBlob_ReadsInChunks(t *testing.T) {
	log := &statementLog{}
	s := openLibrary(t, WithTracer(log.record))
	payload := []byte("abcdefghij")
	key := insertScannedBook(t, s, payload)

	blob, err := s.OpenBlob(context.Background(), testBooks, "scan", key.Int64())
	require.NoError(t, err)
	before := len(log.all())

	buf := make([]byte, 4)
	var got []byte
	for {
		n, err := blob.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, payload, got)
	// 4 + 4 + 2 bytes, then EOF without touching the database.
	assert.Equal(t, 3, len(log.all())-before)
}

func TestBlob_SeekAndReadAt(t *testing.T) {
	s := openLibrary(t)
	key := insertScannedBook(t, s, []byte("abcdefghij"))

	blob, err := s.OpenBlob(context.Background(), testBooks, "scan", key.Int64())
	require.NoError(t, err)

	pos, err := blob.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)

	rest, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "hij", string(rest))

	buf := make([]byte, 3)
	n, err := blob.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "cde", string(buf[:n]))

	_, err = blob.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestBlob_ReadAfterOpenContextIsCancelled(t *testing.T) {
	s := openLibrary(t)
	key := insertScannedBook(t, s, []byte("abcdefghij"))

	ctx, cancel := context.WithCancel(context.Background())
	blob, err := s.OpenBlob(ctx, testBooks, "scan", key.Int64())
	require.NoError(t, err)
	cancel()

	buf := make([]byte, 4)
	_, err = blob.Read(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	n, err := blob.ReadAtContext(context.Background(), buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "ghij", string(buf[:n]))
}

func TestOpenBlob_MissingRow(t *testing.T) {
	s := openLibrary(t)

	_, err := s.OpenBlob(context.Background(), testBooks, "scan", 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestOpenBlob_NotABlobColumn(t *testing.T) {
	s := openLibrary(t)

	_, err := s.OpenBlob(context.Background(), testBooks, "title", 1)
	assert.ErrorContains(t, err, "not a blob column")

	_, err = s.OpenBlob(context.Background(), testBooks, "missing", 1)
	assert.ErrorContains(t, err, "not a blob column")
}
