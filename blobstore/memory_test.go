package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		Source{Name: "a.mm", Text: []byte("$c a $.\n")},
		Source{Name: "b.mm", Text: []byte("$c b $.\n")},
	)

	assert.True(t, store.Has("a.mm"))
	assert.False(t, store.Has("c.mm"))

	blob, err := store.Open(ctx, "b.mm")
	require.NoError(t, err)
	assert.Equal(t, int64(8), blob.Size())

	buf := make([]byte, 3)
	n, err := blob.ReadAt(ctx, buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "b $", string(buf))

	_, err = blob.ReadAt(ctx, buf, 100)
	assert.Equal(t, io.EOF, err)
	require.NoError(t, blob.Close())

	_, err = store.Open(ctx, "c.mm")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("original")
	require.NoError(t, store.Put(ctx, "x.mm", data))
	data[0] = 'X'

	blob, err := store.Open(ctx, "x.mm")
	require.NoError(t, err)
	got, err := blob.(Mappable).Bytes()
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x.mm"}, names)

	require.NoError(t, store.Delete(ctx, "x.mm"))
	assert.False(t, store.Has("x.mm"))
}
