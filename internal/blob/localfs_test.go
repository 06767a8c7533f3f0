package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFSRoundTrip(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "subject/identity_proof/abc", strings.NewReader("jpeg bytes")))

	rc, err := store.Open(ctx, "subject/identity_proof/abc")
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(content))
}

func TestLocalFSDeleteIsIdempotent(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", strings.NewReader("x")))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err = store.Open(ctx, "k")
	assert.Error(t, err)
}

func TestLocalFSRejectsTraversal(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	err = store.Save(context.Background(), "../escape", strings.NewReader("x"))
	assert.Error(t, err)
}
