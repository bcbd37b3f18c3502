package blob

import (
	"GophShare/internal/config"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type localStore interface {
	Store
	Opener
}

func newSigner() *URLSigner {
	return NewURLSigner("secret", "http://localhost:8081", time.Minute)
}

func localStores(t *testing.T) map[string]localStore {
	t.Helper()
	fsStore, err := NewFSStore(t.TempDir(), newSigner())
	require.NoError(t, err)
	bs, err := NewBadgerStore("", newSigner())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return map[string]localStore{
		"memory": NewMemoryStore(newSigner()),
		"fs":     fsStore,
		"badger": bs,
	}
}

func TestLocalStores_PutOpenDelete(t *testing.T) {
	for name, s := range localStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ref, err := s.Put(ctx, []byte("hello"), "text/plain")
			require.NoError(t, err)
			assert.NotEmpty(t, ref)

			got, err := s.Open(ctx, ref)
			require.NoError(t, err)
			assert.Equal(t, "hello", string(got))

			u, err := s.AccessURL(ctx, ref)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(u, "http://localhost:8081/blobs/"))

			require.NoError(t, s.Delete(ctx, ref))
			_, err = s.Open(ctx, ref)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.AccessURL(ctx, ref)
			assert.ErrorIs(t, err, ErrNotFound)

			// повторное удаление не ошибка
			assert.NoError(t, s.Delete(ctx, ref))
		})
	}
}

func TestLocalStores_CanceledContext(t *testing.T) {
	for name, s := range localStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Put(ctx, []byte("x"), "")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestFSStore_RejectsPathRef(t *testing.T) {
	s, err := NewFSStore(t.TempDir(), newSigner())
	require.NoError(t, err)
	_, err = s.Open(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(context.Background(), "../x"))
}

func TestURLSigner_SignVerify(t *testing.T) {
	s := newSigner()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	u, err := s.Sign("ref-1")
	require.NoError(t, err)
	token := strings.TrimPrefix(u, "http://localhost:8081/blobs/")

	ref, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", ref)

	// другой секрет
	other := NewURLSigner("other", "", time.Minute)
	other.now = s.now
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrBadToken)

	// истёк
	now = now.Add(2 * time.Minute)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestNew_ByType(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{BlobStore: "memory"}
	s, err := New(ctx, cfg, newSigner())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg = &config.Config{BlobStore: "fs", BlobDir: t.TempDir()}
	s, err = New(ctx, cfg, newSigner())
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, s)

	_, err = New(ctx, &config.Config{BlobStore: "tape"}, newSigner())
	assert.Error(t, err)
}
