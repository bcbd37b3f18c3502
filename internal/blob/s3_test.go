package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 принимает PUT/DELETE объектов в path-style.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(b)
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Store_PutPresignDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	s, err := NewS3Store(ctx, S3Config{
		Bucket:          "files",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		KeyPrefix:       "blobs/",
		URLTTL:          time.Minute,
		MaxRetries:      1,
	})
	require.NoError(t, err)

	ref, err := s.Put(ctx, []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	// тело может прийти с aws-chunked обёрткой, проверяем только путь и тип
	fake.mu.Lock()
	_, stored := fake.objects["/files/blobs/"+ref]
	ctype := fake.types["/files/blobs/"+ref]
	fake.mu.Unlock()
	assert.True(t, stored)
	assert.Equal(t, "application/pdf", ctype)

	u, err := s.AccessURL(ctx, ref)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, srv.URL+"/files/blobs/"+ref))
	assert.Contains(t, u, "X-Amz-Signature=")

	require.NoError(t, s.Delete(ctx, ref))
	fake.mu.Lock()
	_, stored = fake.objects["/files/blobs/"+ref]
	fake.mu.Unlock()
	assert.False(t, stored)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
