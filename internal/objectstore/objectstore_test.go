package objectstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hirelens/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves path-style GetObject requests for one bucket
func fakeS3(t *testing.T, objects map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := objects[r.URL.Path]
		if r.Method != http.MethodGet || !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestStore(t *testing.T, endpoint string) *Store {
	t.Helper()
	s, err := New(context.Background(), config.ObjectStorageConfig{
		Enabled:      true,
		Bucket:       "resumes",
		Region:       "us-east-1",
		Endpoint:     endpoint,
		AccessKey:    "test",
		SecretKey:    "test",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	return s
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), config.ObjectStorageConfig{})
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	srv := fakeS3(t, map[string]string{"/resumes/jobs/1/jane.txt": "Jane Doe resume"})
	s := newTestStore(t, srv.URL)

	data, err := s.Get(context.Background(), "jobs/1/jane.txt")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe resume", string(data))
}

func TestGetMissing(t *testing.T) {
	srv := fakeS3(t, nil)
	s := newTestStore(t, srv.URL)

	_, err := s.Get(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}
