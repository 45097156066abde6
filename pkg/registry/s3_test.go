package registry_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/pkg/registry"
)

// objectServer is an in-memory path-style S3 endpoint covering GET and PUT.
type objectServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	failPut bool
}

func (m *objectServer) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.TrimPrefix(req.URL.Path, "/")
	switch req.Method {
	case http.MethodPut:
		if m.failPut {
			return respond(http.StatusInternalServerError, nil), nil
		}
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		m.objects[key] = body
		m.puts++
		return respond(http.StatusOK, nil), nil
	case http.MethodGet:
		if body, ok := m.objects[key]; ok {
			return respond(http.StatusOK, body), nil
		}
		return respond(http.StatusNotFound, nil), nil
	}
	return respond(http.StatusNotImplemented, nil), nil
}

func respond(status int, body []byte) *http.Response {
	h := http.Header{"Content-Length": {fmt.Sprintf("%d", len(body))}, "ETag": {`"etag"`}}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: h, ContentLength: int64(len(body))}
}

// decodeChunked unwraps a single-chunk aws-chunked payload.
func decodeChunked(b []byte) ([]byte, bool) {
	size, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return nil, false
	}
	var n int
	if _, err := fmt.Sscanf(string(bytes.SplitN(size, []byte(";"), 2)[0]), "%x", &n); err != nil || n > len(rest) {
		return nil, false
	}
	if !bytes.HasPrefix(rest[n:], []byte("\r\n0")) {
		return nil, false
	}
	return rest[:n], true
}

func newMockS3(t *testing.T) (*registry.S3, *objectServer) {
	t.Helper()
	srv := &objectServer{objects: make(map[string][]byte)}
	store, err := registry.NewS3(context.Background(), "roster", "prod/registry.yaml",
		registry.WithStaticCredentials("AKIA", "SECRET"),
		registry.WithEndpoint("https://mock.s3.local", true),
		registry.WithHTTPClient(&http.Client{Transport: srv}),
	)
	require.NoError(t, err)
	return store, srv
}

func TestS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, srv := newMockS3(t)

	empty, err := store.Load(ctx)
	require.NoError(t, err, "missing object loads as empty registry")
	assert.Equal(t, 0, empty.Len())

	reg := sampleRegistry(t)
	require.NoError(t, store.Save(ctx, reg))
	assert.Equal(t, 1, srv.puts)

	want, err := registry.Encode(reg)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(srv.objects["roster/prod/registry.yaml"]))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.IDs(), loaded.IDs())
}

func TestS3SaveFailureKeepsPreviousObject(t *testing.T) {
	ctx := context.Background()
	store, srv := newMockS3(t)

	require.NoError(t, store.Save(ctx, sampleRegistry(t)))
	before := srv.objects["roster/prod/registry.yaml"]

	srv.failPut = true
	err := store.Save(ctx, sampleRegistry(t))
	require.Error(t, err)
	assert.Equal(t, before, srv.objects["roster/prod/registry.yaml"])
}
