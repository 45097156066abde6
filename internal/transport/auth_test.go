package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/internal/transport"
)

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://feeds.example.com/roster.csv?day=1", nil)
	require.NoError(t, err)
	return req
}

func TestAuthenticators(t *testing.T) {
	req := newRequest(t)
	(&transport.NoAuth{}).Apply(req)
	assert.Empty(t, req.Header)

	req = newRequest(t)
	(&transport.BearerAuth{Token: "tok"}).Apply(req)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	req = newRequest(t)
	(&transport.BearerAuth{}).Apply(req)
	assert.Empty(t, req.Header.Get("Authorization"), "empty token sends nothing")

	req = newRequest(t)
	(&transport.HeaderAuth{Header: "X-Api-Key", Token: "tok"}).Apply(req)
	assert.Equal(t, "tok", req.Header.Get("X-Api-Key"))
	assert.Empty(t, req.Header.Get("Authorization"))

	req = newRequest(t)
	(&transport.QueryAuth{Param: "key", Token: "tok"}).Apply(req)
	q, err := url.ParseQuery(req.URL.RawQuery)
	require.NoError(t, err)
	assert.Equal(t, "tok", q.Get("key"))
	assert.Equal(t, "1", q.Get("day"))

	assert.IsType(t, &transport.NoAuth{}, transport.FromToken(""))
	assert.IsType(t, &transport.BearerAuth{}, transport.FromToken("tok"))
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.csv":
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("id,name\nAZ-1,佐藤\n"))
		case "/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := transport.New(&transport.BearerAuth{Token: "secret"})
	body, err := c.Get(context.Background(), srv.URL+"/ok.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,name\nAZ-1,佐藤\n", string(body))

	_, err = c.Get(context.Background(), srv.URL+"/busy")
	var se *transport.StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Temporary())

	_, err = c.Get(context.Background(), srv.URL+"/missing")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.False(t, se.Temporary())
}
