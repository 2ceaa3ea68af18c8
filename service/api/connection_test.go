package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestHost(t *testing.T, handler http.HandlerFunc) *ClientHost {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	serverUrl, err := url.Parse(server.URL)
	require.NoError(t, err)

	return &ClientHost{
		client:  server.Client(),
		host:    serverUrl.Host,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func TestClientHostRequestSetsSchemeHostAndHeaders(t *testing.T) {
	host := newTestHost(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	})

	endpoint := &url.URL{Path: "/query", RawQuery: "symbol=AAPL"}
	response, err := host.Request(context.Background(), endpoint)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, "https", endpoint.Scheme)
}

func TestClientHostRequestReturnsApiErrorOnBadStatus(t *testing.T) {
	host := newTestHost(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	})

	_, err := host.Request(context.Background(), &url.URL{Path: "/query"})
	require.Error(t, err)

	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, strings.Contains(apiErr.Message, "slow down"))
}

func TestClientHostRequestHonoursCancelledContext(t *testing.T) {
	host := newTestHost(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	host.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	host.limiter.Allow() // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := host.Request(ctx, &url.URL{Path: "/query"})
	require.Error(t, err)
}

func TestClientFactory(t *testing.T) {
	c := ClientFactory("www.alphavantage.co", "key", 5*time.Second, 0.5)
	assert.Equal(t, "key", c.ApiKey)

	host, ok := c.Connection.(*ClientHost)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, host.client.Timeout)
	assert.Equal(t, 1, host.limiter.Burst())
}
