package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
)

const (
	schemeHttps      = "https"
	defaultUserAgent = "Mozilla/5.0 (compatible; dealmetrics/1.0)"
)

// Connection is the only suspension point of a provider, swapped out in tests
type Connection interface {
	Request(ctx context.Context, endpoint *url.URL) (*http.Response, error)
}

type ClientHost struct {
	client  *http.Client
	host    string
	limiter *rate.Limiter
}

type Client struct {
	Connection Connection
	ApiKey     string
}

// ApiError is returned for any non 200 response
type ApiError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error %d from %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

func (conn *ClientHost) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	if err := conn.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("error waiting for rate limiter: %w", err)
	}

	endpoint.Scheme = schemeHttps
	endpoint.Host = conn.host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("host", conn.host).Str("path", endpoint.Path).Msg("provider request")

	response, err := conn.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		defer response.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return nil, &ApiError{
			StatusCode: response.StatusCode,
			Endpoint:   endpoint.Path,
			Message:    string(body),
		}
	}

	return response, nil
}

// ClientFactory builds a rate limited client, every request is bounded by timeout
func ClientFactory(host string, apiKey string, timeout time.Duration, requestsPerSecond float64) *Client {
	client := &http.Client{
		Timeout: timeout,
	}

	burst := max(int(requestsPerSecond), 1)
	clientHost := &ClientHost{
		client:  client,
		host:    host,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}

	return &Client{
		Connection: clientHost,
		ApiKey:     apiKey,
	}
}
