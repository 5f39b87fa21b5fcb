package graphcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/oklog/ulid/v2"
)

// Transport sends a single GraphQL request and returns its response body
// as text, the only shape the cache's normalizer needs. Send is invoked
// from inside an effect closure (see ProcessPending), never from a pure
// cache operation.
type Transport interface {
	Send(ctx context.Context, endpoint, query string, variables any, headers http.Header) (string, error)
}

type graphqlRequestBody struct {
	Query     string `json:"query"`
	Variables any    `json:"variables"`
}

// httpTransport is the default Transport: an http.Client posting
// {query, variables} as JSON, with a cookie jar so cookies accompany
// requests the way a browser fetch() call with credentials: "include"
// would, and an X-Request-Id header for correlating cache-side logs with
// origin-side logs.
type httpTransport struct {
	client        *http.Client
	requestIDFunc func() string
}

func newHTTPTransport(requestIDFunc func() string) Transport {
	jar, _ := cookiejar.New(nil)
	if requestIDFunc == nil {
		requestIDFunc = newRequestID
	}
	return &httpTransport{
		client:        &http.Client{Jar: jar},
		requestIDFunc: requestIDFunc,
	}
}

func newRequestID() string {
	return ulid.Make().String()
}

func (t *httpTransport) Send(ctx context.Context, endpoint, query string, variables any, headers http.Header) (string, error) {
	payload, err := json.Marshal(graphqlRequestBody{Query: query, Variables: variables})
	if err != nil {
		return "", fmt.Errorf("graphcache: encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("graphcache: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if t.requestIDFunc != nil {
		req.Header.Set("X-Request-Id", t.requestIDFunc())
	}

	res, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("graphcache: sending request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("graphcache: reading response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return string(body), fmt.Errorf("graphcache: origin responded %s", res.Status)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("graphcache: origin responded %s with an empty body", res.Status)
	}
	return string(body), nil
}
