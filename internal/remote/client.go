package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of an error response is echoed back.
const maxErrorBody = 512

// NewHTTPClient returns a client that sends credential as a bearer token.
// An empty credential yields a plain client.
func NewHTTPClient(ctx context.Context, credential string) *http.Client {
	if credential == "" {
		if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
			return c
		}
		return &http.Client{}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, ts)
}

// do sends req and returns the body of a 2xx response. Anything else becomes
// a *NetworkError carrying the status and a trimmed body.
func do(c *http.Client, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: req.Method, URL: req.URL.Redacted(), Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &NetworkError{Op: req.Method, URL: req.URL.Redacted(), Status: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &NetworkError{Op: req.Method, URL: req.URL.Redacted(), Status: resp.StatusCode, Msg: msg}
	}
	return body, nil
}

// newJSONRequest builds a request with v encoded as the JSON body.
func newJSONRequest(ctx context.Context, method, url string, v any) (*http.Request, error) {
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if v != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
