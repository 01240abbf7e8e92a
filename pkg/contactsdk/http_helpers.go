package contactsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// UserAgent is sent with every request.
const UserAgent = "contactsdk/1"

// maxResponseBody caps how much of a response the SDK will buffer.
const maxResponseBody = 1 << 20

// send builds and performs one request. bearer is added as an
// Authorization header when non-empty.
func (c *SDKClient) send(
	ctx context.Context,
	method, path, bearer string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("contactsdk: build %s %s: %w", method, path, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contactsdk: %s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	return c.send(ctx, method, path, "", body, headers)
}

func (c *SDKClient) doJSON(ctx context.Context, method, path string, in any) (*http.Response, error) {
	body, headers, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return c.doRequest(ctx, method, path, body, headers)
}

// doAuthRequest sends the session's access token, refreshing it first when
// it is about to expire.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.send(ctx, method, path, token, body, headers)
}

func (s *Session) doAuthJSON(ctx context.Context, method, path string, in any) (*http.Response, error) {
	body, headers, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return s.doAuthRequest(ctx, method, path, body, headers)
}

func jsonBody(in any) (io.Reader, map[string]string, error) {
	if in == nil {
		return nil, nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, nil, fmt.Errorf("contactsdk: encode request: %w", err)
	}
	return bytes.NewReader(b), map[string]string{"Content-Type": "application/json"}, nil
}

// decodeJSON consumes resp. A status other than want becomes an *APIError;
// otherwise the body is decoded into target unless target is nil.
func decodeJSON(resp *http.Response, target any, want int) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("contactsdk: read response: %w", err)
	}
	if resp.StatusCode != want {
		if err := parseErrorResponse(resp, raw); err != nil {
			return err
		}
		return fmt.Errorf("contactsdk: got status %d, want %d", resp.StatusCode, want)
	}
	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("contactsdk: decode response: %w", err)
	}
	return nil
}

func expectStatus(resp *http.Response, want int) error {
	return decodeJSON(resp, nil, want)
}
