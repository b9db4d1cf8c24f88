// Package client is a small Go client for the spotter API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client calls the spotter API at Addr. Token, when set, is sent as a
// Bearer token on every request; Login and Refresh set it.
type Client struct {
	http.Client
	Addr  string
	Token string
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Status     string `json:"status"`
	ErrorText  string `json:"error"`
}

func (e *APIError) Error() string {
	if e.ErrorText != "" {
		return fmt.Sprintf("spotter: %d %s: %s", e.StatusCode, e.Status, e.ErrorText)
	}

	return fmt.Sprintf("spotter: %d %s", e.StatusCode, e.Status)
}

func (c *Client) Ping() (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// call sends a JSON request and decodes the JSON response into out,
// which may be nil.
func (c *Client) call(method, path string, in, out interface{}) error {
	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.Addr+path, body)
	if err != nil {
		return err
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// nolint
		json.NewDecoder(resp.Body).Decode(apiErr)

		return apiErr
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
