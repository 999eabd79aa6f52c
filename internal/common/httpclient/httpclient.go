// Package httpclient is the REST client used by the rigctl CLI to talk to
// the catalog server. It handles bearer-token authentication, URL and query
// assembly, and decoding the server's error envelope. Callers supply a
// Configurator for server and credential details.
package httpclient

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Configurator provides server connection and credential details.
type Configurator interface {
	GetServerURL() string
	GetToken() string
	GetTokenExpiry() time.Time
}

// HTTPError is an error response from the server.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// HTTPClient makes requests to the catalog server over the network.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	DisableCertValidation bool // If true, skips SSL certificate validation
}

// NewClient creates a client from the provided configuration. An https
// server URL defaults to skipping certificate validation so self-signed
// development servers work out of the box; pass explicit options to
// override.
func NewClient(config Configurator, opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if strings.HasPrefix(config.GetServerURL(), "https://") {
		clientOpts.DisableCertValidation = true
	}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}

	httpClient := &http.Client{}
	if clientOpts.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return &HTTPClient{
		config:     config,
		httpClient: httpClient,
	}
}

// RequestOptions describes one request. QueryParams, Body, and ContentType
// are optional; ContentType defaults to application/json.
type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Body        []byte
	ContentType string
}

// DoRequest makes an HTTP request with the given options.
// Returns the response body, Location header (if present), and any error
// that occurred.
func (c *HTTPClient) DoRequest(opts RequestOptions) ([]byte, string, error) {
	req, err := buildRequest(c.config, opts)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %v", err)
	}

	if err := responseError(resp.StatusCode, body); err != nil {
		return nil, "", err
	}

	return body, resp.Header.Get("Location"), nil
}

// Get retrieves the given path.
func (c *HTTPClient) Get(path string, queryParams map[string]string) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method:      http.MethodGet,
		Path:        path,
		QueryParams: queryParams,
	})
	return body, err
}

// Post sends data to the given path. Returns the response body and the
// Location header.
func (c *HTTPClient) Post(path string, data []byte, queryParams map[string]string) ([]byte, string, error) {
	return c.DoRequest(RequestOptions{
		Method:      http.MethodPost,
		Path:        path,
		QueryParams: queryParams,
		Body:        data,
	})
}

// Patch applies a partial update to the resource at the given path.
func (c *HTTPClient) Patch(path string, data []byte) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method: http.MethodPatch,
		Path:   path,
		Body:   data,
	})
	return body, err
}

// Delete removes the resource at the given path.
func (c *HTTPClient) Delete(path string) error {
	_, _, err := c.DoRequest(RequestOptions{
		Method: http.MethodDelete,
		Path:   path,
	})
	return err
}

// buildRequest assembles the http.Request for the given options: joins the
// path onto the configured server URL, encodes query parameters, and sets
// content type and bearer token headers.
func buildRequest(config Configurator, opts RequestOptions) (*http.Request, error) {
	u, err := url.Parse(config.GetServerURL())
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %v", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(opts.Method, u.String(), bytes.NewBuffer(opts.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)

	if token := config.GetToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// responseError maps a failed response to an HTTPError. The server's error
// envelope is {"result": N, "error": "..."}; anything else is passed
// through as the raw body.
func responseError(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return &HTTPError{
			StatusCode: statusCode,
			Message:    msg,
		}
	}
	if statusCode == http.StatusNotFound {
		return &HTTPError{
			StatusCode: statusCode,
			Message:    "server doesn't implement this endpoint",
		}
	}
	return &HTTPError{
		StatusCode: statusCode,
		Message:    string(body),
	}
}
