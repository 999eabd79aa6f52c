package httpclient

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/rigforge/rigforge/internal/catalogsrv/server"
)

// TestHTTPClient drives an in-process catalog server through
// httptest.NewRecorder instead of a network connection. It lets command
// code run against real handlers in tests.
type TestHTTPClient struct {
	config     Configurator
	httpServer *server.CatalogServer
}

// NewTestClient creates a test client backed by a freshly mounted server.
func NewTestClient(config Configurator) (*TestHTTPClient, error) {
	s, err := server.CreateNewServer()
	if err != nil {
		return nil, fmt.Errorf("failed to create test server: %v", err)
	}
	s.MountHandlers()

	return &TestHTTPClient{
		config:     config,
		httpServer: s,
	}, nil
}

// DoRequest makes an HTTP request with the given options directly against
// the in-process server.
func (c *TestHTTPClient) DoRequest(opts RequestOptions) ([]byte, string, error) {
	req, err := buildRequest(c.config, opts)
	if err != nil {
		return nil, "", err
	}

	rr := httptest.NewRecorder()
	c.httpServer.Router.ServeHTTP(rr, req)
	body := rr.Body.Bytes()

	if err := responseError(rr.Code, body); err != nil {
		return nil, "", err
	}

	return body, rr.Header().Get("Location"), nil
}

// Get retrieves the given path.
func (c *TestHTTPClient) Get(path string, queryParams map[string]string) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method:      http.MethodGet,
		Path:        path,
		QueryParams: queryParams,
	})
	return body, err
}

// Post sends data to the given path. Returns the response body and the
// Location header.
func (c *TestHTTPClient) Post(path string, data []byte, queryParams map[string]string) ([]byte, string, error) {
	return c.DoRequest(RequestOptions{
		Method:      http.MethodPost,
		Path:        path,
		QueryParams: queryParams,
		Body:        data,
	})
}

// Patch applies a partial update to the resource at the given path.
func (c *TestHTTPClient) Patch(path string, data []byte) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method: http.MethodPatch,
		Path:   path,
		Body:   data,
	})
	return body, err
}

// Delete removes the resource at the given path.
func (c *TestHTTPClient) Delete(path string) error {
	_, _, err := c.DoRequest(RequestOptions{
		Method: http.MethodDelete,
		Path:   path,
	})
	return err
}
