package httpclient

// HTTPClientInterface is the request surface shared by the network client
// and the in-process test client. Command code depends on this so tests can
// drive the real server without a listener.
type HTTPClientInterface interface {
	// DoRequest makes an HTTP request with the given options.
	// Returns the response body, Location header (if present), and any
	// error that occurred.
	DoRequest(opts RequestOptions) ([]byte, string, error)

	// Get retrieves the given path.
	Get(path string, queryParams map[string]string) ([]byte, error)

	// Post sends data to the given path. Returns the response body and the
	// Location header.
	Post(path string, data []byte, queryParams map[string]string) ([]byte, string, error)

	// Patch applies a partial update to the resource at the given path.
	Patch(path string, data []byte) ([]byte, error)

	// Delete removes the resource at the given path.
	Delete(path string) error
}

// Compile-time checks that both implementations satisfy the interface.
var _ HTTPClientInterface = &HTTPClient{}
var _ HTTPClientInterface = &TestHTTPClient{}
