package nimbus

import "net/http"

// AuthType selects the authentication scheme for a single request.
type AuthType string

const (
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
)

// Request describes one API call. Exactly one of Path and URL must be set:
// a Path is resolved against the client's configured server host, a URL is
// used verbatim (pagination follows absolute next-page URLs this way).
type Request struct {
	Method          string
	Path            string
	URL             string
	Body            []byte
	ContentType     string
	ContentEncoding string
	Auth            AuthType
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// validate checks the request preconditions before any network activity.
func (r *Request) validate() error {
	if !allowedMethods[r.Method] {
		return &ValidationError{Field: "method", Message: `must be "GET", "POST", "PUT" or "DELETE"`}
	}
	if (r.Path == "") == (r.URL == "") {
		return &ValidationError{Field: "request", Message: "exactly one of path and url must be set"}
	}
	return nil
}
