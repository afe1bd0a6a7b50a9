package nimbus

import (
	"encoding/json"
	"net/http"
)

// Response is the normalized result of one API call. Body holds the parsed
// JSON value when the body was parseable, the raw string otherwise (with
// ParseError set), and an empty map when the body was empty.
type Response struct {
	Code       int
	Headers    http.Header
	Body       any
	Raw        []byte
	ParseError string
}

// Map returns the body as a JSON object, or nil if it was not one.
func (r *Response) Map() map[string]any {
	m, _ := r.Body.(map[string]any)
	return m
}

func (r *Response) ok() bool {
	return r.Code >= 200 && r.Code < 300
}

func newResponse(res *http.Response, raw []byte) *Response {
	out := &Response{Code: res.StatusCode, Headers: res.Header, Raw: raw}
	if len(raw) == 0 {
		out.Body = map[string]any{}
		return out
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		out.Body = string(raw)
		out.ParseError = "could not parse response JSON"
		return out
	}
	out.Body = body
	return out
}
