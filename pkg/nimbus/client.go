package nimbus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Regional API hosts.
const (
	ServerUS = "api.us.nimbuscloud.io"
	ServerEU = "api.eu.nimbuscloud.io"
)

// DefaultTimeout bounds a single request round trip.
const DefaultTimeout = 60 * time.Second

const (
	acceptHeader = "application/vnd.nimbus+json; version=3"
	appKeyHeader = "X-Nimbus-Appkey"
)

// Config carries the credentials and transport settings for a Client.
type Config struct {
	// Key is the application key. Required.
	Key string
	// Secret is the application secret, required for basic auth.
	Secret string
	// Token is a static bearer token. Mutually exclusive with TokenSource.
	Token string
	// TokenSource produces OAuth bearer tokens, fetched fresh before each
	// request that needs one.
	TokenSource oauth2.TokenSource
	// Server is the regional API host. Defaults to ServerUS.
	Server string
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Logger receives request/response debug logs. Defaults to a nop logger.
	Logger *zap.Logger
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client dispatches authenticated requests to the Nimbus API. Methods are
// safe for concurrent use; per-call state lives in the Request and Response.
type Client struct {
	key     string
	secret  string
	token   string
	source  oauth2.TokenSource
	server  string
	timeout time.Duration
	logger  *zap.Logger
	http    *http.Client
}

// NewClient validates the configuration and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Key == "" {
		return nil, &ConfigurationError{Reason: "application key is required"}
	}
	if cfg.Token != "" && cfg.TokenSource != nil {
		return nil, &ConfigurationError{Reason: "a token and an oauth token source can't both be used at the same time"}
	}

	c := &Client{
		key:     cfg.Key,
		secret:  cfg.Secret,
		token:   cfg.Token,
		source:  cfg.TokenSource,
		server:  cfg.Server,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		http:    cfg.HTTPClient,
	}
	if c.server == "" {
		c.server = ServerUS
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// Send executes one API call and returns the normalized response. Any
// response outside the 2xx range is returned as a StatusError carrying the
// normalized response.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	token := c.token
	if c.source != nil {
		tok, err := c.source.Token()
		if err != nil {
			return nil, &AuthTokenFetchError{Err: err}
		}
		token = tok.AccessToken
	}

	auth := req.Auth
	if auth == "" {
		auth = AuthBasic
	}
	// A configured token always wins over the declared scheme.
	if token != "" {
		auth = AuthBearer
	}

	switch auth {
	case AuthBasic:
		if c.secret == "" {
			return nil, &ConfigurationError{Reason: "secret must be set if auth_type=basic"}
		}
	case AuthBearer:
		if token == "" {
			return nil, &ConfigurationError{Reason: "token must be set if auth_type=bearer"}
		}
	}

	target := req.URL
	if req.Path != "" {
		target = "https://" + c.server + "/api" + req.Path
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, target, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: err.Error()}
	}

	httpReq.Header.Set("User-Agent", "NimbusGoLib/"+Version+" "+c.key)
	httpReq.Header.Set("Accept", acceptHeader)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.ContentEncoding != "" {
		httpReq.Header.Set("Content-Encoding", req.ContentEncoding)
	}

	switch auth {
	case AuthBearer:
		httpReq.Header.Set(appKeyHeader, c.key)
		httpReq.Header.Set("Authorization", "Bearer "+token)
	case AuthBasic:
		httpReq.SetBasicAuth(c.key, c.secret)
	}

	c.logger.Debug("sending request",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.String("auth", string(auth)),
		zap.Int("body_bytes", len(req.Body)),
	)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{URL: target, Timeout: isTimeoutErr(err), Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{URL: target, Timeout: isTimeoutErr(err), Err: err}
	}

	out := newResponse(res, raw)
	c.logger.Debug("received response",
		zap.Int("status", out.Code),
		zap.Int("body_bytes", len(raw)),
	)

	if !out.ok() {
		return nil, &StatusError{Code: out.Code, Response: out}
	}
	return out, nil
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
