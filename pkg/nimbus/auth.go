package nimbus

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Regional OAuth token endpoints.
const (
	OAuthServerUS = "oauth2.us.nimbuscloud.io"
	OAuthServerEU = "oauth2.eu.nimbuscloud.io"
)

// AssertionTokenSource implements oauth2.TokenSource by exchanging a signed
// ES256 bearer assertion for an access token at the platform's OAuth
// endpoint. Every Token call performs a fresh exchange; the client does not
// cache tokens, callers that need caching can wrap the source in
// oauth2.ReuseTokenSource. Safe for concurrent use.
type AssertionTokenSource struct {
	ClientID   string
	AppKey     string
	PrivateKey *ecdsa.PrivateKey
	TokenURL   string // defaults to the US token endpoint
	HTTPClient *http.Client
}

// Token signs a short-lived assertion and posts it to the token endpoint.
func (s *AssertionTokenSource) Token() (*oauth2.Token, error) {
	tokenURL := s.TokenURL
	if tokenURL == "" {
		tokenURL = "https://" + OAuthServerUS + "/token"
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.ClientID,
		"sub":   "app:" + s.AppKey,
		"aud":   tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Minute).Unix(),
		"nonce": uuid.NewString(),
	}
	signer := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signer.Header["kid"] = s.ClientID

	assertion, err := signer.SignedString(s.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"assertion":  {assertion},
	}

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Post(tokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("post token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, raw)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	tok := &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
	}
	if body.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return tok, nil
}
