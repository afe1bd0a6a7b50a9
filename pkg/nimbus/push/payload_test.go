package push_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus/audience"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus/push"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newCaptureClient(t *testing.T, status int, body string, captured **http.Request, sent *[]byte) *nimbus.Client {
	t.Helper()
	client, err := nimbus.NewClient(nimbus.Config{
		Key:    "app-key",
		Secret: "app-secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			*captured = req
			if req.Body != nil {
				raw, _ := io.ReadAll(req.Body)
				*sent = raw
			}
			return &http.Response{
				StatusCode: status,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		})},
	})
	require.NoError(t, err)
	return client
}

func TestPayloadOmitsUnsetFields(t *testing.T) {
	p := &push.Push{
		Audience:       audience.All(),
		Notification:   push.Notification("Hello"),
		AllDeviceTypes: true,
	}
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"audience":"all","notification":{"alert":"Hello"},"device_types":"all"}`, string(out))
}

func TestPayloadFull(t *testing.T) {
	p := &push.Push{
		Audience:     audience.Tag("sports"),
		Notification: push.Notification("Game on"),
		DeviceTypes:  []push.DeviceType{push.DeviceTypeIOS, push.DeviceTypeAndroid},
		Options:      map[string]any{"expiry": 3600},
		Message:      push.RichMessage("Game on", "Kickoff at noon"),
	}
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"audience": {"tag": "sports"},
		"notification": {"alert": "Game on"},
		"device_types": ["ios", "android"],
		"options": {"expiry": 3600},
		"message": {"title": "Game on", "body": "Kickoff at noon"}
	}`, string(out))
}

func TestPayloadDeviceTypeValidation(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		p := &push.Push{DeviceTypes: []push.DeviceType{}}
		_, err := p.Payload()
		assert.ErrorIs(t, err, nimbus.ErrValidation)
	})

	t.Run("unknown platform", func(t *testing.T) {
		p := &push.Push{DeviceTypes: []push.DeviceType{"blackberry"}}
		_, err := p.Payload()
		assert.ErrorIs(t, err, nimbus.ErrValidation)
	})

	t.Run("open platform accepted", func(t *testing.T) {
		p := &push.Push{DeviceTypes: []push.DeviceType{"open::email"}}
		_, err := p.Payload()
		assert.NoError(t, err)
	})

	t.Run("all conflicts with explicit list", func(t *testing.T) {
		p := &push.Push{AllDeviceTypes: true, DeviceTypes: []push.DeviceType{push.DeviceTypeIOS}}
		_, err := p.Payload()
		assert.ErrorIs(t, err, nimbus.ErrValidation)
	})
}

func TestPayloadInvalidAudience(t *testing.T) {
	p := &push.Push{Audience: audience.And()}
	_, err := p.Payload()
	assert.ErrorIs(t, err, nimbus.ErrValidation)
}

func TestSendPostsToPushEndpoint(t *testing.T) {
	var captured *http.Request
	var sent []byte
	client := newCaptureClient(t, http.StatusAccepted, `{"ok":"true","push_ids":["a"]}`, &captured, &sent)

	p := &push.Push{
		Audience:       audience.Tag("sports"),
		Notification:   push.Notification("Hello"),
		AllDeviceTypes: true,
	}
	res, err := p.Send(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "https://"+nimbus.ServerUS+"/api/push/", captured.URL.String())
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"audience":{"tag":"sports"},"notification":{"alert":"Hello"},"device_types":"all"}`, string(sent))
	assert.Equal(t, "true", res.Map()["ok"])
}

func TestValidatePostsToValidateEndpoint(t *testing.T) {
	var captured *http.Request
	var sent []byte
	client := newCaptureClient(t, http.StatusOK, `{"ok":"true"}`, &captured, &sent)

	p := &push.Push{Audience: audience.All(), Notification: push.Notification("Hi"), AllDeviceTypes: true}
	_, err := p.Validate(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, "https://"+nimbus.ServerUS+"/api/push/validate/", captured.URL.String())
}

func TestSendRejectsInvalidPayloadLocally(t *testing.T) {
	calls := 0
	client, err := nimbus.NewClient(nimbus.Config{
		Key:    "app-key",
		Secret: "app-secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
		})},
	})
	require.NoError(t, err)

	p := &push.Push{Audience: audience.And()} // empty combinator
	_, err = p.Send(context.Background(), client)
	assert.ErrorIs(t, err, nimbus.ErrValidation)
	assert.Zero(t, calls)
}
